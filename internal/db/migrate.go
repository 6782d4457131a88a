package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillVersions(db); err != nil {
		return fmt.Errorf("backfilling todo versions: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS todos (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		scope             TEXT NOT NULL DEFAULT 'other'
		                  CHECK(scope IN ('frontend','backend','database','n8n','mt5','server','content','seo','analytics','other')),
		status            TEXT NOT NULL DEFAULT 'pending'
		                  CHECK(status IN ('pending','in_progress','completed','blocked','cancelled')),
		priority          TEXT NOT NULL DEFAULT 'medium'
		                  CHECK(priority IN ('low','medium','high','critical')),
		working_directory TEXT NOT NULL DEFAULT '',
		assigned_to       TEXT NOT NULL DEFAULT 'claude',
		due_date          TEXT,
		completed_at      TEXT,
		assistant_notes   TEXT NOT NULL DEFAULT '',
		assistant_output  TEXT NOT NULL DEFAULT '',
		related_files     TEXT NOT NULL DEFAULT '',
		tags              TEXT NOT NULL DEFAULT '',
		estimated_hours   REAL,
		actual_hours      REAL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_scope ON todos(scope)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_priority ON todos(priority)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_working_directory ON todos(working_directory)`,

	`CREATE TABLE IF NOT EXISTS todo_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		todo_id    INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
		field_name TEXT NOT NULL,
		old_value  TEXT NOT NULL DEFAULT '',
		new_value  TEXT NOT NULL DEFAULT '',
		changed_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_history_todo ON todo_history(todo_id)`,

	`CREATE TABLE IF NOT EXISTS todo_comments (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		todo_id      INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
		body         TEXT NOT NULL,
		is_assistant INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_comments_todo ON todo_comments(todo_id)`,

	// Assistant run mode
	`ALTER TABLE todos ADD COLUMN assistant_mode TEXT NOT NULL DEFAULT 'bypass'`,

	// Planning mode: stored plan document plus its structured backup
	`ALTER TABLE todos ADD COLUMN plan_html TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE todos ADD COLUMN plan_structure TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE todos ADD COLUMN plan_created_at TEXT`,
	`ALTER TABLE todos ADD COLUMN is_planning_mode INTEGER NOT NULL DEFAULT 0`,

	// Versioned continuations
	`ALTER TABLE todos ADD COLUMN version TEXT NOT NULL DEFAULT '1.00'`,
	`ALTER TABLE todos ADD COLUMN version_history TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE todos ADD COLUMN parent_todo_id INTEGER REFERENCES todos(id) ON DELETE SET NULL`,
	`ALTER TABLE todos ADD COLUMN continuation_count INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_todos_parent ON todos(parent_todo_id)`,

	`CREATE TABLE IF NOT EXISTS todo_continuations (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		original_todo_id  INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
		continued_todo_id INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
		reason            TEXT NOT NULL DEFAULT '',
		notes             TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_continuations_original ON todo_continuations(original_todo_id)`,

	`CREATE TABLE IF NOT EXISTS todo_attachments (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		todo_id     INTEGER NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
		file_name   TEXT NOT NULL,
		stored_name TEXT NOT NULL,
		path        TEXT NOT NULL,
		mime_type   TEXT NOT NULL DEFAULT '',
		size        INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attachments_todo ON todo_attachments(todo_id)`,
}

// migrateBackfillVersions repairs rows written before versions were
// enforced: blank versions become 1.00 and blank histories become [].
// Idempotent.
func migrateBackfillVersions(db *sql.DB) error {
	if _, err := db.Exec(`UPDATE todos SET version = '1.00' WHERE TRIM(version) = ''`); err != nil {
		return fmt.Errorf("backfilling version: %w", err)
	}
	if _, err := db.Exec(`UPDATE todos SET version_history = '[]' WHERE TRIM(version_history) = ''`); err != nil {
		return fmt.Errorf("backfilling version_history: %w", err)
	}
	return nil
}
