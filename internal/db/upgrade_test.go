package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacyTodos simulates a database created before
// planning mode and versioning existed. Rows must survive and pick up the
// new columns with their defaults.
func TestMigrate_UpgradePath_LegacyTodos(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE todos (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		scope             TEXT NOT NULL DEFAULT 'other',
		status            TEXT NOT NULL DEFAULT 'pending',
		priority          TEXT NOT NULL DEFAULT 'medium',
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
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO todos (title, status, created_at, updated_at)
		VALUES ('legacy', 'completed', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var (
		title, version, history, planHTML string
		planning, continuations           int
		parent                            sql.NullInt64
	)
	err = db.QueryRow(`SELECT title, version, version_history, plan_html, is_planning_mode,
		continuation_count, parent_todo_id FROM todos WHERE title = 'legacy'`).
		Scan(&title, &version, &history, &planHTML, &planning, &continuations, &parent)
	require.NoError(t, err)
	assert.Equal(t, "1.00", version)
	assert.Equal(t, "[]", history)
	assert.Equal(t, "", planHTML)
	assert.Equal(t, 0, planning)
	assert.Equal(t, 0, continuations)
	assert.False(t, parent.Valid)
}

func TestMigrate_BackfillsBlankVersions(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO todos (title, version, version_history, created_at, updated_at)
		VALUES ('blank', '  ', '', '', '')`)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var version, history string
	require.NoError(t, db.QueryRow(`SELECT version, version_history FROM todos WHERE title = 'blank'`).Scan(&version, &history))
	assert.Equal(t, "1.00", version)
	assert.Equal(t, "[]", history)
}
