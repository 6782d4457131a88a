package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

// pragmas run on open, in order. busy_timeout lets the CLI and a running
// API server share one database file without immediate SQLITE_BUSY errors.
var pragmas = []struct {
	name string
	stmt string
}{
	{"journal mode", "PRAGMA journal_mode = WAL"},
	{"foreign keys", "PRAGMA foreign_keys = ON"},
	{"busy timeout", "PRAGMA busy_timeout = 5000"},
}

// OpenDB opens the todo database at path, creating its directory when
// needed, and brings the schema up to date.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Each connection to ":memory:" gets its own database.
	if path == MemoryPath {
		database.SetMaxOpenConns(1)
	}

	if err := configure(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func configure(database *sql.DB) error {
	for _, p := range pragmas {
		if _, err := database.Exec(p.stmt); err != nil {
			return fmt.Errorf("setting %s: %w", p.name, err)
		}
	}
	if err := Migrate(database); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
