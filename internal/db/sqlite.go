package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// SQLite driver for database/sql.
	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates, if needed) the sqlite database at path.
// ":memory:" opens a shared in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dsn = "file:" + filepath.ToSlash(abs)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer keeps the bulk-serialize store semantics simple.
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}
