package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const dbFileName = "history.db"

// DatabasePath returns the path to the database file in the classlens directory.
func DatabasePath(stateDir string) string {
	return filepath.Join(stateDir, dbFileName)
}

// Initialize creates the SQLite database and applies all migrations.
func Initialize(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	d, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := Migrate(d); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Open opens the database with foreign keys enabled.
func Open(dbPath string) (*sql.DB, error) {
	d, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return d, nil
}
