// Package db opens the embedded SQLite store used when the server runs
// without MongoDB.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath returns ~/.medicall/crm.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".medicall", "crm.db"), nil
}

// Open opens or creates the database at path and brings its schema up to
// date. The parent directory is created when missing.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Whole-record upserts are serialized by the service; one writer
	// connection avoids SQLITE_BUSY between pool members.
	conn.SetMaxOpenConns(1)

	if err := setup(conn); err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	return conn, nil
}

func setup(conn *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("executing %s: %w", p, err)
		}
	}
	if err := migrate(conn); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports how many migrations have been applied.
func SchemaVersion(conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// CloseRows closes c and records a close failure in *err unless an earlier
// error is already set. Meant for deferring with a named error result.
func CloseRows(c io.Closer, err *error) {
	if closeErr := c.Close(); closeErr != nil && *err == nil {
		*err = fmt.Errorf("closing rows: %w", closeErr)
	}
}
