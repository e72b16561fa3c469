package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Records are stored as JSON documents in body; the other columns are
// copies used for lookups and ordering.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS doctors (
		id         TEXT     PRIMARY KEY,
		executive  TEXT     NOT NULL DEFAULT '',
		name       TEXT     NOT NULL DEFAULT '',
		category   TEXT     NOT NULL DEFAULT 'MEDICO',
		body       TEXT     NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doctors_executive ON doctors(executive)`,
	`CREATE INDEX IF NOT EXISTS idx_doctors_name ON doctors(name)`,
	`CREATE INDEX IF NOT EXISTS idx_doctors_category ON doctors(category)`,
	`CREATE TABLE IF NOT EXISTS procedures (
		id         TEXT     PRIMARY KEY,
		doctor_id  TEXT     NOT NULL DEFAULT '',
		date       TEXT     NOT NULL DEFAULT '',
		status     TEXT     NOT NULL DEFAULT '',
		body       TEXT     NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_procedures_doctor ON procedures(doctor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_procedures_date ON procedures(date)`,
	`CREATE TABLE IF NOT EXISTS time_off (
		id         TEXT     PRIMARY KEY,
		executive  TEXT     NOT NULL DEFAULT '',
		start_date TEXT     NOT NULL DEFAULT '',
		body       TEXT     NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_time_off_executive ON time_off(executive)`,
}

// migrate applies the migrations past the stored user_version, each in
// its own transaction.
func migrate(conn *sql.DB) error {
	applied, err := SchemaVersion(conn)
	if err != nil {
		return err
	}
	for i := applied; i < len(migrations); i++ {
		if err := apply(conn, i); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func apply(conn *sql.DB, i int) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(migrations[i]); err != nil {
		_ = tx.Rollback()
		return err
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
