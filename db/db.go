// Package db owns the SQLite audit store: a pure-history log of demand
// detections, pump starts/stops, scheduled runs, and desinfect cycles.
// It follows the teacher's InitializeIfMissing/seed-on-missing shape,
// though there is nothing to seed here beyond the schema itself — the
// audit store has no configuration-derived rows, unlike the teacher's
// zone/device tables.
package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	ts        INTEGER NOT NULL,
	kind      TEXT NOT NULL,
	detail    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_ts ON audit_events(ts);
`

// InitializeIfMissing creates path and its schema when no file exists
// yet. An existing file is left untouched — schema creation uses
// IF NOT EXISTS so re-running it on an already-initialized DB is safe
// too, but the teacher's pattern of skipping entirely when the file is
// already there is kept for symmetry.
func InitializeIfMissing(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("db: failed to create database file: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("db: failed to create schema: %w", err)
	}
	return nil
}

// Open opens the audit store at path, ensuring its schema exists first.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("db: failed to open database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: failed to ensure schema: %w", err)
	}
	return conn, nil
}
