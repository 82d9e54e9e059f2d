package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wwpump/controller/internal/model"
)

// DumpRecentEventsCLI opens dbPath standalone (no long-lived *sql.DB held
// by the caller) and returns the most recent audit events — used by the
// debug command for ad-hoc inspection of a running device's history.
func DumpRecentEventsCLI(dbPath string, limit int) ([]model.AuditEvent, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return ListRecentAuditEvents(conn, limit)
}
