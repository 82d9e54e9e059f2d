package db

import (
	"database/sql"
	"fmt"

	"github.com/wwpump/controller/internal/model"
)

// InsertAuditEvent appends one observational row. detail is free-form
// (slot coordinates, a sensor reading, whatever is useful context for
// the kind) and is never parsed back by the control loop.
func InsertAuditEvent(conn *sql.DB, ts int64, kind model.AuditEventKind, detail string) error {
	_, err := conn.Exec(`INSERT INTO audit_events (ts, kind, detail) VALUES (?, ?, ?)`, ts, string(kind), detail)
	if err != nil {
		return fmt.Errorf("db: failed to insert audit event %s: %w", kind, err)
	}
	return nil
}

// ListRecentAuditEvents returns up to limit most-recent rows, newest
// first.
func ListRecentAuditEvents(conn *sql.DB, limit int) ([]model.AuditEvent, error) {
	rows, err := conn.Query(`SELECT id, ts, kind, detail FROM audit_events ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("db: failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		var kind string
		if err := rows.Scan(&e.ID, &e.Timestamp, &kind, &e.Detail); err != nil {
			return nil, fmt.Errorf("db: failed to scan audit event: %w", err)
		}
		e.Kind = model.AuditEventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountAuditEvents returns the total row count, used by diagnostics and
// tests to confirm writes landed without needing to pull the full list.
func CountAuditEvents(conn *sql.DB) (int, error) {
	var count int
	err := conn.QueryRow(`SELECT COUNT(*) FROM audit_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db: failed to count audit events: %w", err)
	}
	return count, nil
}
