package db

import (
	"database/sql"
	"fmt"
)

// StartTransaction starts a new database transaction.
func StartTransaction(conn *sql.DB) (*sql.Tx, error) {
	tx, err := conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

// CommitTransaction commits the given transaction.
func CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the given transaction.
func RollbackTransaction(tx *sql.Tx) {
	tx.Rollback()
}

// InsertAuditEventWithTx is InsertAuditEvent scoped to an existing
// transaction, for callers batching several events atomically (e.g. a
// scheduled run recorded together with the pump start it triggered).
func InsertAuditEventWithTx(tx *sql.Tx, ts int64, kind string, detail string) error {
	_, err := tx.Exec(`INSERT INTO audit_events (ts, kind, detail) VALUES (?, ?, ?)`, ts, kind, detail)
	if err != nil {
		return fmt.Errorf("failed to insert audit event %s: %w", kind, err)
	}
	return nil
}
