package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwpump/controller/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	_, err = conn.Exec(schema)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestInsertAndListAuditEvents(t *testing.T) {
	conn := openTestDB(t)

	require.NoError(t, InsertAuditEvent(conn, 100, model.AuditDemand, "Mon 07:30"))
	require.NoError(t, InsertAuditEvent(conn, 200, model.AuditPumpOn, ""))

	count, err := CountAuditEvents(conn)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	events, err := ListRecentAuditEvents(conn, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.AuditPumpOn, events[0].Kind, "newest first")
	assert.Equal(t, model.AuditDemand, events[1].Kind)
}

func TestListRecentAuditEventsRespectsLimit(t *testing.T) {
	conn := openTestDB(t)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, InsertAuditEvent(conn, i, model.AuditDesinfect, ""))
	}

	events, err := ListRecentAuditEvents(conn, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestTransactionHelpersCommitAndRollback(t *testing.T) {
	conn := openTestDB(t)

	tx, err := StartTransaction(conn)
	require.NoError(t, err)
	require.NoError(t, InsertAuditEventWithTx(tx, 1, string(model.AuditScheduledRun), ""))
	require.NoError(t, CommitTransaction(tx))

	count, err := CountAuditEvents(conn)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tx, err = StartTransaction(conn)
	require.NoError(t, err)
	require.NoError(t, InsertAuditEventWithTx(tx, 2, string(model.AuditSanityFailure), ""))
	RollbackTransaction(tx)

	count, err = CountAuditEvents(conn)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "rolled-back insert must not persist")
}
