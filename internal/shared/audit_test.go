package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	sql  string
	args []interface{}
	err  error
}

func (r *recordingExecer) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.sql = sql
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestAuditLoggerRecord(t *testing.T) {
	db := &recordingExecer{}
	logger := NewAuditLogger(db)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := logger.Record(context.Background(), AuditLog{
		Action:   "supplier.created",
		Entity:   "supplier",
		EntityID: "42",
		Meta:     map[string]any{"event_id": "abc"},
		At:       at,
	})
	require.NoError(t, err)
	assert.Contains(t, db.sql, "INSERT INTO audit_logs")
	require.Len(t, db.args, 6)
	assert.Equal(t, "supplier.created", db.args[1])
	assert.Equal(t, "42", db.args[3])
	assert.JSONEq(t, `{"event_id":"abc"}`, string(db.args[4].([]byte)))
	assert.Equal(t, &at, db.args[5])
}

func TestAuditLoggerRecordLetsDatabaseStampTime(t *testing.T) {
	db := &recordingExecer{}
	err := NewAuditLogger(db).Record(context.Background(), AuditLog{Action: "a", Entity: "e", EntityID: "1"})
	require.NoError(t, err)
	assert.Nil(t, db.args[5])
}

func TestAuditLoggerRecordRejectsIncompleteEntries(t *testing.T) {
	db := &recordingExecer{}
	err := NewAuditLogger(db).Record(context.Background(), AuditLog{Action: "a"})
	require.Error(t, err)
	assert.Empty(t, db.sql)
}

func TestAuditLoggerRecordPropagatesExecError(t *testing.T) {
	db := &recordingExecer{err: errors.New("boom")}
	err := NewAuditLogger(db).Record(context.Background(), AuditLog{Action: "a", Entity: "e", EntityID: "1"})
	require.EqualError(t, err, "boom")
}

func TestNilAuditLogger(t *testing.T) {
	var logger *AuditLogger
	require.Error(t, logger.Record(context.Background(), AuditLog{}))
}
