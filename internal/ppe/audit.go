package ppe

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/DaniloHMoura/EPIApp/internal/store"
)

// Recorder receives a notification of every state-changing operation and
// of security-relevant failures. Fire-and-forget: a failing recorder must
// never block or fail the operation it reports on.
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, details string, at time.Time) error
}

// dbRecorder writes audit entries to the audit_logs table.
type dbRecorder struct {
	db *sql.DB
}

// NewDBRecorder returns a Recorder backed by the store's audit log.
func NewDBRecorder(db *sql.DB) Recorder {
	return &dbRecorder{db: db}
}

func (r *dbRecorder) Record(ctx context.Context, actorID int64, action, details string, at time.Time) error {
	return store.RecordAudit(ctx, r.db, actorID, action, details, at)
}

// record notifies the audit sink. Sink failures are logged and dropped.
func (e *Engine) record(ctx context.Context, actorID int64, action, details string) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Record(ctx, actorID, action, details, e.now()); err != nil {
		slog.Warn("audit sink failed", "action", action, "error", err)
	}
}
