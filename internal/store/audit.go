package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditEntry is one recorded state-changing operation or security-relevant
// failure.
type AuditEntry struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordAudit appends an audit log row.
func RecordAudit(ctx context.Context, db *sql.DB, actorID int64, action, details string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, action, details, created_at) VALUES (?, ?, ?, ?)`,
		actorID, action, nullString(details), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries, newest first, optionally filtered by
// actor and capped at limit (0 = no cap).
func ListAudit(ctx context.Context, db *sql.DB, actorID int64, limit int) ([]AuditEntry, error) {
	query := `SELECT id, actor_id, action, details, created_at FROM audit_logs`
	var args []any

	if actorID > 0 {
		query += ` WHERE actor_id = ?`
		args = append(args, actorID)
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Details = details.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
