package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Replace the original plain index on items.code with a
	// partial unique index so that approval codes stay unique among active
	// items while soft-deleted items can keep theirs.
	`DROP INDEX IF EXISTS idx_items_code`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_items_code_active
	     ON items(code) WHERE deleted_at IS NULL AND code IS NOT NULL AND code != ''`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
