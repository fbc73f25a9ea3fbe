package db

import (
	"database/sql"
	"fmt"
)

// migrations holds every schema statement in order. Statements use
// IF NOT EXISTS so the full list can be re-run against an existing database.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id         TEXT PRIMARY KEY,
		label      TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS intervals (
		batch_id    TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		source      TEXT NOT NULL,
		title       TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		task_type   TEXT,
		ticket      TEXT,
		description TEXT,
		billable    INTEGER,
		raw_json    TEXT,
		PRIMARY KEY (batch_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_intervals_batch ON intervals(batch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
