package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema for lookup history.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createHistoryQuery := `
	CREATE TABLE IF NOT EXISTS route_history (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL DEFAULT '',
		route_no TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		stop_count INTEGER NOT NULL DEFAULT 0,
		total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		estimated_time_min DOUBLE PRECISION NOT NULL DEFAULT 0,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_history_recorded_at
	ON route_history(recorded_at DESC);
	`

	statements := []string{
		createHistoryQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
