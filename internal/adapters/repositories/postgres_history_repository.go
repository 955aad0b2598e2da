package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bus-route-viewer/internal/platform/obs"
	"bus-route-viewer/internal/ports"
)

// Postgres-backed implementation of the HistoryRepository port.
type PostgresHistoryRepository struct{ DB *sql.DB }

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{DB: db}
}

// Store one history entry. A zero RecordedAt lets the database stamp it.
func (s *PostgresHistoryRepository) Record(ctx context.Context, e ports.HistoryEntry) (err error) {
	defer obs.Time(ctx, "history.Record")(&err)

	if s.DB == nil {
		return errors.New("postgres history repository: DB is nil")
	}

	if strings.TrimSpace(e.RouteNo) == "" {
		return errors.New("record history: route_no must not be empty")
	}

	var recordedAt any
	if !e.RecordedAt.IsZero() {
		recordedAt = e.RecordedAt
	}

	q := `
	INSERT INTO route_history (
		session_id, route_no, outcome, message,
		stop_count, total_distance_km, estimated_time_min, recorded_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()));
	`
	if _, err := s.DB.ExecContext(ctx, q,
		e.SessionID, e.RouteNo, e.Outcome, e.Message,
		e.StopCount, e.TotalDistanceKm, e.EstimatedTimeMin, recordedAt,
	); err != nil {
		return fmt.Errorf("record history route_no=%q: %w", e.RouteNo, err)
	}

	return nil
}

// Return the newest entries first.
func (s *PostgresHistoryRepository) Recent(ctx context.Context, limit int) (_ []ports.HistoryEntry, err error) {
	defer obs.Time(ctx, "history.Recent")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres history repository: DB is nil")
	}

	if limit <= 0 {
		return []ports.HistoryEntry{}, nil
	}

	q := `
	SELECT id, session_id, route_no, outcome, message,
		stop_count, total_distance_km, estimated_time_min, recorded_at
	FROM route_history
	ORDER BY recorded_at DESC, id DESC
	LIMIT $1;
	`
	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent history: query route_history table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.HistoryEntry, 0, limit)
	for rows.Next() {
		var e ports.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.RouteNo, &e.Outcome, &e.Message,
			&e.StopCount, &e.TotalDistanceKm, &e.EstimatedTimeMin, &e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("recent history: scan row: %w", err)
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent history: row iteration: %w", err)
	}

	return out, nil
}
