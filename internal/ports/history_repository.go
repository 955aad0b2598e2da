package ports

import (
	"context"
	"time"
)

// One applied optimization outcome, as recorded for operators.
type HistoryEntry struct {
	ID               int64
	SessionID        string
	RouteNo          string
	Outcome          string
	Message          string
	StopCount        int
	TotalDistanceKm  float64
	EstimatedTimeMin float64
	RecordedAt       time.Time
}

// Port: a boundary for storing and listing lookup history.
type HistoryRepository interface {
	// Store one entry.
	Record(ctx context.Context, entry HistoryEntry) error
	// Return the most recent entries, newest first.
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
}
