package services

import (
	"context"
	"time"

	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/ports"

	"github.com/rs/zerolog/log"
)

// HistoryRecorder stores every applied result of a session. It is meant to
// be registered as a controller listener.
type HistoryRecorder struct {
	Repo      ports.HistoryRepository
	SessionID string
	Timeout   time.Duration
}

// Observe records s when it carries a result; Loading states are skipped.
// Write failures are logged and never reach the operator.
func (h *HistoryRecorder) Observe(s controller.State) {
	if h.Repo == nil || s.Result == nil {
		return
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entry := EntryFor(s)
	entry.SessionID = h.SessionID

	if err := h.Repo.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("route_no", s.RouteNo).Msg("history write failed")
	}
}

// EntryFor summarises a completed state as a history entry.
func EntryFor(s controller.State) ports.HistoryEntry {
	entry := ports.HistoryEntry{
		RouteNo:    s.RouteNo,
		Outcome:    string(s.Phase),
		RecordedAt: s.UpdatedAt,
	}

	switch r := s.Result.(type) {
	case domain.Optimized:
		entry.StopCount = len(r.Stops)
		entry.TotalDistanceKm = r.TotalDistanceKm
		entry.EstimatedTimeMin = r.EstimatedTimeMin
	case domain.Removed:
		entry.StopCount = len(r.RemovedStops)
		entry.Message = r.Reason
	case domain.Failed:
		entry.Outcome = string(s.Phase) + ":" + r.Cause.String()
		entry.Message = r.Message
	}

	return entry
}
