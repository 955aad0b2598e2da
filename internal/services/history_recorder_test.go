package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus-route-viewer/internal/adapters/repositories"
	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFor(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		state controller.State
		want  ports.HistoryEntry
	}{
		{
			name: "optimized",
			state: controller.State{Phase: controller.PhaseOptimized, RouteNo: "1B", UpdatedAt: at, Result: domain.Optimized{
				RouteNo:          "1B",
				Stops:            []domain.Stop{{Name: "A"}, {Name: "B"}},
				TotalDistanceKm:  12.5,
				EstimatedTimeMin: 25,
			}},
			want: ports.HistoryEntry{RouteNo: "1B", Outcome: "optimized", StopCount: 2, TotalDistanceKm: 12.5, EstimatedTimeMin: 25, RecordedAt: at},
		},
		{
			name: "removed",
			state: controller.State{Phase: controller.PhaseRemoved, RouteNo: "42", UpdatedAt: at, Result: domain.Removed{
				RouteNo: "42", Reason: "Route 42 removed", RemovedStops: []domain.RemovedStop{{Name: "X"}},
			}},
			want: ports.HistoryEntry{RouteNo: "42", Outcome: "removed", StopCount: 1, Message: "Route 42 removed", RecordedAt: at},
		},
		{
			name:  "empty",
			state: controller.State{Phase: controller.PhaseEmpty, RouteNo: "3", UpdatedAt: at, Result: domain.Empty{RouteNo: "3"}},
			want:  ports.HistoryEntry{RouteNo: "3", Outcome: "empty", RecordedAt: at},
		},
		{
			name: "failed",
			state: controller.State{Phase: controller.PhaseFailed, RouteNo: "5", UpdatedAt: at, Result: domain.Failed{
				RouteNo: "5", Message: "HTTP error 500", Cause: domain.CauseHTTP, Status: 500,
			}},
			want: ports.HistoryEntry{RouteNo: "5", Outcome: "failed:http_error", Message: "HTTP error 500", RecordedAt: at},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EntryFor(tc.state))
		})
	}
}

func TestHistoryRecorderSkipsLoading(t *testing.T) {
	repo := repositories.NewMemoryHistoryRepository(10)
	h := &HistoryRecorder{Repo: repo, SessionID: "s1"}

	h.Observe(controller.State{Phase: controller.PhaseLoading, RouteNo: "1"})
	h.Observe(controller.State{Phase: controller.PhaseEmpty, RouteNo: "1", Result: domain.Empty{RouteNo: "1"}})

	got, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "empty", got[0].Outcome)
	assert.Equal(t, "s1", got[0].SessionID)
}

type failingRepo struct{}

func (failingRepo) Record(context.Context, ports.HistoryEntry) error {
	return errors.New("connection refused")
}

func (failingRepo) Recent(context.Context, int) ([]ports.HistoryEntry, error) { return nil, nil }

func TestHistoryRecorderSwallowsWriteErrors(t *testing.T) {
	h := &HistoryRecorder{Repo: failingRepo{}}

	assert.NotPanics(t, func() {
		h.Observe(controller.State{Phase: controller.PhaseEmpty, RouteNo: "1", Result: domain.Empty{RouteNo: "1"}})
	})
}
