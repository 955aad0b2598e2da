package services

import (
	"testing"
	"time"

	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildViewOptimizedMapAndListAgree(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := controller.State{
		Phase:   controller.PhaseOptimized,
		RouteNo: "1B",
		Token:   3,
		Result: domain.Optimized{
			RouteNo: "1B",
			Stops: []domain.Stop{
				{Name: "Porur", Lat: 13.03, Lon: 80.15, ArrivalTime: "7:05"},
				{Name: "Vanagaram", Lat: 13.06, Lon: 80.14},
				{Name: "College", Lat: 13.00, Lon: 80.00},
			},
			TotalDistanceKm: 18.4,
		},
		UpdatedAt: at,
	}

	v := BuildView(s)

	assert.Equal(t, controller.PhaseOptimized, v.Phase)
	assert.Equal(t, uint64(3), v.Token)
	assert.Equal(t, at, v.UpdatedAt)
	require.True(t, v.Map.Available)
	require.Len(t, v.Map.Markers, 3)
	require.Len(t, v.List.Rows, 3)
	for i := range v.List.Rows {
		assert.Equal(t, v.List.Rows[i].Name, v.Map.Markers[i].Name)
		assert.Equal(t, v.List.Rows[i].Order, v.Map.Markers[i].Index)
	}
}

func TestBuildViewLoadingShowsProgress(t *testing.T) {
	v := BuildView(controller.State{Phase: controller.PhaseLoading, RouteNo: "7", Token: 1})

	assert.False(t, v.Map.Available)
	assert.Equal(t, "Optimizing route 7...", v.Map.Placeholder)
	assert.Equal(t, "Optimizing route 7...", v.List.Placeholder)
	assert.Empty(t, v.List.Rows)
}

func TestBuildViewIdle(t *testing.T) {
	v := BuildView(controller.State{Phase: controller.PhaseIdle})

	assert.False(t, v.Map.Available)
	assert.NotEmpty(t, v.Map.Placeholder)
	assert.NotEmpty(t, v.List.Placeholder)
}

func TestBuildViewFailedNeverShowsMap(t *testing.T) {
	v := BuildView(controller.State{
		Phase:   controller.PhaseFailed,
		RouteNo: "9",
		Result:  domain.Failed{RouteNo: "9", Message: "bus not found", Cause: domain.CauseBusiness},
	})

	assert.False(t, v.Map.Available)
	assert.Empty(t, v.Map.Markers)
	assert.Equal(t, "bus not found", v.List.Placeholder)
}
