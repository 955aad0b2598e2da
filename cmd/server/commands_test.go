package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"bus-route-viewer/internal/adapters/optimizer"
	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const route7 = `{"route_no": "7", "optimized_order": [
	{"stop_name": "Depot", "lat": 13.0, "lon": 80.0, "time": "6:50"},
	{"stop_name": "School", "lat": 13.1, "lon": 80.1}
], "total_distance_km": 9.5, "estimated_time_min": 19}`

func TestLookupWaitsForOutcome(t *testing.T) {
	opt := optimizer.NewMockOptimizer(map[string]optimizer.MockReply{"7": {Body: route7}})

	state, err := lookup(context.Background(), controller.New(opt), " 7 ", time.Second)
	require.NoError(t, err)
	assert.Equal(t, controller.PhaseOptimized, state.Phase)
	assert.Equal(t, "7", state.RouteNo)
}

func TestLookupRejectsBlankRoute(t *testing.T) {
	opt := optimizer.NewMockOptimizer(nil)

	_, err := lookup(context.Background(), controller.New(opt), "", time.Second)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, opt.Calls())
}

func TestPrintStateFormats(t *testing.T) {
	opt := optimizer.NewMockOptimizer(map[string]optimizer.MockReply{"7": {Body: route7}})
	state, err := lookup(context.Background(), controller.New(opt), "7", time.Second)
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, printState(&text, state, "text"))
	assert.Contains(t, text.String(), "Route 7 - Optimized Path")
	assert.Contains(t, text.String(), "Depot")
	assert.Contains(t, text.String(), "N/A")

	var csv bytes.Buffer
	require.NoError(t, printState(&csv, state, "csv"))
	assert.Len(t, strings.Split(strings.TrimSpace(csv.String()), "\n"), 3)

	var js bytes.Buffer
	require.NoError(t, printState(&js, state, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "optimized", decoded["phase"])
}
