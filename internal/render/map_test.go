package render

import (
	"errors"
	"testing"

	"bus-route-viewer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

func route(names ...string) domain.Optimized {
	stops := make([]domain.Stop, 0, len(names))
	for i, n := range names {
		stops = append(stops, domain.Stop{
			Name:        n,
			Lat:         13.0 + float64(i)/100,
			Lon:         80.0 + float64(i)/100,
			ArrivalTime: "7:0" + string(rune('0'+i)),
		})
	}
	return domain.Optimized{RouteNo: "1B", Stops: stops, TotalDistanceKm: 4.2, EstimatedTimeMin: 8.4}
}

func TestMapAssignsRolesByPosition(t *testing.T) {
	v := Map(route("A", "B", "C", "D"))

	require.True(t, v.Available)
	require.Len(t, v.Markers, 4)

	assert.Equal(t, RoleStart, v.Markers[0].Role)
	assert.True(t, v.Markers[0].Start)
	assert.False(t, v.Markers[0].End)

	for _, m := range v.Markers[1:3] {
		assert.Equal(t, RoleWaypoint, m.Role)
		assert.False(t, m.Start)
		assert.False(t, m.End)
	}

	assert.Equal(t, RoleEnd, v.Markers[3].Role)
	assert.True(t, v.Markers[3].End)
}

func TestMapSingleStopIsStartAndEnd(t *testing.T) {
	v := Map(route("Only"))

	require.True(t, v.Available)
	require.Len(t, v.Markers, 1)
	m := v.Markers[0]
	assert.True(t, m.Start)
	assert.True(t, m.End)
	assert.Equal(t, RoleStart, m.Role)
	assert.Equal(t, "Start / End: Only", m.Popup.Title)
	assert.Equal(t, "1 of 1", m.Popup.Position)
}

func TestMapPopups(t *testing.T) {
	r := route("A", "B", "C")
	r.Stops[1].ArrivalTime = ""

	v := Map(r)

	assert.Equal(t, "Start: A", v.Markers[0].Popup.Title)
	assert.Equal(t, "Stop 1: B", v.Markers[1].Popup.Title)
	assert.Equal(t, "End: C", v.Markers[2].Popup.Title)
	assert.Equal(t, "N/A", v.Markers[1].Popup.ArrivalTime)
	assert.Equal(t, "2 of 3", v.Markers[1].Popup.Position)
	assert.Equal(t, 2, v.Markers[1].Index)
}

func TestMapPolylineFollowsStopOrder(t *testing.T) {
	r := route("A", "B", "C")

	v := Map(r)

	require.Len(t, v.Polyline, 3)
	for i, s := range r.Stops {
		assert.Equal(t, []float64{s.Lat, s.Lon}, v.Polyline[i])
	}
	assert.Equal(t, v.Polyline[0], v.Center)

	decoded, rest, err := polyline.DecodeCoords([]byte(v.EncodedPolyline))
	require.NoError(t, err)
	assert.Empty(t, rest)
	require.Len(t, decoded, 3)
	assert.InDelta(t, r.Stops[2].Lat, decoded[2][0], 1e-5)

	require.NotNil(t, v.Bounds)
	assert.InDelta(t, 13.0, v.Bounds.South, 1e-9)
	assert.InDelta(t, 13.02, v.Bounds.North, 1e-9)
	assert.InDelta(t, 80.0, v.Bounds.West, 1e-9)
	assert.InDelta(t, 80.02, v.Bounds.East, 1e-9)
}

func TestMapPlaceholderForOtherVariants(t *testing.T) {
	cases := []domain.RouteResult{
		nil,
		domain.Empty{RouteNo: "3"},
		domain.Removed{RouteNo: "3", Reason: "removed"},
		domain.Failed{Message: "bus not found", Cause: domain.CauseBusiness},
		domain.Failed{Cause: domain.CauseNetwork, Err: errors.New("refused")},
		domain.Optimized{RouteNo: "3"},
	}

	for _, r := range cases {
		v := Map(r)
		assert.False(t, v.Available)
		assert.NotEmpty(t, v.Placeholder)
		assert.Empty(t, v.Markers)
		assert.Empty(t, v.Polyline)
	}
}
