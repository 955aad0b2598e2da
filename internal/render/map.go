// Package render turns a RouteResult snapshot into map and itinerary view
// models. Every function here is pure: the same result always yields the
// same view, which keeps the map and the list in agreement.
package render

import (
	"fmt"

	"bus-route-viewer/internal/domain"

	"github.com/twpayne/go-polyline"
)

// Role of a marker, decided purely by its position in the route.
type Role string

const (
	RoleStart    Role = "start"
	RoleEnd      Role = "end"
	RoleWaypoint Role = "waypoint"
)

type Popup struct {
	Title       string `json:"title"`
	ArrivalTime string `json:"arrival_time"`
	Position    string `json:"position"`
}

type Marker struct {
	// Index is 1-based.
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Role  Role    `json:"role"`
	// A one-stop route is both start and end.
	Start bool  `json:"start"`
	End   bool  `json:"end"`
	Popup Popup `json:"popup"`
}

type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type MapView struct {
	Available   bool   `json:"available"`
	Placeholder string `json:"placeholder,omitempty"`
	RouteNo     string `json:"route_no,omitempty"`
	// Polyline holds [lat, lon] pairs in visiting order.
	Polyline        [][]float64 `json:"polyline,omitempty"`
	EncodedPolyline string      `json:"encoded_polyline,omitempty"`
	Center          []float64   `json:"center,omitempty"`
	Bounds          *Bounds     `json:"bounds,omitempty"`
	Markers         []Marker    `json:"markers,omitempty"`
}

// Map draws an Optimized result. Any other variant, including nil, yields a
// placeholder view instead of an empty map.
func Map(result domain.RouteResult) MapView {
	route, ok := result.(domain.Optimized)
	if !ok || len(route.Stops) == 0 {
		return MapView{Placeholder: mapPlaceholder(result)}
	}

	n := len(route.Stops)
	coords := make([][]float64, 0, n)
	markers := make([]Marker, 0, n)
	bounds := Bounds{South: 90, West: 180, North: -90, East: -180}

	for i, s := range route.Stops {
		coords = append(coords, s.Coordinates().CoordsToList())

		bounds.South = min(bounds.South, s.Lat)
		bounds.North = max(bounds.North, s.Lat)
		bounds.West = min(bounds.West, s.Lon)
		bounds.East = max(bounds.East, s.Lon)

		start, end := i == 0, i == n-1
		role := RoleWaypoint
		switch {
		case start:
			role = RoleStart
		case end:
			role = RoleEnd
		}

		markers = append(markers, Marker{
			Index: i + 1,
			Name:  s.Name,
			Lat:   s.Lat,
			Lon:   s.Lon,
			Role:  role,
			Start: start,
			End:   end,
			Popup: Popup{
				Title:       popupTitle(i, n, s.Name),
				ArrivalTime: displayTime(s.ArrivalTime),
				Position:    fmt.Sprintf("%d of %d", i+1, n),
			},
		})
	}

	return MapView{
		Available:       true,
		RouteNo:         route.RouteNo,
		Polyline:        coords,
		EncodedPolyline: string(polyline.EncodeCoords(coords)),
		Center:          coords[0],
		Bounds:          &bounds,
		Markers:         markers,
	}
}

func popupTitle(i, n int, name string) string {
	switch {
	case n == 1:
		return "Start / End: " + name
	case i == 0:
		return "Start: " + name
	case i == n-1:
		return "End: " + name
	default:
		return fmt.Sprintf("Stop %d: %s", i, name)
	}
}

func mapPlaceholder(result domain.RouteResult) string {
	switch r := result.(type) {
	case domain.Removed:
		return fmt.Sprintf("Route %s has been removed. No route to display.", r.RouteNo)
	case domain.Empty:
		return fmt.Sprintf("No stops were returned for route %s. No route to display.", r.RouteNo)
	case domain.Failed:
		return "No route to display."
	default:
		return "No route data to display."
	}
}

func displayTime(t string) string {
	if t == "" {
		return "N/A"
	}
	return t
}
