package render

import (
	"fmt"

	"bus-route-viewer/internal/domain"
)

const networkHint = "Check your connection and make sure the route optimizer is running."

type ListRow struct {
	Order int    `json:"order,omitempty" csv:"order"`
	Name  string `json:"name" csv:"name"`
	// Nil for removed stops, which carry no position.
	Lat         *float64 `json:"lat,omitempty" csv:"lat"`
	Lon         *float64 `json:"lon,omitempty" csv:"lon"`
	Coordinates string   `json:"coordinates,omitempty" csv:"coordinates"`
	ArrivalTime string   `json:"arrival_time,omitempty" csv:"arrival_time"`
	Students    *int     `json:"students,omitempty" csv:"students"`
}

type Summary struct {
	TotalDistanceKm  float64 `json:"total_distance_km"`
	EstimatedTimeMin float64 `json:"estimated_time_min"`
	StopCount        int     `json:"stop_count"`
	TotalStudents    *int    `json:"total_students,omitempty"`
	FinalStop        string  `json:"final_stop,omitempty"`
}

type ListView struct {
	Kind        domain.Kind `json:"kind,omitempty"`
	RouteNo     string      `json:"route_no,omitempty"`
	Title       string      `json:"title"`
	Rows        []ListRow   `json:"rows,omitempty"`
	Summary     *Summary    `json:"summary,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Hint        string      `json:"hint,omitempty"`
}

// List builds the itinerary for a result. Variants without rows, and nil,
// always carry a placeholder so the list is never blank.
func List(result domain.RouteResult) ListView {
	switch r := result.(type) {
	case domain.Optimized:
		return optimizedList(r)
	case domain.Removed:
		return removedList(r)
	case domain.Empty:
		return ListView{
			Kind:        domain.KindEmpty,
			RouteNo:     r.RouteNo,
			Title:       fmt.Sprintf("Route %s", r.RouteNo),
			Placeholder: "No optimized route data was returned for this bus.",
		}
	case domain.Failed:
		v := ListView{
			Kind:        domain.KindFailed,
			RouteNo:     r.RouteNo,
			Title:       "Optimization failed",
			Placeholder: r.Message,
		}
		if v.Placeholder == "" {
			v.Placeholder = "The route could not be optimized."
		}
		if r.Cause == domain.CauseNetwork {
			v.Hint = networkHint
		}
		return v
	default:
		return ListView{
			Title:       "Stops",
			Placeholder: "Enter a route number to see its stops.",
		}
	}
}

func optimizedList(r domain.Optimized) ListView {
	rows := make([]ListRow, 0, len(r.Stops))
	for i, s := range r.Stops {
		rows = append(rows, ListRow{
			Order:       i + 1,
			Name:        s.Name,
			Lat:         &s.Lat,
			Lon:         &s.Lon,
			Coordinates: fmt.Sprintf("%.4f, %.4f", s.Lat, s.Lon),
			ArrivalTime: displayTime(s.ArrivalTime),
			Students:    s.Students,
		})
	}

	return ListView{
		Kind:    domain.KindOptimized,
		RouteNo: r.RouteNo,
		Title:   fmt.Sprintf("Route %s - Optimized Path", r.RouteNo),
		Rows:    rows,
		Summary: &Summary{
			TotalDistanceKm:  r.TotalDistanceKm,
			EstimatedTimeMin: r.EstimatedTimeMin,
			StopCount:        len(r.Stops),
			TotalStudents:    r.ReportedStudents(),
			FinalStop:        r.FinalStop,
		},
	}
}

func removedList(r domain.Removed) ListView {
	rows := make([]ListRow, 0, len(r.RemovedStops))
	for _, s := range r.RemovedStops {
		rows = append(rows, ListRow{Name: s.Name, Students: s.Students})
	}

	v := ListView{
		Kind:    domain.KindRemoved,
		RouteNo: r.RouteNo,
		Title:   fmt.Sprintf("Route %s Removed", r.RouteNo),
		Rows:    rows,
		Reason:  r.Reason,
	}
	if len(rows) == 0 {
		v.Placeholder = "The optimizer did not list the removed stops."
	}
	return v
}
