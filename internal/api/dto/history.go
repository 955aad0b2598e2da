package dto

import "time"

type HistoryEntryResponse struct {
	ID               int64     `json:"id"`
	RouteNo          string    `json:"route_no"`
	Outcome          string    `json:"outcome"`
	Message          string    `json:"message,omitempty"`
	StopCount        int       `json:"stop_count"`
	TotalDistanceKm  float64   `json:"total_distance_km"`
	EstimatedTimeMin float64   `json:"estimated_time_min"`
	RecordedAt       time.Time `json:"recorded_at"`
}

type ListHistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

type BackendResponse struct {
	BackendURL string `json:"backend_url"`
	Reachable  bool   `json:"reachable"`
	Error      string `json:"error,omitempty"`
}
