package dto

import (
	"time"

	"bus-route-viewer/internal/render"
)

type SubmitRouteRequest struct {
	RouteNo string `json:"route_no"`
}

type StateResponse struct {
	Phase     string    `json:"phase"`
	RouteNo   string    `json:"route_no,omitempty"`
	Token     uint64    `json:"token"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubmitRouteResponse struct {
	Token   uint64        `json:"token"`
	RouteNo string        `json:"route_no"`
	State   StateResponse `json:"state"`
}

type ViewResponse struct {
	State StateResponse   `json:"state"`
	Map   render.MapView  `json:"map"`
	List  render.ListView `json:"list"`
	// Set only on waited submissions; false when a newer one replaced it.
	Applied *bool `json:"applied,omitempty"`
}
