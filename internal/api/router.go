package api

import (
	"time"

	"bus-route-viewer/internal/api/handlers"
	"bus-route-viewer/internal/ports"

	"github.com/gofiber/fiber/v2"
)

// Deps are the adapters the web API is composed from.
type Deps struct {
	Sessions   *SessionStore
	History    ports.HistoryRepository
	Prober     ports.LivenessProber
	BackendURL string
	// HistoryLimit is the default page size of /api/history.
	HistoryLimit int
	WaitTimeout  time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns the fiber
// app. This is the API composition root (handlers stay unaware of concrete
// adapters).
func NewRouter(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "busroute",
		DisableStartupMessage: true,
	})
	app.Use(requestID(), accessLogger())

	app.Get("/health", handlers.Health)

	group := app.Group("/api")

	backend := &handlers.BackendHandler{Prober: d.Prober, BackendURL: d.BackendURL}
	group.Get("/backend", backend.Status)

	routes := &handlers.RouteHandler{WaitTimeout: d.WaitTimeout}
	routeGroup := group.Group("/routes", d.Sessions.middleware())
	routeGroup.Post("/", routes.Submit)
	routeGroup.Get("/current", routes.Current)
	routeGroup.Get("/current/map", routes.Map)
	routeGroup.Get("/current/list", routes.List)
	routeGroup.Get("/current/itinerary.csv", routes.Itinerary)

	if d.History != nil {
		history := &handlers.HistoryHandler{Repo: d.History, DefaultLimit: d.HistoryLimit, MaxLimit: 500}
		group.Get("/history", history.Recent)
	}

	return app
}
