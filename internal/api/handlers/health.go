package handlers

import (
	"context"
	"time"

	"bus-route-viewer/internal/api/dto"
	"bus-route-viewer/internal/ports"

	"github.com/gofiber/fiber/v2"
)

// Health provides a minimal liveness check endpoint.
func Health(c *fiber.Ctx) error {
	return writeJSON(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}

// BackendHandler reports which optimizer the server talks to and whether it
// currently answers. The probe is advisory: lookups are never blocked on it.
type BackendHandler struct {
	Prober     ports.LivenessProber
	BackendURL string
	Timeout    time.Duration
}

func (h *BackendHandler) Status(c *fiber.Ctx) error {
	res := dto.BackendResponse{BackendURL: h.BackendURL}
	if h.Prober == nil {
		res.Error = "liveness probe not supported"
		return writeJSON(c, fiber.StatusOK, res)
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(requestContext(c), timeout)
	defer cancel()

	if err := h.Prober.Probe(ctx); err != nil {
		res.Error = "optimizer did not answer"
		return writeJSON(c, fiber.StatusOK, res)
	}

	res.Reachable = true
	return writeJSON(c, fiber.StatusOK, res)
}
