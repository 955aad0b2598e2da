package handlers

import (
	"context"

	"bus-route-viewer/internal/api/dto"
	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals key under which the session middleware stores the caller's
// controller.
const ControllerKey = "busroute.controller"

func writeJSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return writeJSON(c, status, fiber.Map{"error": msg})
}

func sessionController(c *fiber.Ctx) (*controller.Controller, bool) {
	ctrl, ok := c.Locals(ControllerKey).(*controller.Controller)
	return ctrl, ok && ctrl != nil
}

// requestContext returns the context set by the request-id middleware.
func requestContext(c *fiber.Ctx) context.Context {
	return c.UserContext()
}

func stateResponse(s controller.State) dto.StateResponse {
	return dto.StateResponse{
		Phase:     string(s.Phase),
		RouteNo:   s.RouteNo,
		Token:     s.Token,
		UpdatedAt: s.UpdatedAt,
	}
}

func viewResponse(s controller.State) dto.ViewResponse {
	v := services.BuildView(s)
	return dto.ViewResponse{
		State: stateResponse(s),
		Map:   v.Map,
		List:  v.List,
	}
}
