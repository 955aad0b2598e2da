package handlers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"bus-route-viewer/internal/api/dto"
	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/render"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteHandler drives the caller's session controller: submitting a route
// number and reading back the current snapshot as map and list views.
type RouteHandler struct {
	// WaitTimeout bounds ?wait=true submissions.
	WaitTimeout time.Duration
}

func (h *RouteHandler) Submit(c *fiber.Ctx) error {
	ctrl, ok := sessionController(c)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}

	var req dto.SubmitRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "invalid json body")
	}

	ticket, err := ctrl.Submit(requestContext(c), req.RouteNo)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return writeError(c, fiber.StatusBadRequest, "Please enter a bus route number.")
		}
		log.Error().Err(err).Msg("submit route failed")
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}

	if !strings.EqualFold(c.Query("wait"), "true") {
		return writeJSON(c, fiber.StatusAccepted, dto.SubmitRouteResponse{
			Token:   ticket.Token,
			RouteNo: ticket.RouteNo,
			State:   stateResponse(ctrl.State()),
		})
	}

	timeout := h.WaitTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
	defer cancel()

	applied, err := ticket.Wait(ctx)
	if err != nil {
		return writeJSON(c, fiber.StatusAccepted, dto.SubmitRouteResponse{
			Token:   ticket.Token,
			RouteNo: ticket.RouteNo,
			State:   stateResponse(ctrl.State()),
		})
	}

	res := viewResponse(ctrl.State())
	res.Applied = &applied
	return writeJSON(c, fiber.StatusOK, res)
}

func (h *RouteHandler) Current(c *fiber.Ctx) error {
	ctrl, ok := sessionController(c)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return writeJSON(c, fiber.StatusOK, viewResponse(ctrl.State()))
}

func (h *RouteHandler) Map(c *fiber.Ctx) error {
	ctrl, ok := sessionController(c)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return writeJSON(c, fiber.StatusOK, viewResponse(ctrl.State()).Map)
}

func (h *RouteHandler) List(c *fiber.Ctx) error {
	ctrl, ok := sessionController(c)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return writeJSON(c, fiber.StatusOK, viewResponse(ctrl.State()).List)
}

// Itinerary downloads the current list rows as CSV.
func (h *RouteHandler) Itinerary(c *fiber.Ctx) error {
	ctrl, ok := sessionController(c)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}

	s := ctrl.State()
	var buf bytes.Buffer
	if err := render.WriteCSV(&buf, render.List(s.Result)); err != nil {
		log.Error().Err(err).Str("route_no", s.RouteNo).Msg("itinerary export failed")
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}

	name := "itinerary.csv"
	if s.RouteNo != "" && s.Result != nil {
		name = "route-" + sanitizeFilename(s.RouteNo) + ".csv"
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
