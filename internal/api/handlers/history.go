package handlers

import (
	"strconv"

	"bus-route-viewer/internal/api/dto"
	"bus-route-viewer/internal/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HistoryHandler exposes read-only lookup history.
type HistoryHandler struct {
	Repo         ports.HistoryRepository
	DefaultLimit int
	MaxLimit     int
}

func (h *HistoryHandler) Recent(c *fiber.Ctx) error {
	limit := h.DefaultLimit
	if limit <= 0 {
		limit = 50
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return writeError(c, fiber.StatusBadRequest, "Parameter limit should be a positive integer")
		}
		limit = n
	}
	if h.MaxLimit > 0 && limit > h.MaxLimit {
		limit = h.MaxLimit
	}

	entries, err := h.Repo.Recent(requestContext(c), limit)
	if err != nil {
		log.Error().Err(err).Msg("list history failed")
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}

	res := dto.ListHistoryResponse{
		Entries: make([]dto.HistoryEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		res.Entries = append(res.Entries, dto.HistoryEntryResponse{
			ID:               e.ID,
			RouteNo:          e.RouteNo,
			Outcome:          e.Outcome,
			Message:          e.Message,
			StopCount:        e.StopCount,
			TotalDistanceKm:  e.TotalDistanceKm,
			EstimatedTimeMin: e.EstimatedTimeMin,
			RecordedAt:       e.RecordedAt,
		})
	}

	return writeJSON(c, fiber.StatusOK, res)
}
