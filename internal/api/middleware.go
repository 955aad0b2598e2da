package api

import (
	"time"

	"bus-route-viewer/internal/platform/obs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id, reusing the caller's when given,
// and makes it available to obs.Time through the user context.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Get(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.SetUserContext(obs.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

// accessLogger logs end-to-end request duration and status, at a level
// chosen by the status class.
func accessLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		msg := "HTTP Request"
		if err != nil {
			// Let fiber's error handler write the response before we read it.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			msg = err.Error()
		}

		code := c.Response().StatusCode()

		l := log.With().
			Str("req_id", obs.RequestID(c.UserContext())).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Int("bytes", len(c.Response().Body())).
			Int64("dur_ms", time.Since(start).Milliseconds()).
			Logger()

		switch {
		case code >= fiber.StatusInternalServerError:
			l.Error().Msg(msg)
		case code >= fiber.StatusBadRequest:
			l.Warn().Msg(msg)
		default:
			l.Info().Msg(msg)
		}

		return nil
	}
}
