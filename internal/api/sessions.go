package api

import (
	"sync"
	"time"

	"bus-route-viewer/internal/api/handlers"
	"bus-route-viewer/internal/controller"
	"bus-route-viewer/internal/ports"
	"bus-route-viewer/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const SessionCookie = "busroute_session"

type session struct {
	ctrl     *controller.Controller
	lastSeen time.Time
}

// SessionStore keeps one controller per operator session, so one operator's
// lookups never supersede another's.
type SessionStore struct {
	optimizer ports.RouteOptimizer
	history   ports.HistoryRepository
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionStore builds controllers on optimizer. history may be nil.
func NewSessionStore(optimizer ports.RouteOptimizer, history ports.HistoryRepository) *SessionStore {
	return &SessionStore{
		optimizer: optimizer,
		history:   history,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Controller returns the controller for id, creating it on first use.
func (s *SessionStore) Controller(id string) *controller.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		return sess.ctrl
	}

	var opts []controller.Option
	if s.history != nil {
		rec := &services.HistoryRecorder{Repo: s.history, SessionID: id}
		opts = append(opts, controller.WithListener(rec.Observe))
	}

	ctrl := controller.New(s.optimizer, opts...)
	s.sessions[id] = &session{ctrl: ctrl, lastSeen: s.now()}
	log.Debug().Str("session", id).Msg("session started")
	return ctrl
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes and forgets sessions idle for longer than idle.
func (s *SessionStore) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var stale []*controller.Controller
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess.ctrl)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	return len(stale)
}

// middleware resolves the session cookie, issuing a new one when it is
// missing or malformed, and stores the session's controller in Locals.
func (s *SessionStore) middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// fiber strings alias a reused request buffer.
		id := utils.CopyString(c.Cookies(SessionCookie))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(handlers.ControllerKey, s.Controller(id))
		return c.Next()
	}
}
