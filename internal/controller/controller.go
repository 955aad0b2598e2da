// Package controller owns the single current route-optimization request of
// one operator session.
//
// Submit moves the session to Loading and calls the optimizer in the
// background. Each submission gets a monotonically increasing token; a
// completion is applied only while its token is still the current one, so a
// slow earlier request can never overwrite a newer one.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/normalize"
	"bus-route-viewer/internal/platform/obs"
	"bus-route-viewer/internal/ports"

	"github.com/rs/zerolog/log"
)

// Phase is the lifecycle position of a session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseOptimized Phase = "optimized"
	PhaseRemoved   Phase = "removed"
	PhaseEmpty     Phase = "empty"
	PhaseFailed    Phase = "failed"
)

func phaseOf(r domain.RouteResult) Phase {
	switch r.Kind() {
	case domain.KindOptimized:
		return PhaseOptimized
	case domain.KindRemoved:
		return PhaseRemoved
	case domain.KindEmpty:
		return PhaseEmpty
	default:
		return PhaseFailed
	}
}

// State is an immutable snapshot of a session.
type State struct {
	Phase Phase
	// RouteNo is the route being loaded, or the route of Result.
	RouteNo string
	// Token of the submission this state belongs to; zero before the first.
	Token uint64
	// Result is nil while Idle or Loading.
	Result    domain.RouteResult
	UpdatedAt time.Time
}

// Normalizer classifies one completed call.
type Normalizer func(resp ports.RawResponse, transportErr error, routeNo string) domain.RouteResult

// Option configures a Controller.
type Option func(*Controller)

// WithNormalizer replaces normalize.Normalize.
func WithNormalizer(n Normalizer) Option {
	return func(c *Controller) { c.normalize = n }
}

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithListener registers fn like Subscribe does, at construction time.
func WithListener(fn func(State)) Option {
	return func(c *Controller) { c.subscribe(fn) }
}

// Controller is safe for concurrent use.
type Controller struct {
	optimizer ports.RouteOptimizer
	normalize Normalizer
	now       func() time.Time

	// notifyMu serialises transition + notification so listeners see
	// transitions in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	nextToken uint64
	cancel    context.CancelFunc
	listeners map[uint64]func(State)
	nextSub   uint64
}

func New(optimizer ports.RouteOptimizer, opts ...Option) *Controller {
	c := &Controller{
		optimizer: optimizer,
		normalize: normalize.Normalize,
		now:       time.Now,
		listeners: make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = State{Phase: PhaseIdle, UpdatedAt: c.now()}
	return c
}

// Ticket tracks one accepted submission.
type Ticket struct {
	Token   uint64
	RouteNo string

	done    chan struct{}
	applied bool
}

// Done is closed once the optimizer call has finished and its outcome has
// been applied or discarded.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Wait blocks until Done or ctx ends. applied is false when a newer
// submission superseded this one.
func (t *Ticket) Wait(ctx context.Context) (applied bool, err error) {
	select {
	case <-t.done:
		return t.applied, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every state transition, in order.
// fn runs synchronously and must not call Submit.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	id := c.subscribe(fn)
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) subscribe(fn func(State)) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	c.listeners[c.nextSub] = fn
	return c.nextSub
}

// Submit starts an optimization request for routeNo and returns immediately.
//
// A blank routeNo is rejected with *domain.ValidationError before any call is
// made and leaves the state untouched. Otherwise the session moves to Loading
// and any earlier in-flight call is cancelled; its outcome will be ignored.
//
// The call inherits ctx's values but not its cancellation, so a submission
// outlives the HTTP request that made it.
func (c *Controller) Submit(ctx context.Context, routeNo string) (*Ticket, error) {
	routeNo = strings.TrimSpace(routeNo)
	if routeNo == "" {
		return nil, &domain.ValidationError{Field: "route_no", Reason: "must not be empty"}
	}

	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.notifyMu.Lock()
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.nextToken++
	token := c.nextToken
	c.cancel = cancel
	c.state = State{
		Phase:     PhaseLoading,
		RouteNo:   routeNo,
		Token:     token,
		UpdatedAt: c.now(),
	}
	state, listeners := c.state, c.listenerList()
	c.mu.Unlock()
	notify(listeners, state)
	c.notifyMu.Unlock()

	ticket := &Ticket{Token: token, RouteNo: routeNo, done: make(chan struct{})}

	go c.run(callCtx, cancel, ticket)

	return ticket, nil
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, t *Ticket) {
	defer close(t.done)
	defer cancel()

	resp, err := c.optimizer.Optimize(ctx, t.RouteNo)

	t.applied = c.complete(t.Token, t.RouteNo, resp, err)
	if !t.applied {
		log.Debug().
			Str("req_id", obs.RequestID(ctx)).
			Str("route_no", t.RouteNo).
			Uint64("token", t.Token).
			Msg("discarding stale optimizer response")
	}
}

// complete applies a finished call when token is still current.
func (c *Controller) complete(token uint64, routeNo string, resp ports.RawResponse, callErr error) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if token != c.nextToken {
		c.mu.Unlock()
		return false
	}

	result := c.normalize(resp, callErr, routeNo)
	c.cancel = nil
	c.state = State{
		Phase:     phaseOf(result),
		RouteNo:   routeNo,
		Token:     token,
		Result:    result,
		UpdatedAt: c.now(),
	}
	state, listeners := c.state, c.listenerList()
	c.mu.Unlock()

	if failed, ok := result.(domain.Failed); ok {
		log.Warn().
			Str("route_no", routeNo).
			Str("cause", failed.Cause.String()).
			Int("status", failed.Status).
			AnErr("err", failed.Err).
			Msg("route optimization failed")
	}

	notify(listeners, state)
	return true
}

// Close cancels the in-flight call, if any. Its outcome is still delivered
// (as a network failure) unless a newer submission arrives first.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) listenerList() []func(State) {
	out := make([]func(State), 0, len(c.listeners))
	for i := uint64(1); i <= c.nextSub; i++ {
		if fn, ok := c.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
