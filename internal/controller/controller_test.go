package controller

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"bus-route-viewer/internal/adapters/optimizer"
	"bus-route-viewer/internal/domain"
	"bus-route-viewer/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedOptimizer holds every call until the test releases it, so tests decide
// completion order.
type gatedOptimizer struct {
	mu      sync.Mutex
	calls   []string
	pending map[string]chan reply
	started chan string
}

type reply struct {
	resp ports.RawResponse
	err  error
}

func newGatedOptimizer() *gatedOptimizer {
	return &gatedOptimizer{
		pending: make(map[string]chan reply),
		started: make(chan string, 16),
	}
}

func (g *gatedOptimizer) gate(routeNo string) chan reply {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.pending[routeNo]
	if !ok {
		ch = make(chan reply, 1)
		g.pending[routeNo] = ch
	}
	return ch
}

func (g *gatedOptimizer) Optimize(ctx context.Context, routeNo string) (ports.RawResponse, error) {
	g.mu.Lock()
	g.calls = append(g.calls, routeNo)
	g.mu.Unlock()

	ch := g.gate(routeNo)
	g.started <- routeNo

	r := <-ch
	return r.resp, r.err
}

func (g *gatedOptimizer) release(routeNo string, body string) {
	g.gate(routeNo) <- reply{resp: ports.RawResponse{StatusCode: 200, Body: []byte(body)}}
}

func (g *gatedOptimizer) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func waitTicket(t *testing.T, ticket *Ticket) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	applied, err := ticket.Wait(ctx)
	require.NoError(t, err)
	return applied
}

const routeA = `{"route_no": "A", "optimized_order": [{"stop": "A1", "lat": 13.0, "lon": 80.0}]}`
const routeB = `{"route_no": "B", "optimized_order": [{"stop": "B1", "lat": 13.1, "lon": 80.1}, {"stop": "B2", "lat": 13.2, "lon": 80.2}]}`

func TestNewControllerStartsIdle(t *testing.T) {
	c := New(newGatedOptimizer())

	s := c.State()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Result)
	assert.Zero(t, s.Token)
}

func TestSubmitRejectsBlankRouteWithoutCalling(t *testing.T) {
	opt := newGatedOptimizer()
	c := New(opt)

	var notified int
	c.Subscribe(func(State) { notified++ })

	before := c.State()
	for _, in := range []string{"", "   ", "\t\n"} {
		ticket, err := c.Submit(context.Background(), in)
		assert.Nil(t, ticket)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "route_no", verr.Field)
	}

	assert.Equal(t, before, c.State())
	assert.Zero(t, opt.callCount())
	assert.Zero(t, notified)
}

func TestSubmitAppliesResult(t *testing.T) {
	opt := optimizer.NewMockOptimizer(map[string]optimizer.MockReply{"B": {Body: routeB}})
	c := New(opt)

	ticket, err := c.Submit(context.Background(), "  B ")
	require.NoError(t, err)
	assert.Equal(t, "B", ticket.RouteNo)
	assert.True(t, waitTicket(t, ticket))

	s := c.State()
	assert.Equal(t, PhaseOptimized, s.Phase)
	assert.Equal(t, ticket.Token, s.Token)

	route, ok := s.Result.(domain.Optimized)
	require.True(t, ok)
	assert.Len(t, route.Stops, 2)
	assert.Equal(t, []string{"B"}, opt.Calls())
}

func TestSubmitShowsLoadingUntilCompletion(t *testing.T) {
	opt := newGatedOptimizer()
	c := New(opt)

	ticket, err := c.Submit(context.Background(), "A")
	require.NoError(t, err)
	<-opt.started

	s := c.State()
	assert.Equal(t, PhaseLoading, s.Phase)
	assert.Equal(t, "A", s.RouteNo)
	assert.Nil(t, s.Result)

	opt.release("A", routeA)
	assert.True(t, waitTicket(t, ticket))
	assert.Equal(t, PhaseOptimized, c.State().Phase)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	opt := newGatedOptimizer()
	c := New(opt)

	var (
		mu     sync.Mutex
		phases []Phase
	)
	c.Subscribe(func(s State) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})

	first, err := c.Submit(context.Background(), "A")
	require.NoError(t, err)
	<-opt.started

	second, err := c.Submit(context.Background(), "B")
	require.NoError(t, err)
	<-opt.started

	opt.release("B", routeB)
	assert.True(t, waitTicket(t, second))

	opt.release("A", routeA)
	assert.False(t, waitTicket(t, first), "A finished after B and must be dropped")

	s := c.State()
	assert.Equal(t, "B", s.RouteNo)
	assert.Equal(t, second.Token, s.Token)
	route := s.Result.(domain.Optimized)
	assert.Equal(t, "B1", route.Stops[0].Name)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseLoading, PhaseLoading, PhaseOptimized}, phases)
}

func TestTokensIncreaseMonotonically(t *testing.T) {
	opt := optimizer.NewMockOptimizer(nil)
	c := New(opt)

	var last uint64
	for _, r := range []string{"1", "2", "3"} {
		ticket, err := c.Submit(context.Background(), r)
		require.NoError(t, err)
		assert.Greater(t, ticket.Token, last)
		last = ticket.Token
		waitTicket(t, ticket)
	}
}

func TestExactlyOneTransitionPerCompletion(t *testing.T) {
	opt := optimizer.NewMockOptimizer(map[string]optimizer.MockReply{"B": {Body: routeB}})
	c := New(opt)

	var states []State
	var mu sync.Mutex
	c.Subscribe(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	ticket, err := c.Submit(context.Background(), "B")
	require.NoError(t, err)
	waitTicket(t, ticket)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.Equal(t, PhaseLoading, states[0].Phase)
	assert.Equal(t, PhaseOptimized, states[1].Phase)
}

func TestNetworkFailureLeavesControllerUsable(t *testing.T) {
	opt := optimizer.NewMockOptimizer(map[string]optimizer.MockReply{
		"down": {Err: errors.Join(errors.New("dial tcp"), syscall.ECONNREFUSED)},
		"B":    {Body: routeB},
	})
	c := New(opt)

	ticket, err := c.Submit(context.Background(), "down")
	require.NoError(t, err)
	require.True(t, waitTicket(t, ticket))

	s := c.State()
	assert.Equal(t, PhaseFailed, s.Phase)
	failed := s.Result.(domain.Failed)
	assert.Equal(t, domain.CauseNetwork, failed.Cause)

	ticket, err = c.Submit(context.Background(), "B")
	require.NoError(t, err)
	require.True(t, waitTicket(t, ticket))
	assert.Equal(t, PhaseOptimized, c.State().Phase)
}

func TestPhasesForEveryVariant(t *testing.T) {
	opt := optimizer.NewMockOptimizer(map[string]optimizer.MockReply{
		"gone":  {Body: `{"message": "Route gone removed", "removed_stops": []}`},
		"empty": {Body: `{"optimized_order": []}`},
		"err":   {Body: `{"error": "bus not found"}`},
	})
	c := New(opt)

	for route, want := range map[string]Phase{
		"gone":  PhaseRemoved,
		"empty": PhaseEmpty,
		"err":   PhaseFailed,
	} {
		ticket, err := c.Submit(context.Background(), route)
		require.NoError(t, err)
		waitTicket(t, ticket)
		assert.Equal(t, want, c.State().Phase, route)
	}
}

func TestSupersededCallIsCancelled(t *testing.T) {
	seen := make(chan error, 1)
	blocking := optimizerFunc(func(ctx context.Context, routeNo string) (ports.RawResponse, error) {
		if routeNo == "slow" {
			<-ctx.Done()
			seen <- ctx.Err()
			return ports.RawResponse{}, ctx.Err()
		}
		return ports.RawResponse{StatusCode: 200, Body: []byte(routeB)}, nil
	})
	c := New(blocking)

	slow, err := c.Submit(context.Background(), "slow")
	require.NoError(t, err)
	fast, err := c.Submit(context.Background(), "fast")
	require.NoError(t, err)

	assert.True(t, waitTicket(t, fast))
	assert.False(t, waitTicket(t, slow))
	assert.ErrorIs(t, <-seen, context.Canceled)
	assert.Equal(t, PhaseOptimized, c.State().Phase)
}

func TestSubmitOutlivesCallerContext(t *testing.T) {
	opt := newGatedOptimizer()
	c := New(opt)

	ctx, cancel := context.WithCancel(context.Background())
	ticket, err := c.Submit(ctx, "A")
	require.NoError(t, err)
	<-opt.started
	cancel()

	opt.release("A", routeA)
	assert.True(t, waitTicket(t, ticket))
	assert.Equal(t, PhaseOptimized, c.State().Phase)
}

func TestUnsubscribe(t *testing.T) {
	c := New(optimizer.NewMockOptimizer(nil))

	var calls int
	unsubscribe := c.Subscribe(func(State) { calls++ })
	unsubscribe()

	ticket, err := c.Submit(context.Background(), "1")
	require.NoError(t, err)
	waitTicket(t, ticket)
	assert.Zero(t, calls)
}

func TestWithClockStampsStates(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := New(optimizer.NewMockOptimizer(nil), WithClock(func() time.Time { return fixed }))

	ticket, err := c.Submit(context.Background(), "1")
	require.NoError(t, err)
	waitTicket(t, ticket)
	assert.Equal(t, fixed, c.State().UpdatedAt)
}

type optimizerFunc func(ctx context.Context, routeNo string) (ports.RawResponse, error)

func (f optimizerFunc) Optimize(ctx context.Context, routeNo string) (ports.RawResponse, error) {
	return f(ctx, routeNo)
}
