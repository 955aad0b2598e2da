package optimizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bus-route-viewer/internal/ports"
)

// Canned answer for one route number.
type MockReply struct {
	Status int
	Body   string
	Err    error
}

// MockOptimizer answers from a fixed table and counts calls. Unknown routes
// get a 200 with an "error" body, like the optimizer does.
type MockOptimizer struct {
	mu       sync.Mutex
	replies  map[string]MockReply
	calls    []string
	ProbeErr error
}

func NewMockOptimizer(replies map[string]MockReply) *MockOptimizer {
	m := make(map[string]MockReply, len(replies))
	for k, v := range replies {
		m[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return &MockOptimizer{replies: m}
}

func (m *MockOptimizer) Optimize(ctx context.Context, routeNo string) (ports.RawResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, routeNo)
	r, ok := m.replies[strings.ToUpper(strings.TrimSpace(routeNo))]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.RawResponse{}, err
	}
	if !ok {
		body := fmt.Sprintf(`{"error": "No stops found for Route %s"}`, routeNo)
		return ports.RawResponse{StatusCode: 200, Body: []byte(body)}, nil
	}
	if r.Err != nil {
		return ports.RawResponse{}, r.Err
	}

	status := r.Status
	if status == 0 {
		status = 200
	}
	return ports.RawResponse{StatusCode: status, Body: []byte(r.Body)}, nil
}

func (m *MockOptimizer) Probe(ctx context.Context) error {
	return m.ProbeErr
}

// Calls returns the route numbers requested so far, in order.
func (m *MockOptimizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
