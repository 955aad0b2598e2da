package repositories

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"bus-route-viewer/internal/ports"
)

// In-memory HistoryRepository used when no database is configured.
// It keeps at most Capacity entries, dropping the oldest.
type MemoryHistoryRepository struct {
	mu       sync.Mutex
	entries  []ports.HistoryEntry
	nextID   int64
	capacity int
	now      func() time.Time
}

func NewMemoryHistoryRepository(capacity int) *MemoryHistoryRepository {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryHistoryRepository{capacity: capacity, now: time.Now}
}

func (m *MemoryHistoryRepository) Record(ctx context.Context, e ports.HistoryEntry) error {
	if strings.TrimSpace(e.RouteNo) == "" {
		return errors.New("record history: route_no must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = m.nextID
	if e.RecordedAt.IsZero() {
		e.RecordedAt = m.now()
	}

	m.entries = append(m.entries, e)
	if len(m.entries) > m.capacity {
		m.entries = append([]ports.HistoryEntry(nil), m.entries[len(m.entries)-m.capacity:]...)
	}
	return nil
}

func (m *MemoryHistoryRepository) Recent(ctx context.Context, limit int) ([]ports.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		return []ports.HistoryEntry{}, nil
	}

	n := min(limit, len(m.entries))
	out := make([]ports.HistoryEntry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
