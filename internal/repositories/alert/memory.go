package alert

import (
	"context"
	"sort"
	"sync"

	"github.com/openclaw/dramawatch/internal/domain"
)

type Memory struct {
	mu     sync.Mutex
	events []domain.AlertEvent
}

func NewMemory() *Memory {
	return &Memory{}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Create(_ context.Context, event domain.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

func (m *Memory) ListRecent(_ context.Context, limit int) ([]*domain.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := make([]domain.AlertEvent, len(m.events))
	copy(sorted, m.events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if limit < len(sorted) {
		sorted = sorted[:limit]
	}

	events := make([]*domain.AlertEvent, 0, len(sorted))
	for i := range sorted {
		e := sorted[i]
		events = append(events, &e)
	}
	return events, nil
}
