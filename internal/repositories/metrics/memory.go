package metrics

import (
	"context"
	"sort"
	"sync"

	"github.com/openclaw/dramawatch/internal/domain"
)

type Memory struct {
	mu      sync.Mutex
	nextID  int64
	samples map[string][]domain.MetricsSample
}

func NewMemory() *Memory {
	return &Memory{samples: make(map[string][]domain.MetricsSample)}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Append(_ context.Context, sample domain.MetricsSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	sample.ID = m.nextID
	m.samples[sample.PostID] = append(m.samples[sample.PostID], sample)
	return nil
}

func (m *Memory) GetLatest(_ context.Context, postID string, limit int) ([]*domain.MetricsSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.samples[postID]
	sorted := make([]domain.MetricsSample, len(stored))
	copy(sorted, stored)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CapturedAt.After(sorted[j].CapturedAt)
	})

	if limit < len(sorted) {
		sorted = sorted[:limit]
	}

	samples := make([]*domain.MetricsSample, 0, len(sorted))
	for i := range sorted {
		s := sorted[i]
		samples = append(samples, &s)
	}
	return samples, nil
}
