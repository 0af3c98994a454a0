package queueitem

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/repositories/post"
)

// Memory enforces the same active-item uniqueness the partial unique index
// provides in postgres. Listing joins post summaries through the post store.
type Memory struct {
	mu    sync.Mutex
	items map[string]domain.QueueItem
	posts post.Repository
}

func NewMemory(posts post.Repository) *Memory {
	return &Memory{
		items: make(map[string]domain.QueueItem),
		posts: posts,
	}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Insert(_ context.Context, item domain.QueueItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.items {
		if existing.PostID == item.PostID && isActive(existing.Status) {
			return ErrActiveExists
		}
	}

	m.items[item.ID] = item
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (m *Memory) FindActiveByPostID(_ context.Context, postID string) (*domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.items {
		if item.PostID == postID && isActive(item.Status) {
			found := item
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListByStatus(ctx context.Context, status domain.QueueStatus) ([]*domain.QueueEntry, error) {
	m.mu.Lock()
	var matched []domain.QueueItem
	for _, item := range m.items {
		if item.Status == status {
			matched = append(matched, item)
		}
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	entries := make([]*domain.QueueEntry, 0, len(matched))
	for _, item := range matched {
		entry := &domain.QueueEntry{Item: item}
		if p, err := m.posts.GetByID(ctx, item.PostID); err == nil {
			entry.Post = *p
		} else if !errors.Is(err, post.ErrNotFound) {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (m *Memory) Transition(_ context.Context, id string, to domain.QueueStatus, at time.Time, from ...domain.QueueStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}

	allowed := false
	for _, f := range from {
		if item.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTransition
	}

	item.Status = to
	switch to {
	case domain.QueueStatusPushed:
		t := at
		item.PushedAt = &t
	case domain.QueueStatusDismissed:
		t := at
		item.DismissedAt = &t
	}

	m.items[id] = item
	return nil
}

func (m *Memory) PushAllPending(_ context.Context, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, item := range m.items {
		if item.Status == domain.QueueStatusPending {
			t := at
			item.Status = domain.QueueStatusPushed
			item.PushedAt = &t
			m.items[id] = item
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteAllPending(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, item := range m.items {
		if item.Status == domain.QueueStatusPending {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func isActive(s domain.QueueStatus) bool {
	return s == domain.QueueStatusPending || s == domain.QueueStatusPushed
}
