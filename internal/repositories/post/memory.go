package post

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
)

// Memory is the development/test store. It mirrors the pgx implementation's
// semantics, including the write-once-false active flag.
type Memory struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func NewMemory() *Memory {
	return &Memory{posts: make(map[string]domain.Post)}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Upsert(_ context.Context, post domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.posts[post.ID]; ok {
		existing.Author = post.Author
		existing.Text = post.Text
		existing.URL = post.URL
		m.posts[post.ID] = existing
		return nil
	}

	post.Active = true
	m.posts[post.ID] = post
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (m *Memory) ListActiveSince(_ context.Context, cutoff time.Time) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var posts []*domain.Post
	for _, post := range m.posts {
		if post.Active && !post.FirstSeenAt.Before(cutoff) {
			p := post
			posts = append(posts, &p)
		}
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].FirstSeenAt.After(posts[j].FirstSeenAt)
	})

	return posts, nil
}

func (m *Memory) Deactivate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if post, ok := m.posts[id]; ok {
		post.Active = false
		m.posts[id] = post
	}
	return nil
}

func (m *Memory) DeactivateOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, post := range m.posts {
		if post.Active && post.FirstSeenAt.Before(cutoff) {
			post.Active = false
			m.posts[id] = post
			n++
		}
	}
	return n, nil
}
