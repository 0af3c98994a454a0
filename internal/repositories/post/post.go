package post

import (
	"context"
	"errors"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
)

var ErrNotFound = errors.New("post not found")

type Repository interface {
	// Upsert inserts a new post or refreshes author/text/url on an existing
	// one. The active flag is never touched by an upsert.
	Upsert(ctx context.Context, post domain.Post) error

	// GetByID returns a single post by its natural key.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// ListActiveSince returns active posts first seen after the cutoff.
	ListActiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Post, error)

	// Deactivate sets active=false. Calling it on an already-inactive post is
	// a no-op.
	Deactivate(ctx context.Context, id string) error

	// DeactivateOlderThan flips active=false on every active post first seen
	// before the cutoff and returns how many rows changed.
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
