package queueitem

import (
	"context"
	"errors"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
)

var (
	ErrNotFound = errors.New("queue item not found")

	// ErrActiveExists maps the store-level uniqueness guard on
	// (tweet_id, status in {pending,pushed}); callers treat it as the dedup
	// no-op path, not a failure.
	ErrActiveExists = errors.New("active queue item already exists for post")

	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	// Insert stores a new item. Returns ErrActiveExists when an item with
	// status pending or pushed already exists for the same post.
	Insert(ctx context.Context, item domain.QueueItem) error

	GetByID(ctx context.Context, id string) (*domain.QueueItem, error)

	// FindActiveByPostID returns the pending or pushed item for a post, or
	// ErrNotFound.
	FindActiveByPostID(ctx context.Context, postID string) (*domain.QueueItem, error)

	// ListByStatus returns items with the given status joined with their post
	// summary, newest first.
	ListByStatus(ctx context.Context, status domain.QueueStatus) ([]*domain.QueueEntry, error)

	// Transition moves an item to the target status, stamping pushed_at or
	// dismissed_at with at. The move only applies while the item's current
	// status is one of from; otherwise ErrInvalidTransition is returned.
	Transition(ctx context.Context, id string, to domain.QueueStatus, at time.Time, from ...domain.QueueStatus) error

	// PushAllPending transitions every pending item to pushed in a single
	// transaction and returns how many items moved.
	PushAllPending(ctx context.Context, at time.Time) (int64, error)

	// DeleteAllPending removes every pending item and returns the count.
	DeleteAllPending(ctx context.Context) (int64, error)

	// Delete removes an item from any status.
	Delete(ctx context.Context, id string) error
}
