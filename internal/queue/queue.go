package queue

import (
	"context"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/viral"
)

// PushRequest is an externally supplied detection arriving through the API.
type PushRequest struct {
	PostID         string
	Author         string
	Text           string
	URL            string
	Timestamp      time.Time
	Likes          int
	Retweets       int
	Replies        int
	EstimatedReach int
	Velocity       float64
}

// Client is the queue manager surface consumed by the API server and the
// detection loops.
type Client interface {
	// Detect records a pipeline-internal viral verdict for an already stored
	// post. Dedups against the active item for the post; when a new item is
	// created the detection is also pushed to the downstream sink,
	// best-effort. Returns the queue item id and whether a new item was
	// created.
	Detect(ctx context.Context, post domain.Post, counts domain.EngagementCounts, reach int, verdict viral.Verdict) (string, bool, error)

	// Push records an externally supplied detection, upserting the post
	// first. Returns the queue item id and whether a new item was created;
	// a push for a post with an active item is a no-op returning the
	// existing id.
	Push(ctx context.Context, req PushRequest) (string, bool, error)

	// UpdateStatus moves a pending item to pushed.
	UpdateStatus(ctx context.Context, id string, status domain.QueueStatus) error

	// Dismiss retires a pending or pushed item.
	Dismiss(ctx context.Context, id string) error

	// Delete removes an item outright, from any status.
	Delete(ctx context.Context, id string) error

	// PushToLive transitions every pending item to pushed atomically and
	// emits one summary alert. Returns how many items moved.
	PushToLive(ctx context.Context) (int64, error)

	// ClearQueue deletes all pending items. Returns how many were removed.
	ClearQueue(ctx context.Context) (int64, error)

	// List returns queue items with the given status joined with their post
	// summaries, newest first.
	List(ctx context.Context, status domain.QueueStatus) ([]*domain.QueueEntry, error)

	// ListAlerts returns the most recent alert events.
	ListAlerts(ctx context.Context, limit int) ([]*domain.AlertEvent, error)
}
