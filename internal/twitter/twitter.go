package twitter

import (
	"context"
	"errors"

	"github.com/openclaw/dramawatch/internal/domain"
)

var ErrPostUnavailable = errors.New("post is unavailable")

type Client interface {
	// FetchListTimeline returns up to count recent posts from a tracked list.
	FetchListTimeline(ctx context.Context, listID string, count int) ([]domain.TimelinePost, error)

	// FetchPostMetrics returns current engagement counters for one post.
	FetchPostMetrics(ctx context.Context, postID string) (domain.EngagementCounts, error)
}
