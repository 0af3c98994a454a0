package metrics

import (
	"context"

	"github.com/openclaw/dramawatch/internal/domain"
)

type Repository interface {
	// Append stores a new sample. Samples are never updated or deleted by the
	// pipeline.
	Append(ctx context.Context, sample domain.MetricsSample) error

	// GetLatest returns up to limit samples for a post, most recent first.
	GetLatest(ctx context.Context, postID string, limit int) ([]*domain.MetricsSample, error)
}
