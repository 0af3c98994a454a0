package alert

import (
	"context"

	"github.com/openclaw/dramawatch/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, event domain.AlertEvent) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AlertEvent, error)
}
