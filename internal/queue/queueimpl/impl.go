package queueimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openclaw/dramawatch/internal/alerter"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/queue"
	"github.com/openclaw/dramawatch/internal/repositories/alert"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/openclaw/dramawatch/internal/repositories/queueitem"
	"github.com/openclaw/dramawatch/internal/viral"
	"github.com/openclaw/dramawatch/pkg/formatter"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

const alertDescriptionLimit = 200

type Opts struct {
	fx.In

	ItemRepo  queueitem.Repository
	PostRepo  post.Repository
	AlertRepo alert.Repository
	Sink      alerter.Client
	Logger    logger.Logger
}

type ManagerImpl struct {
	ItemRepo  queueitem.Repository
	PostRepo  post.Repository
	AlertRepo alert.Repository
	Sink      alerter.Client
	Logger    logger.Logger
}

func New(opts Opts) *ManagerImpl {
	return &ManagerImpl{
		ItemRepo:  opts.ItemRepo,
		PostRepo:  opts.PostRepo,
		AlertRepo: opts.AlertRepo,
		Sink:      opts.Sink,
		Logger:    opts.Logger.WithComponent("QueueManager"),
	}
}

var _ queue.Client = (*ManagerImpl)(nil)

func (m *ManagerImpl) Detect(ctx context.Context, p domain.Post, counts domain.EngagementCounts, reach int, verdict viral.Verdict) (string, bool, error) {
	id, created, err := m.enqueue(ctx, p, reach, verdict.Velocity)
	if err != nil || !created {
		return id, created, err
	}

	m.Logger.Info("Viral detection queued",
		"post_id", p.ID,
		"author", p.Author,
		"reach", formatter.FormatNumber(reach),
		"velocity", fmt.Sprintf("%.2f/min", verdict.Velocity),
	)

	if err := m.Sink.PushDetection(ctx, alerter.Detection{
		PostID:         p.ID,
		Author:         p.Author,
		Text:           p.Text,
		URL:            p.URL,
		Timestamp:      p.FirstSeenAt,
		Likes:          counts.Likes,
		Retweets:       counts.Retweets,
		Replies:        counts.Replies,
		EstimatedReach: reach,
		Velocity:       verdict.Velocity,
	}); err != nil {
		// Best-effort delivery: the queue item is the durable record.
		m.Logger.Error("Failed to push detection to sink", "post_id", p.ID, "error", err)
	}

	return id, true, nil
}

func (m *ManagerImpl) Push(ctx context.Context, req queue.PushRequest) (string, bool, error) {
	firstSeen := req.Timestamp
	if firstSeen.IsZero() {
		firstSeen = time.Now()
	}

	if err := m.PostRepo.Upsert(ctx, domain.Post{
		ID:          req.PostID,
		Author:      req.Author,
		Text:        req.Text,
		URL:         req.URL,
		FirstSeenAt: firstSeen,
	}); err != nil {
		return "", false, fmt.Errorf("failed to upsert post: %w", err)
	}

	p := domain.Post{ID: req.PostID, Author: req.Author, Text: req.Text, URL: req.URL, FirstSeenAt: firstSeen}
	return m.enqueue(ctx, p, req.EstimatedReach, req.Velocity)
}

// enqueue implements the dedup-then-insert contract: at most one item with
// status pending or pushed per post. A racing insert landing on the store's
// uniqueness guard is resolved as the no-op path.
func (m *ManagerImpl) enqueue(ctx context.Context, p domain.Post, reach int, velocity float64) (string, bool, error) {
	existing, err := m.ItemRepo.FindActiveByPostID(ctx, p.ID)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, queueitem.ErrNotFound) {
		return "", false, err
	}

	item := domain.QueueItem{
		ID:               uuid.NewString(),
		PostID:           p.ID,
		Velocity:         velocity,
		ReachAtDetection: reach,
		Status:           domain.QueueStatusPending,
		CreatedAt:        time.Now(),
	}

	if err := m.ItemRepo.Insert(ctx, item); err != nil {
		if errors.Is(err, queueitem.ErrActiveExists) {
			winner, findErr := m.ItemRepo.FindActiveByPostID(ctx, p.ID)
			if findErr != nil {
				return "", false, findErr
			}
			return winner.ID, false, nil
		}
		return "", false, err
	}

	if err := m.AlertRepo.Create(ctx, domain.AlertEvent{
		ID:          uuid.NewString(),
		Type:        domain.AlertTypeViralTweet,
		Title:       fmt.Sprintf("Viral tweet from @%s", p.Author),
		Description: formatter.Truncate(p.Text, alertDescriptionLimit),
		Priority:    domain.AlertPriorityHigh,
		CreatedAt:   time.Now(),
	}); err != nil {
		m.Logger.Error("Failed to create detection alert", "post_id", p.ID, "error", err)
	}

	return item.ID, true, nil
}

func (m *ManagerImpl) UpdateStatus(ctx context.Context, id string, status domain.QueueStatus) error {
	// The only status reachable through update_status is pushed, and only
	// from pending; dismissal and deletion have their own operations.
	if status != domain.QueueStatusPushed {
		return queueitem.ErrInvalidTransition
	}
	return m.ItemRepo.Transition(ctx, id, domain.QueueStatusPushed, time.Now(), domain.QueueStatusPending)
}

func (m *ManagerImpl) Dismiss(ctx context.Context, id string) error {
	return m.ItemRepo.Transition(ctx, id, domain.QueueStatusDismissed, time.Now(),
		domain.QueueStatusPending, domain.QueueStatusPushed)
}

func (m *ManagerImpl) Delete(ctx context.Context, id string) error {
	return m.ItemRepo.Delete(ctx, id)
}

func (m *ManagerImpl) PushToLive(ctx context.Context) (int64, error) {
	n, err := m.ItemRepo.PushAllPending(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if err := m.AlertRepo.Create(ctx, domain.AlertEvent{
		ID:          uuid.NewString(),
		Type:        domain.AlertTypeViralBatch,
		Title:       "Viral queue pushed to live",
		Description: fmt.Sprintf("%d pending viral tweets have been pushed live", n),
		Priority:    domain.AlertPriorityMedium,
		CreatedAt:   time.Now(),
	}); err != nil {
		m.Logger.Error("Failed to create batch alert", "error", err)
	}

	m.Logger.Info("Pushed pending queue to live", "count", n)
	return n, nil
}

func (m *ManagerImpl) ClearQueue(ctx context.Context) (int64, error) {
	n, err := m.ItemRepo.DeleteAllPending(ctx)
	if err != nil {
		return 0, err
	}

	m.Logger.Info("Cleared pending queue", "count", n)
	return n, nil
}

func (m *ManagerImpl) List(ctx context.Context, status domain.QueueStatus) ([]*domain.QueueEntry, error) {
	return m.ItemRepo.ListByStatus(ctx, status)
}

func (m *ManagerImpl) ListAlerts(ctx context.Context, limit int) ([]*domain.AlertEvent, error) {
	return m.AlertRepo.ListRecent(ctx, limit)
}
