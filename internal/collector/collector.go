// Package collector polls the tracked list on a fixed interval, normalizes
// each returned post and seeds the post and metrics stores.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/queue"
	"github.com/openclaw/dramawatch/internal/repositories/metrics"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/openclaw/dramawatch/internal/twitter"
	"github.com/openclaw/dramawatch/internal/viral"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Twitter     twitter.Client
	PostRepo    post.Repository
	MetricsRepo metrics.Repository
	Queue       queue.Client
	Viral       viral.Config
	Logger      logger.Logger
	Config      *config.Config
}

type Collector struct {
	Twitter     twitter.Client
	PostRepo    post.Repository
	MetricsRepo metrics.Repository
	Queue       queue.Client
	Viral       viral.Config
	Logger      logger.Logger
	Config      *config.Config
}

func New(opts Opts) *Collector {
	return &Collector{
		Twitter:     opts.Twitter,
		PostRepo:    opts.PostRepo,
		MetricsRepo: opts.MetricsRepo,
		Queue:       opts.Queue,
		Viral:       opts.Viral,
		Logger:      opts.Logger.WithComponent("Collector"),
		Config:      opts.Config,
	}
}

// Schedule starts the timeline polling loop. Each tick is self-contained: a
// failed fetch skips the tick and the loop continues on the next one.
func (c *Collector) Schedule(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create collector scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(c.Config.Monitor.PollInterval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				c.Logger.Info("Context cancelled, stopping timeline collection")
				return
			}

			tickCtx, cancel := context.WithTimeout(ctx, c.Config.Monitor.PollInterval)
			defer cancel()

			if err := c.RunOnce(tickCtx); err != nil {
				c.Logger.Error("Timeline collection tick failed", "error", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule timeline collection: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		c.Logger.Info("Stopping timeline collector scheduler")
		if err := scheduler.Shutdown(); err != nil {
			c.Logger.Error("Failed to shut down collector scheduler", "error", err)
		}
	}()

	return nil
}

// RunOnce performs a single collection pass.
func (c *Collector) RunOnce(ctx context.Context) error {
	listID := c.Config.Twitter.ListID
	c.Logger.Info("Fetching list timeline", "list_id", listID)

	timeline, err := c.Twitter.FetchListTimeline(ctx, listID, c.Config.Twitter.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch list timeline: %w", err)
	}

	if len(timeline) == 0 {
		c.Logger.Info("No posts returned from list", "list_id", listID)
		return nil
	}

	var stored, skipped int
	for _, tp := range timeline {
		if tp.ID == "" {
			c.Logger.Warn("Skipping malformed timeline post", "author", tp.Author)
			skipped++
			continue
		}

		if err := c.processPost(ctx, tp); err != nil {
			c.Logger.Error("Failed to process timeline post", "post_id", tp.ID, "error", err)
			skipped++
			continue
		}
		stored++
	}

	c.Logger.Info("Timeline collection completed", "total", len(timeline), "stored", stored, "skipped", skipped)
	return nil
}

func (c *Collector) processPost(ctx context.Context, tp domain.TimelinePost) error {
	firstSeen := tp.CreatedAt
	if firstSeen.IsZero() {
		firstSeen = time.Now()
	}

	p := domain.Post{
		ID:          tp.ID,
		Author:      tp.Author,
		Text:        tp.Text,
		URL:         tp.URL,
		FirstSeenAt: firstSeen,
	}

	if err := c.PostRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	counts := domain.EngagementCounts{Likes: tp.Likes, Retweets: tp.Retweets, Replies: tp.Replies}
	reach := c.Viral.EstimateReach(counts)

	// Seed sample, so a freshly discovered post has at least one data point
	// before the recorder picks it up.
	if err := c.MetricsRepo.Append(ctx, domain.MetricsSample{
		PostID:         tp.ID,
		CapturedAt:     time.Now(),
		Likes:          tp.Likes,
		Retweets:       tp.Retweets,
		Replies:        tp.Replies,
		EstimatedReach: reach,
	}); err != nil {
		return fmt.Errorf("failed to append seed sample: %w", err)
	}

	samples, err := c.MetricsRepo.GetLatest(ctx, tp.ID, 2)
	if err != nil {
		return fmt.Errorf("failed to load samples: %w", err)
	}

	velocity := viral.Velocity(samples)
	previousReach := 0
	if len(samples) >= 2 {
		previousReach = samples[1].EstimatedReach
	}

	verdict := c.Viral.Classify(reach, previousReach, velocity)
	if !verdict.Viral {
		return nil
	}

	if _, _, err := c.Queue.Detect(ctx, p, counts, reach, verdict); err != nil {
		return fmt.Errorf("failed to queue detection: %w", err)
	}
	return nil
}
