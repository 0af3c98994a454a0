// Package recorder re-samples engagement counters for every still-active post
// on its own interval, appends metrics samples and retires posts that outlive
// the tracking window.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
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
	"github.com/panjf2000/ants/v2"
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

type Recorder struct {
	Twitter     twitter.Client
	PostRepo    post.Repository
	MetricsRepo metrics.Repository
	Queue       queue.Client
	Viral       viral.Config
	Logger      logger.Logger
	Config      *config.Config
}

func New(opts Opts) *Recorder {
	return &Recorder{
		Twitter:     opts.Twitter,
		PostRepo:    opts.PostRepo,
		MetricsRepo: opts.MetricsRepo,
		Queue:       opts.Queue,
		Viral:       opts.Viral,
		Logger:      opts.Logger.WithComponent("Recorder"),
		Config:      opts.Config,
	}
}

// Schedule starts the metrics sampling loop on its own interval, independent
// of the collector's.
func (r *Recorder) Schedule(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create recorder scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.Config.Monitor.MetricsInterval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				r.Logger.Info("Context cancelled, stopping metrics recording")
				return
			}

			tickCtx, cancel := context.WithTimeout(ctx, r.Config.Monitor.MetricsInterval)
			defer cancel()

			if err := r.RunOnce(tickCtx); err != nil {
				r.Logger.Error("Metrics recording tick failed", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule metrics recording: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		r.Logger.Info("Stopping metrics recorder scheduler")
		if err := scheduler.Shutdown(); err != nil {
			r.Logger.Error("Failed to shut down recorder scheduler", "error", err)
		}
	}()

	return nil
}

// RunOnce performs a single sampling pass over all tracked posts. Per-post
// failures are logged and skipped; they never abort the batch.
func (r *Recorder) RunOnce(ctx context.Context) error {
	maxAge := r.Config.Monitor.MaxTrackingAge
	cutoff := time.Now().Add(-maxAge)

	// Posts that slipped past the tracking window without a final pass are
	// retired here; deactivation is write-once, re-running it is a no-op.
	if n, err := r.PostRepo.DeactivateOlderThan(ctx, cutoff); err != nil {
		r.Logger.Error("Failed to deactivate expired posts", "error", err)
	} else if n > 0 {
		r.Logger.Info("Deactivated expired posts", "count", n)
	}

	posts, err := r.PostRepo.ListActiveSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list active posts: %w", err)
	}

	if len(posts) == 0 {
		r.Logger.Info("No active posts to track")
		return nil
	}

	r.Logger.Info("Tracking active posts", "count", len(posts))
	r.runJobsWithAnts(ctx, posts)
	r.Logger.Info("Metrics tracking completed", "count", len(posts))
	return nil
}

func (r *Recorder) runJobsWithAnts(ctx context.Context, posts []*domain.Post) {
	var wg sync.WaitGroup
	pool, _ := ants.NewPool(r.Config.Monitor.Workers, ants.WithPreAlloc(true))
	defer pool.Release()

	for _, p := range posts {
		wg.Add(1)
		postToSample := p

		err := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				r.Logger.Info("Skipping sample due to context cancellation", "post_id", postToSample.ID)
				return
			default:
				if err := r.samplePost(ctx, postToSample); err != nil {
					r.Logger.Error("Failed to sample post", "post_id", postToSample.ID, "error", err)
				}
			}
		})
		if err != nil {
			wg.Done()
			r.Logger.Error("Failed to submit job to ants pool", "post_id", postToSample.ID, "error", err)
		}
	}

	wg.Wait()
}

func (r *Recorder) samplePost(ctx context.Context, p *domain.Post) error {
	lookupCtx, cancel := context.WithTimeout(ctx, r.Config.Twitter.RequestTimeout)
	defer cancel()

	counts, err := r.Twitter.FetchPostMetrics(lookupCtx, p.ID)
	if err != nil {
		if errors.Is(err, twitter.ErrPostUnavailable) {
			r.Logger.Warn("Post no longer available, skipping", "post_id", p.ID)
			return nil
		}
		return fmt.Errorf("failed to fetch post metrics: %w", err)
	}

	reach := r.Viral.EstimateReach(counts)

	if err := r.MetricsRepo.Append(ctx, domain.MetricsSample{
		PostID:         p.ID,
		CapturedAt:     time.Now(),
		Likes:          counts.Likes,
		Retweets:       counts.Retweets,
		Replies:        counts.Replies,
		EstimatedReach: reach,
	}); err != nil {
		return fmt.Errorf("failed to append sample: %w", err)
	}

	samples, err := r.MetricsRepo.GetLatest(ctx, p.ID, 2)
	if err != nil {
		return fmt.Errorf("failed to load samples: %w", err)
	}

	velocity := viral.Velocity(samples)
	previousReach := 0
	if len(samples) >= 2 {
		previousReach = samples[1].EstimatedReach
	}

	verdict := r.Viral.Classify(reach, previousReach, velocity)
	if verdict.Viral {
		if _, _, err := r.Queue.Detect(ctx, *p, counts, reach, verdict); err != nil {
			r.Logger.Error("Failed to queue detection", "post_id", p.ID, "error", err)
		}
	}

	// The post got its final sample for this window; retire it once its age
	// crosses the tracking limit.
	if time.Since(p.FirstSeenAt) > r.Config.Monitor.MaxTrackingAge {
		if err := r.PostRepo.Deactivate(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to deactivate post: %w", err)
		}
		r.Logger.Info("Deactivated post past tracking window", "post_id", p.ID)
	}

	return nil
}
