package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/queue"
	"github.com/openclaw/dramawatch/internal/repositories/metrics"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/openclaw/dramawatch/internal/twitter"
	"github.com/openclaw/dramawatch/internal/viral"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTwitter struct {
	timeline []domain.TimelinePost
	err      error
}

func (f *fakeTwitter) FetchListTimeline(context.Context, string, int) ([]domain.TimelinePost, error) {
	return f.timeline, f.err
}

func (f *fakeTwitter) FetchPostMetrics(context.Context, string) (domain.EngagementCounts, error) {
	return domain.EngagementCounts{}, twitter.ErrPostUnavailable
}

type fakeQueue struct {
	queue.Client

	mu         sync.Mutex
	detections []string
}

func (f *fakeQueue) Detect(_ context.Context, p domain.Post, _ domain.EngagementCounts, _ int, _ viral.Verdict) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detections = append(f.detections, p.ID)
	return "q-" + p.ID, true, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Twitter.ListID = "list-1"
	cfg.Twitter.BatchSize = 50
	cfg.Viral.ReachThreshold = 70000
	cfg.Viral.SpikeRatio = 0.5
	cfg.Viral.ReachPerEngagement = 30
	cfg.Viral.ReachBase = 1000
	return cfg
}

func newCollector(tw twitter.Client, q *fakeQueue) (*Collector, *post.Memory, *metrics.Memory) {
	posts := post.NewMemory()
	samples := metrics.NewMemory()
	cfg := testConfig()

	c := New(Opts{
		Twitter:     tw,
		PostRepo:    posts,
		MetricsRepo: samples,
		Queue:       q,
		Viral:       viral.NewConfig(cfg),
		Logger:      logger.New(logger.Opts{Env: "test"}),
		Config:      cfg,
	})
	return c, posts, samples
}

func TestRunOnceStoresPostsAndSeedSamples(t *testing.T) {
	now := time.Now()
	tw := &fakeTwitter{timeline: []domain.TimelinePost{
		{ID: "t1", Author: "alice", Text: "quiet", URL: "https://twitter.com/alice/status/t1", CreatedAt: now, Likes: 10, Retweets: 5},
	}}
	q := &fakeQueue{}
	c, posts, samples := newCollector(tw, q)

	require.NoError(t, c.RunOnce(context.Background()))

	p, err := posts.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Author)
	assert.True(t, p.Active)

	latest, err := samples.GetLatest(context.Background(), "t1", 2)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	// (10+5)*30 + 1000
	assert.Equal(t, 1450, latest[0].EstimatedReach)

	assert.Empty(t, q.detections, "a quiet post must not reach the queue")
}

func TestRunOnceQueuesViralPost(t *testing.T) {
	tw := &fakeTwitter{timeline: []domain.TimelinePost{
		// (2000+500)*30 + 1000 = 76000, above the absolute threshold.
		{ID: "t2", Author: "bob", Text: "loud", Likes: 2000, Retweets: 500},
	}}
	q := &fakeQueue{}
	c, _, _ := newCollector(tw, q)

	require.NoError(t, c.RunOnce(context.Background()))
	assert.Equal(t, []string{"t2"}, q.detections)
}

func TestRunOnceSkipsMalformedPosts(t *testing.T) {
	tw := &fakeTwitter{timeline: []domain.TimelinePost{
		{ID: "", Author: "ghost"},
		{ID: "t3", Author: "carol", Likes: 1},
	}}
	q := &fakeQueue{}
	c, posts, _ := newCollector(tw, q)

	require.NoError(t, c.RunOnce(context.Background()))

	_, err := posts.GetByID(context.Background(), "t3")
	assert.NoError(t, err)
}

func TestRunOnceFetchErrorLeavesStateUntouched(t *testing.T) {
	tw := &fakeTwitter{err: errors.New("upstream down")}
	q := &fakeQueue{}
	c, posts, _ := newCollector(tw, q)

	err := c.RunOnce(context.Background())
	require.Error(t, err)

	active, listErr := posts.ListActiveSince(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, listErr)
	assert.Empty(t, active)
	assert.Empty(t, q.detections)
}

func TestRunOnceEmptyTimelineIsNoop(t *testing.T) {
	tw := &fakeTwitter{}
	q := &fakeQueue{}
	c, _, _ := newCollector(tw, q)

	require.NoError(t, c.RunOnce(context.Background()))
	assert.Empty(t, q.detections)
}

func TestRunOnceZeroCreatedAtDefaultsToNow(t *testing.T) {
	tw := &fakeTwitter{timeline: []domain.TimelinePost{
		{ID: "t4", Author: "dave"},
	}}
	q := &fakeQueue{}
	c, posts, _ := newCollector(tw, q)

	before := time.Now()
	require.NoError(t, c.RunOnce(context.Background()))

	p, err := posts.GetByID(context.Background(), "t4")
	require.NoError(t, err)
	assert.False(t, p.FirstSeenAt.Before(before))
}
