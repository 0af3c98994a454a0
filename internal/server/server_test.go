package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openclaw/dramawatch/internal/alerter"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/queue"
	"github.com/openclaw/dramawatch/internal/queue/queueimpl"
	alertrepo "github.com/openclaw/dramawatch/internal/repositories/alert"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/openclaw/dramawatch/internal/repositories/queueitem"
	"github.com/openclaw/dramawatch/internal/viral"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type noopSink struct{}

func (noopSink) PushDetection(context.Context, alerter.Detection) error { return nil }

type testEnv struct {
	server  *Server
	manager queue.Client
	posts   *post.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	posts := post.NewMemory()
	items := queueitem.NewMemory(posts)
	alerts := alertrepo.NewMemory()
	log := logger.New(logger.Opts{Env: "test"})

	manager := queueimpl.New(queueimpl.Opts{
		ItemRepo:  items,
		PostRepo:  posts,
		AlertRepo: alerts,
		Sink:      noopSink{},
		Logger:    log,
	})

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.Port = 0

	srv := New(Opts{
		LC:     fxtest.NewLifecycle(t),
		Queue:  manager,
		Logger: log,
		Config: cfg,
	})

	return &testEnv{server: srv, manager: manager, posts: posts}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedDetection(t *testing.T, postID string) string {
	t.Helper()

	ctx := context.Background()
	p := domain.Post{ID: postID, Author: "author", Text: "text", URL: "https://example.com/" + postID}
	require.NoError(t, e.posts.Upsert(ctx, p))

	id, created, err := e.manager.Detect(ctx, p, domain.EngagementCounts{}, 80000, viral.Verdict{Viral: true})
	require.NoError(t, err)
	require.True(t, created)
	return id
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestListQueueDefaultsToPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedDetection(t, "p1")

	w := env.do(t, http.MethodGet, "/queue", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Queue []queueItemResponse `json:"queue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Queue, 1)
	assert.Equal(t, "p1", resp.Queue[0].TweetID)
	assert.Equal(t, "pending", resp.Queue[0].Status)
	assert.Equal(t, "author", resp.Queue[0].Tweet.Author)
}

func TestListQueueRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/queue?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPushActionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"action":   "push",
		"tweet_id": "p7",
		"author":   "someone",
		"text":     "hello",
		"url":      "https://example.com/p7",
		"metrics":  map[string]int{"likes": 100, "retweets": 50, "impressions": 90000},
		"velocity": 1200.5,
	}

	w := env.do(t, http.MethodPost, "/queue", body)
	require.Equal(t, http.StatusOK, w.Code)

	var first struct {
		QueueID string `json:"queue_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.NotEmpty(t, first.QueueID)

	w = env.do(t, http.MethodPost, "/queue", body)
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		Message string `json:"message"`
		QueueID string `json:"queue_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, "Tweet already in queue", second.Message)
	assert.Equal(t, first.QueueID, second.QueueID)
}

func TestPushRequiresTweetID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/queue", map[string]any{"action": "push"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownActionRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/queue", map[string]any{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMissingActionRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/queue", map[string]any{"tweet_id": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDetection(t, "p1")

	w := env.do(t, http.MethodPost, "/queue", map[string]any{
		"action": "update_status",
		"id":     id,
		"status": "pushed",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/queue?status=pushed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Queue []queueItemResponse `json:"queue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Queue, 1)
	assert.NotNil(t, resp.Queue[0].PushedAt)
}

func TestUpdateStatusOnMissingItemReturns404(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/queue", map[string]any{
		"action": "update_status",
		"id":     "00000000-0000-0000-0000-000000000000",
		"status": "pushed",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDismissedItemCannotBePushed(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDetection(t, "p1")

	w := env.do(t, http.MethodPost, "/queue", map[string]any{"action": "dismiss", "id": id})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/queue", map[string]any{
		"action": "update_status",
		"id":     id,
		"status": "pushed",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPushToLiveAndClearQueue(t *testing.T) {
	env := newTestEnv(t)
	env.seedDetection(t, "p1")
	env.seedDetection(t, "p2")

	w := env.do(t, http.MethodPost, "/queue", map[string]any{"action": "push_to_live"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Count)

	// Queue is empty now; clearing is a no-op, not an error.
	w = env.do(t, http.MethodPost, "/queue", map[string]any{"action": "clear_queue"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
}

func TestDeleteFromAnyStatus(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedDetection(t, "p1")

	w := env.do(t, http.MethodPost, "/queue", map[string]any{"action": "dismiss", "id": id})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/queue", map[string]any{"action": "delete", "id": id})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/queue", map[string]any{"action": "delete", "id": id})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAlerts(t *testing.T) {
	env := newTestEnv(t)
	env.seedDetection(t, "p1")

	w := env.do(t, http.MethodGet, "/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Alerts []alertResponse `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "viral_tweet", resp.Alerts[0].Type)
}
