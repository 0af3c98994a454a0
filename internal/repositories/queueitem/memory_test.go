package queueitem

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(postID string, status domain.QueueStatus) domain.QueueItem {
	return domain.QueueItem{
		ID:        uuid.NewString(),
		PostID:    postID,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

func TestInsertEnforcesActiveUniqueness(t *testing.T) {
	repo := NewMemory(post.NewMemory())
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newItem("p1", domain.QueueStatusPending)))
	assert.ErrorIs(t, repo.Insert(ctx, newItem("p1", domain.QueueStatusPending)), ErrActiveExists)

	// A dismissed item does not block a new detection.
	require.NoError(t, repo.Insert(ctx, newItem("p2", domain.QueueStatusDismissed)))
	require.NoError(t, repo.Insert(ctx, newItem("p2", domain.QueueStatusPending)))
}

func TestConcurrentInsertsYieldOneActiveItem(t *testing.T) {
	repo := NewMemory(post.NewMemory())
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var inserted, rejected int

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, newItem("p1", domain.QueueStatusPending))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				inserted++
			} else if assert.ErrorIs(t, err, ErrActiveExists) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	assert.Equal(t, 19, rejected)

	item, err := repo.FindActiveByPostID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusPending, item.Status)
}

func TestTransitionGuardsCurrentStatus(t *testing.T) {
	repo := NewMemory(post.NewMemory())
	ctx := context.Background()

	item := newItem("p1", domain.QueueStatusPending)
	require.NoError(t, repo.Insert(ctx, item))

	err := repo.Transition(ctx, item.ID, domain.QueueStatusDismissed, time.Now(), domain.QueueStatusPushed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, repo.Transition(ctx, item.ID, domain.QueueStatusPushed, time.Now(), domain.QueueStatusPending))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusPushed, got.Status)
	assert.NotNil(t, got.PushedAt)
}

func TestPushAllPendingStampsEveryRow(t *testing.T) {
	repo := NewMemory(post.NewMemory())
	ctx := context.Background()

	a := newItem("p1", domain.QueueStatusPending)
	b := newItem("p2", domain.QueueStatusPending)
	c := newItem("p3", domain.QueueStatusDismissed)
	for _, item := range []domain.QueueItem{a, b, c} {
		require.NoError(t, repo.Insert(ctx, item))
	}

	at := time.Now()
	n, err := repo.PushAllPending(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, id := range []string{a.ID, b.ID} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.QueueStatusPushed, got.Status)
		require.NotNil(t, got.PushedAt)
		assert.True(t, got.PushedAt.Equal(at))
	}

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusDismissed, got.Status)
}

func TestPushAllPendingIsAtomicToReaders(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		repo := NewMemory(post.NewMemory())
		require.NoError(t, repo.Insert(ctx, newItem("p1", domain.QueueStatusPending)))
		require.NoError(t, repo.Insert(ctx, newItem("p2", domain.QueueStatusPending)))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = repo.PushAllPending(ctx, time.Now())
		}()

		// A concurrent listing must see both items still pending or neither,
		// never a half-transitioned queue.
		for {
			entries, err := repo.ListByStatus(ctx, domain.QueueStatusPending)
			require.NoError(t, err)
			if n := len(entries); n != 0 && n != 2 {
				t.Fatalf("observed %d pending items mid-transition", n)
			}
			if len(entries) == 0 {
				break
			}
		}
		<-done
	}
}
