package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "evt-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "second mark is a duplicate")

	t.Run("expired ids can be marked again", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "evt-short", time.Millisecond)
		require.NoError(t, err)
		require.True(t, isNew)
		time.Sleep(5 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "evt-short", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	done, err := store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, done)

	_, _ = store.MarkProcessed(ctx, "evt-1", time.Hour)
	done, err = store.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, done)

	_, _ = store.MarkProcessed(ctx, "evt-2", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	done, err = store.IsProcessed(ctx, "evt-2")
	require.NoError(t, err)
	assert.False(t, done, "expired ids count as unprocessed")
}

func TestInMemoryIdempotencyStore_Sweeper(t *testing.T) {
	store := newInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short-1", time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "short-2", time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)

	assert.Eventually(t, func() bool { return store.Size() == 1 }, time.Second, 5*time.Millisecond)

	done, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var fresh int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if isNew, err := store.MarkProcessed(context.Background(), "same", time.Hour); err == nil && isNew {
				atomic.AddInt32(&fresh, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fresh)
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
