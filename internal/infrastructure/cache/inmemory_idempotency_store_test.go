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

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		ok, err := store.Claim(ctx, "cart:s1:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Claim(ctx, "cart:s1:a", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired keys can be claimed again", func(t *testing.T) {
		ok, _ := store.Claim(ctx, "cart:s1:b", time.Minute)
		require.True(t, ok)

		now = now.Add(2 * time.Minute)
		ok, err := store.Claim(ctx, "cart:s1:b", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release forgets the key", func(t *testing.T) {
		ok, _ := store.Claim(ctx, "cart:s1:c", time.Hour)
		require.True(t, ok)
		require.NoError(t, store.Release(ctx, "cart:s1:c"))

		ok, _ = store.Claim(ctx, "cart:s1:c", time.Hour)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Purge(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = store.Claim(ctx, "short", time.Second)
	_, _ = store.Claim(ctx, "long", time.Hour)
	require.Equal(t, 2, store.Len())

	now = now.Add(time.Minute)
	store.purge()
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore(0)
	defer store.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Claim(context.Background(), "same", time.Hour); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
