package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftshare/securecore/pkg/ratelimit"
)

func TestNewFixedWindow_Validation(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()

	_, err := ratelimit.NewFixedWindow(nil, 5, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	_, err = ratelimit.NewFixedWindow(store, 0, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

	_, err = ratelimit.NewFixedWindow(store, 5, 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
}

func TestFixedWindow_Allow(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 3, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	for i := range 3 {
		ok, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "attempt over limit should be denied")

	// Other keys are unaffected
	ok, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = limiter.Allow(ctx, "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}

func TestFixedWindow_Reset(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 1, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, limiter.Reset(ctx, "user-1"))

	ok, err = limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_WindowExpiry(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	count, err := store.IncrementAndGet(ctx, "key", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.IncrementAndGet(ctx, "key", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	time.Sleep(30 * time.Millisecond)

	count, err = store.IncrementAndGet(ctx, "key", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "expired window should restart the counter")
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			_, _ = store.IncrementAndGet(ctx, "shared", time.Minute)
		}()
	}
	wg.Wait()

	count, err := store.IncrementAndGet(ctx, "shared", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines+1), count)
}
