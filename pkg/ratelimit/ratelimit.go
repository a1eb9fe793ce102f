package ratelimit

import (
	"context"
	"time"
)

// Limiter answers whether one more attempt is allowed for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Store is the counter backend for the fixed-window limiter.
type Store interface {
	// IncrementAndGet atomically increments the counter for the key,
	// starting a new window with the given TTL when the key is fresh,
	// and returns the counter value after the increment.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, error)

	// Reset removes the counter for the key.
	Reset(ctx context.Context, key string) error
}

// FixedWindow is a fixed-window rate limiter: up to limit attempts per
// window, counters expire when the window does. Coarser than a sliding
// window but a single atomic increment per check makes it cheap on shared
// backends.
type FixedWindow struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewFixedWindow creates a fixed-window limiter.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &FixedWindow{store: store, limit: int64(limit), window: window}, nil
}

// Allow consumes one attempt for the key and reports whether it was within
// the limit.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}

	count, err := fw.store.IncrementAndGet(ctx, key, fw.window)
	if err != nil {
		return false, err
	}
	return count <= fw.limit, nil
}

// Reset clears the counter for the key, reopening the window.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	return fw.store.Reset(ctx, key)
}
