package ratelimit

import "errors"

var (
	ErrStoreRequired    = errors.New("store is required")
	ErrClientRequired   = errors.New("redis client is required")
	ErrInvalidLimit     = errors.New("invalid limit")
	ErrInvalidWindow    = errors.New("invalid window")
	ErrKeyRequired      = errors.New("key is required")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
