package twofactor

import (
	"context"
	"errors"
)

// ErrNotFound signals that no two-factor record exists for a user.
var ErrNotFound = errors.New("two-factor config not found")

// Storage persists per-user two-factor configuration in the document store.
type Storage interface {
	// Get returns the config for a user, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Config, error)

	// Save writes the full config for a user, replacing any existing one.
	Save(ctx context.Context, userID string, cfg *Config) error

	// Delete removes the config for a user. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, userID string) error
}
