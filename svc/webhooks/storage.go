package webhooks

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals a missing webhook or an ownership mismatch. Callers
// surface both identically so probing for other users' webhook ids reveals
// nothing.
var ErrNotFound = errors.New("webhook not found")

// Storage persists webhook subscriptions in the document store.
type Storage interface {
	Create(ctx context.Context, w *Webhook) error

	// GetByID returns a webhook by id regardless of owner, or ErrNotFound.
	// Ownership scoping is the service's job.
	GetByID(ctx context.Context, id string) (*Webhook, error)

	// ListByUser returns all webhooks owned by the user.
	ListByUser(ctx context.Context, userID string) ([]*Webhook, error)

	// ListActive returns the user's active webhooks subscribed to the event.
	ListActive(ctx context.Context, userID string, event Event) ([]*Webhook, error)

	// Update replaces the stored webhook.
	Update(ctx context.Context, w *Webhook) error

	// Delete removes a webhook only when the owner matches. Returns false
	// when nothing was deleted.
	Delete(ctx context.Context, id, userID string) (bool, error)

	// RecordSuccess resets the failure counter and records delivery
	// bookkeeping after a 2xx response.
	RecordSuccess(ctx context.Context, id string, status int, at time.Time) error

	// RecordFailure atomically increments the failure counter, records
	// bookkeeping, and deactivates the webhook once the counter reaches
	// disableAt. Returns the counter value after the increment.
	RecordFailure(ctx context.Context, id string, status int, at time.Time, disableAt int) (int, error)
}
