package webhooks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/swiftshare/securecore/pkg/async"
	"github.com/swiftshare/securecore/pkg/envelope"
	"github.com/swiftshare/securecore/pkg/logger"
	"github.com/swiftshare/securecore/pkg/ssrf"
	"github.com/swiftshare/securecore/pkg/webhook"
)

// secretBytes is the entropy behind each generated webhook secret.
const secretBytes = 24

// DeliveryObserver is notified after each delivery attempt, mainly for
// metrics and tests. It runs on the delivery goroutine.
type DeliveryObserver func(webhookID string, res webhook.Result)

// Service manages user webhook subscriptions and dispatches signed event
// deliveries to them.
type Service struct {
	storage   Storage
	secrets   *envelope.Service
	guard     *ssrf.Guard
	sender    *webhook.Sender
	log       *slog.Logger
	threshold int
	observer  DeliveryObserver
}

// Option configures the service.
type Option func(*Service)

// WithGuard replaces the SSRF guard, mainly to inject a resolver in tests.
func WithGuard(g *ssrf.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithSender replaces the delivery sender.
func WithSender(sender *webhook.Sender) Option {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDisableThreshold overrides the consecutive-failure count at which a
// webhook is automatically deactivated.
func WithDisableThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithDeliveryObserver registers a callback invoked after every delivery
// attempt.
func WithDeliveryObserver(fn DeliveryObserver) Option {
	return func(s *Service) {
		s.observer = fn
	}
}

// New creates a webhook service.
func New(storage Storage, secrets *envelope.Service, opts ...Option) (*Service, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	if secrets == nil {
		return nil, ErrSecretsRequired
	}

	s := &Service{
		storage:   storage,
		secrets:   secrets,
		guard:     ssrf.New(),
		sender:    webhook.NewSender(),
		log:       slog.Default(),
		threshold: DisableThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateParams are the user-supplied fields for a new webhook.
type CreateParams struct {
	Name   string
	URL    string
	Events []Event
}

// CreateResult carries the stored webhook together with its plaintext
// secret. The secret is available here exactly once; afterwards only the
// masked form is ever returned.
type CreateResult struct {
	Webhook *Webhook
	Secret  string
}

// Create registers a new webhook. The URL is vetted against internal
// targets, the generated secret is envelope-wrapped before storage, and the
// plaintext secret is returned to the caller exactly once.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*CreateResult, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if params.Name == "" {
		return nil, ErrEmptyName
	}
	if len(params.Events) == 0 {
		return nil, ErrNoEvents
	}
	for _, e := range params.Events {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEvent, e)
		}
	}
	if err := s.guard.Validate(ctx, params.URL); err != nil {
		return nil, err
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	wrapped, err := s.secrets.Wrap(secret)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	w := &Webhook{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      params.Name,
		URL:       params.URL,
		Secret:    wrapped,
		Events:    append([]Event(nil), params.Events...),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToStore, err)
	}

	w.SecretMask = MaskSecret(secret)
	s.log.InfoContext(ctx, "webhook created",
		logger.WebhookID(w.ID), logger.UserID(userID), slog.String("url", w.URL))

	return &CreateResult{Webhook: w, Secret: secret}, nil
}

// UpdateParams are the mutable webhook fields. Nil pointers leave the
// corresponding field unchanged.
type UpdateParams struct {
	Name     *string
	URL      *string
	Events   []Event
	IsActive *bool
}

// Update applies partial changes to a webhook the user owns. A changed URL
// is re-vetted against internal targets, and re-activating a disabled
// webhook resets its failure counter.
func (s *Service) Update(ctx context.Context, userID, id string, params UpdateParams) (*Webhook, error) {
	w, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, ErrEmptyName
		}
		w.Name = *params.Name
	}
	if params.URL != nil && *params.URL != w.URL {
		if err := s.guard.Validate(ctx, *params.URL); err != nil {
			return nil, err
		}
		w.URL = *params.URL
	}
	if params.Events != nil {
		if len(params.Events) == 0 {
			return nil, ErrNoEvents
		}
		for _, e := range params.Events {
			if !e.Valid() {
				return nil, fmt.Errorf("%w: %q", ErrInvalidEvent, e)
			}
		}
		w.Events = append([]Event(nil), params.Events...)
	}
	if params.IsActive != nil {
		if *params.IsActive && !w.IsActive {
			// Manual re-enable gives the endpoint a clean slate
			w.FailureCount = 0
		}
		w.IsActive = *params.IsActive
	}
	w.UpdatedAt = time.Now().UTC()

	if err := s.storage.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToStore, err)
	}
	return s.view(ctx, w), nil
}

// RegenerateSecret replaces the webhook's secret and returns the new
// plaintext exactly once. Deliveries signed with the old secret will no
// longer verify.
func (s *Service) RegenerateSecret(ctx context.Context, userID, id string) (*CreateResult, error) {
	w, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	wrapped, err := s.secrets.Wrap(secret)
	if err != nil {
		return nil, err
	}

	w.Secret = wrapped
	w.UpdatedAt = time.Now().UTC()
	if err := s.storage.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToStore, err)
	}

	w.SecretMask = MaskSecret(secret)
	s.log.InfoContext(ctx, "webhook secret regenerated",
		logger.WebhookID(w.ID), logger.UserID(userID))

	return &CreateResult{Webhook: w, Secret: secret}, nil
}

// Get returns a webhook the user owns. A webhook belonging to someone else
// reports ErrNotFound, same as a missing one.
func (s *Service) Get(ctx context.Context, userID, id string) (*Webhook, error) {
	w, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w), nil
}

// List returns all webhooks owned by the user with masked secrets.
func (s *Service) List(ctx context.Context, userID string) ([]*Webhook, error) {
	hooks, err := s.storage.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, w := range hooks {
		s.view(ctx, w)
	}
	return hooks, nil
}

// Delete removes a webhook the user owns.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.storage.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.log.InfoContext(ctx, "webhook deleted", logger.WebhookID(id), logger.UserID(userID))
	return nil
}

// Trigger fans out an event to all of the user's active subscribed
// webhooks. Deliveries run fire-and-forget on their own goroutines so the
// triggering flow never waits on subscriber endpoints. The returned futures
// exist for tests and graceful shutdown.
func (s *Service) Trigger(ctx context.Context, userID string, event Event, data any) ([]*async.Future[webhook.Result], error) {
	if !event.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEvent, event)
	}

	hooks, err := s.storage.ListActive(ctx, userID, event)
	if err != nil {
		return nil, err
	}
	if len(hooks) == 0 {
		return nil, nil
	}

	payload := webhook.NewPayload(string(event), data)

	// Detach from the request context so in-flight deliveries survive the
	// triggering request completing.
	bg := context.WithoutCancel(ctx)

	futures := make([]*async.Future[webhook.Result], 0, len(hooks))
	for _, w := range hooks {
		futures = append(futures, async.Async(bg, w, func(ctx context.Context, w *Webhook) (webhook.Result, error) {
			return s.deliver(ctx, w, payload), nil
		}))
	}
	return futures, nil
}

// deliver performs one delivery attempt and records the outcome. The URL is
// re-vetted right before sending to defend against DNS records that turned
// internal since registration.
func (s *Service) deliver(ctx context.Context, w *Webhook, payload webhook.Payload) webhook.Result {
	var res webhook.Result
	if err := s.guard.Validate(ctx, w.URL); err != nil {
		res = webhook.Result{StatusCode: webhook.StatusTransportError, Err: err}
	} else {
		secret, err := s.secrets.Open(w.Secret)
		if err != nil {
			res = webhook.Result{StatusCode: webhook.StatusTransportError, Err: fmt.Errorf("%w: %w", ErrSecretUnavailable, err)}
		} else {
			res = s.sender.Deliver(ctx, w.URL, secret, payload)
		}
	}

	s.record(ctx, w, payload.Event, res)
	if s.observer != nil {
		s.observer(w.ID, res)
	}
	return res
}

func (s *Service) record(ctx context.Context, w *Webhook, event string, res webhook.Result) {
	now := time.Now().UTC()

	if res.Success {
		if err := s.storage.RecordSuccess(ctx, w.ID, res.StatusCode, now); err != nil {
			s.log.ErrorContext(ctx, "failed to record webhook delivery success",
				logger.WebhookID(w.ID), logger.Error(err))
		}
		s.log.InfoContext(ctx, "webhook delivered",
			logger.WebhookID(w.ID), logger.Event(event),
			logger.Status(res.StatusCode), logger.Duration(res.Duration))
		return
	}

	count, err := s.storage.RecordFailure(ctx, w.ID, res.StatusCode, now, s.threshold)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to record webhook delivery failure",
			logger.WebhookID(w.ID), logger.Error(err))
		return
	}

	s.log.WarnContext(ctx, "webhook delivery failed",
		logger.WebhookID(w.ID), logger.Event(event),
		logger.Status(res.StatusCode), logger.FailureCount(count), logger.Error(res.Err))

	if count >= s.threshold {
		s.log.WarnContext(ctx, "webhook disabled after repeated failures",
			logger.WebhookID(w.ID), logger.FailureCount(count))
	}
}

// getOwned loads a webhook and enforces ownership without leaking whether
// the id exists for another user.
func (s *Service) getOwned(ctx context.Context, userID, id string) (*Webhook, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	w, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrNotFound
	}
	return w, nil
}

// view populates the masked secret for read paths. If the stored secret
// cannot be opened the mask is left empty rather than failing the read.
func (s *Service) view(ctx context.Context, w *Webhook) *Webhook {
	secret, err := s.secrets.Open(w.Secret)
	if err != nil {
		s.log.WarnContext(ctx, "cannot open stored webhook secret for masking",
			logger.WebhookID(w.ID), logger.Error(err))
		return w
	}
	w.SecretMask = MaskSecret(secret)
	return w
}

// generateSecret produces a prefixed random webhook signing secret.
func generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFailedToGenerateSecret, err)
	}
	return SecretPrefix + hex.EncodeToString(buf), nil
}
