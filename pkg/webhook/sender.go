package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds each delivery attempt so a dead endpoint cannot
	// stall the dispatching process indefinitely.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies deliveries to subscriber endpoints.
	DefaultUserAgent = "SwiftShare-Webhooks/1.0"

	// StatusTransportError is the sentinel status recorded when a delivery
	// fails before an HTTP status is available (timeout, refused
	// connection, DNS failure).
	StatusTransportError = 0
)

// Result describes the outcome of a single delivery attempt. Failures are
// captured here rather than returned as errors: the dispatcher records them
// into the webhook's own bookkeeping fields and never propagates them to
// the event-triggering flow.
type Result struct {
	StatusCode int
	Success    bool
	Duration   time.Duration
	Err        error
}

// Sender performs signed, single-attempt webhook deliveries. The failure
// model is a counter threshold maintained by the caller; there are no
// retries or backoff here. Zero value is not usable; use NewSender.
type Sender struct {
	// client is reused across requests for connection pooling
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithHTTPClient sets a custom HTTP client, mainly for testing or custom
// transports.
func WithHTTPClient(client *http.Client) SenderOption {
	return func(s *Sender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout overrides the per-delivery timeout.
func WithTimeout(d time.Duration) SenderOption {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) SenderOption {
	return func(s *Sender) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// NewSender creates a webhook sender with pooled connections.
func NewSender(opts ...SenderOption) *Sender {
	s := &Sender{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver signs the payload with the given secret and POSTs it to the URL.
// Exactly one attempt is made. A 2xx response is a success; anything else,
// including transport-level failures, is a failure recorded in the Result.
func (s *Sender) Deliver(ctx context.Context, url, secret string, payload Payload) Result {
	start := time.Now()

	body, err := payload.Marshal()
	if err != nil {
		return Result{StatusCode: StatusTransportError, Duration: time.Since(start), Err: err}
	}

	sig, err := Sign(secret, body)
	if err != nil {
		return Result{StatusCode: StatusTransportError, Duration: time.Since(start), Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{StatusCode: StatusTransportError, Duration: time.Since(start), Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("X-Webhook-Signature", sig.Header())
	req.Header.Set("X-Webhook-Event", payload.Event)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{StatusCode: StatusTransportError, Duration: time.Since(start), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain a bounded amount so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return Result{
		StatusCode: resp.StatusCode,
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		Duration:   time.Since(start),
	}
}
