package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrStart    = errors.New("http server failed")
	ErrShutdown = errors.New("http server shutdown failed")
)

// Server serves HTTP with the timeouts from Config and drains gracefully
// when the context given to Run is cancelled.
type Server struct {
	srv     *http.Server
	drain   time.Duration
	log     *slog.Logger
	onStart []func(*slog.Logger)
}

// Option adjusts a Server beyond what Config carries.
type Option func(*Server)

// WithLogger sets the logger used for lifecycle messages and passed to
// start hooks. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStartHook registers a callback invoked right before the listener
// opens.
func WithStartHook(h func(*slog.Logger)) Option {
	return func(s *Server) {
		if h != nil {
			s.onStart = append(s.onStart, h)
		}
	}
}

// New builds a Server from cfg. Zero-value Addr and ShutdownTimeout fall
// back to the same defaults the Config env tags declare, so a hand-built
// Config behaves like a loaded one.
func New(cfg Config, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		drain: cfg.ShutdownTimeout,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves handler until ctx is cancelled or the listener fails. On
// cancellation, in-flight requests get ShutdownTimeout to finish. Listener
// failures wrap ErrStart, drain failures wrap ErrShutdown.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	s.srv.Handler = handler

	for _, h := range s.onStart {
		h(s.log)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()
		if err := s.srv.Shutdown(drainCtx); err != nil {
			return errors.Join(ErrShutdown, err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrStart, err)
		}
		s.log.Info("http server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(ErrStart, err)
		}
		return nil
	}
}
