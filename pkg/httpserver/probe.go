package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/swiftshare/securecore/pkg/logger"
)

// Probe builds a handler for liveness and readiness endpoints. With no
// checks it always answers 200 "ok". With checks it runs each one against
// the request context and answers 503 "unavailable" on the first failure,
// logging the cause.
func Probe(log *slog.Logger, checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "dependency check failed", logger.Error(err))
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
