package security

import (
	"context"
	"net/http"

	"github.com/swiftshare/securecore/core"
)

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a context carrying the authenticated user id. The
// platform's auth middleware calls this after validating the session.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RequireUser rejects requests without an authenticated user in context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			_ = core.JSONError(core.ErrUnauthorized).Render(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
