package core

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/swiftshare/securecore/pkg/logger"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// HandlerFunc is an HTTP handler that returns a Response instead of writing
// to the ResponseWriter directly.
type HandlerFunc func(r *http.Request) Response

// Handler adapts a HandlerFunc to http.HandlerFunc. Render failures are
// logged; by that point headers are usually written, so nothing more can be
// sent to the client.
func Handler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		if resp == nil {
			resp = NoContent()
		}
		if err := resp.Render(w, r); err != nil {
			slog.Default().ErrorContext(r.Context(), "failed to render response", logger.Error(err))
		}
	}
}

// DecodeJSON reads a JSON request body into dst. It returns ErrBadRequest
// on malformed input so handlers can pass the error straight to JSONError.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return ErrBadRequest
	}
	return nil
}
