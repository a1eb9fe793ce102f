package security

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftshare/securecore/core"
	"github.com/swiftshare/securecore/pkg/ssrf"
	"github.com/swiftshare/securecore/svc/webhooks"
)

// WebhooksHandler exposes webhook subscription management over JSON.
type WebhooksHandler struct {
	svc *webhooks.Service
}

// NewWebhooksHandler creates a handler backed by the webhook service.
func NewWebhooksHandler(svc *webhooks.Service) *WebhooksHandler {
	return &WebhooksHandler{svc: svc}
}

// Handle returns the routes for mounting under the security module.
func (h *WebhooksHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", core.Handler(h.list))
	r.Post("/", core.Handler(h.create))
	r.Get("/events", core.Handler(h.events))
	r.Route("/{webhookID}", func(r chi.Router) {
		r.Get("/", core.Handler(h.get))
		r.Patch("/", core.Handler(h.update))
		r.Delete("/", core.Handler(h.delete))
		r.Post("/secret", core.Handler(h.regenerateSecret))
	})
	return r
}

func (h *WebhooksHandler) list(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	hooks, err := h.svc.List(r.Context(), userID)
	if err != nil {
		return core.JSONError(err)
	}
	if hooks == nil {
		hooks = []*webhooks.Webhook{}
	}
	return core.JSON(hooks)
}

func (h *WebhooksHandler) events(_ *http.Request) core.Response {
	return core.JSON(webhooks.Catalog())
}

func (h *WebhooksHandler) create(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Name   string           `json:"name"`
		URL    string           `json:"url"`
		Events []webhooks.Event `json:"events"`
	}
	if err := core.DecodeJSON(r, &req); err != nil {
		return core.JSONError(err)
	}

	res, err := h.svc.Create(r.Context(), userID, webhooks.CreateParams{
		Name:   req.Name,
		URL:    req.URL,
		Events: req.Events,
	})
	if err != nil {
		return webhookError(err)
	}

	// The plaintext secret is included in this response only; every later
	// read returns the masked form.
	return core.JSONStatus(http.StatusCreated, map[string]any{
		"webhook": res.Webhook,
		"secret":  res.Secret,
	})
}

func (h *WebhooksHandler) get(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	w, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "webhookID"))
	if err != nil {
		return webhookError(err)
	}
	return core.JSON(w)
}

func (h *WebhooksHandler) update(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Name     *string          `json:"name"`
		URL      *string          `json:"url"`
		Events   []webhooks.Event `json:"events"`
		IsActive *bool            `json:"is_active"`
	}
	if err := core.DecodeJSON(r, &req); err != nil {
		return core.JSONError(err)
	}

	w, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "webhookID"), webhooks.UpdateParams{
		Name:     req.Name,
		URL:      req.URL,
		Events:   req.Events,
		IsActive: req.IsActive,
	})
	if err != nil {
		return webhookError(err)
	}
	return core.JSON(w)
}

func (h *WebhooksHandler) delete(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "webhookID")); err != nil {
		return webhookError(err)
	}
	return core.NoContent()
}

func (h *WebhooksHandler) regenerateSecret(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	res, err := h.svc.RegenerateSecret(r.Context(), userID, chi.URLParam(r, "webhookID"))
	if err != nil {
		return webhookError(err)
	}
	return core.JSON(map[string]any{
		"webhook": res.Webhook,
		"secret":  res.Secret,
	})
}

// webhookError maps service errors to HTTP error responses. Validation
// problems surface as field errors so API clients can show them inline.
func webhookError(err error) core.Response {
	verr := core.NewValidationError()
	switch {
	case errors.Is(err, webhooks.ErrNotFound):
		return core.JSONError(core.ErrNotFound)
	case errors.Is(err, webhooks.ErrEmptyName):
		verr.Add("name", "name is required")
	case errors.Is(err, webhooks.ErrNoEvents):
		verr.Add("events", "at least one event is required")
	case errors.Is(err, webhooks.ErrInvalidEvent):
		verr.Add("events", "unknown event")
	case errors.Is(err, ssrf.ErrInvalidURL):
		verr.Add("url", "url is invalid")
	case errors.Is(err, ssrf.ErrBlockedURL):
		verr.Add("url", "url is not reachable from our network")
	default:
		return core.JSONError(err)
	}
	return core.JSONError(verr)
}
