package security

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is anything that can produce routes for the security module.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount in the security module.
// Each service is optional and is only mounted if provided.
type RouterOptions struct {
	TwoFactor Mountable
	Webhooks  Mountable
}

// Router creates the security module router. All routes require an
// authenticated user in the request context.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/security", security.Router(security.RouterOptions{
//	    TwoFactor: security.NewTwoFactorHandler(twoFactorSvc),
//	    Webhooks:  security.NewWebhooksHandler(webhookSvc),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(RequireUser)

	if opts.TwoFactor != nil {
		r.Mount("/2fa", opts.TwoFactor.Handle())
	}
	if opts.Webhooks != nil {
		r.Mount("/webhooks", opts.Webhooks.Handle())
	}

	return r
}
