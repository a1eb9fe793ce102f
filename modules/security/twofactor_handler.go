package security

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftshare/securecore/core"
	"github.com/swiftshare/securecore/pkg/totp"
	"github.com/swiftshare/securecore/svc/twofactor"
)

// TwoFactorHandler exposes the two-factor enrollment and verification flow
// over JSON.
type TwoFactorHandler struct {
	svc *twofactor.Service
}

// NewTwoFactorHandler creates a handler backed by the two-factor service.
func NewTwoFactorHandler(svc *twofactor.Service) *TwoFactorHandler {
	return &TwoFactorHandler{svc: svc}
}

// Handle returns the routes for mounting under the security module.
func (h *TwoFactorHandler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", core.Handler(h.status))
	r.Post("/setup", core.Handler(h.setup))
	r.Post("/enable", core.Handler(h.enable))
	r.Post("/verify", core.Handler(h.verify))
	r.Delete("/", core.Handler(h.disable))
	return r
}

func (h *TwoFactorHandler) status(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	enabled, err := h.svc.Enabled(r.Context(), userID)
	if err != nil {
		return core.JSONError(err)
	}
	return core.JSON(map[string]bool{"enabled": enabled})
}

func (h *TwoFactorHandler) setup(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		AccountName string `json:"account_name"`
	}
	if err := core.DecodeJSON(r, &req); err != nil {
		return core.JSONError(err)
	}

	enrollment, err := h.svc.Setup(r.Context(), userID, req.AccountName)
	if err != nil {
		return core.JSONError(err)
	}
	return core.JSON(enrollment)
}

func (h *TwoFactorHandler) enable(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Secret      string   `json:"secret"`
		BackupCodes []string `json:"backup_codes"`
	}
	if err := core.DecodeJSON(r, &req); err != nil {
		return core.JSONError(err)
	}

	if err := h.svc.Enable(r.Context(), userID, req.Secret, req.BackupCodes); err != nil {
		verr := core.NewValidationError()
		switch {
		case errors.Is(err, twofactor.ErrBackupCodesRequired):
			verr.Add("backup_codes", "backup codes are required")
			return core.JSONError(verr)
		case errors.Is(err, totp.ErrInvalidSecret):
			verr.Add("secret", "secret is not a valid base32 key")
			return core.JSONError(verr)
		}
		return core.JSONError(err)
	}
	return core.NoContent()
}

func (h *TwoFactorHandler) verify(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := core.DecodeJSON(r, &req); err != nil {
		return core.JSONError(err)
	}

	return core.JSON(h.svc.Verify(r.Context(), userID, req.Code))
}

func (h *TwoFactorHandler) disable(r *http.Request) core.Response {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.svc.Disable(r.Context(), userID); err != nil {
		return core.JSONError(err)
	}
	return core.NoContent()
}
