package security_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftshare/securecore/modules/security"
	"github.com/swiftshare/securecore/pkg/cipher"
	"github.com/swiftshare/securecore/pkg/envelope"
	"github.com/swiftshare/securecore/pkg/ssrf"
	"github.com/swiftshare/securecore/svc/twofactor"
	"github.com/swiftshare/securecore/svc/webhooks"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	key, err := cipher.GenerateKey()
	require.NoError(t, err)
	keyring, err := envelope.NewStaticKeyring(key)
	require.NoError(t, err)
	secrets, err := envelope.New(keyring, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	twoFactorSvc, err := twofactor.New(twofactor.NewMemoryStorage(), secrets,
		twofactor.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)

	guard := ssrf.New(ssrf.WithLookup(func(_ context.Context, _ string) ([]netip.Addr, error) {
		return []netip.Addr{netip.MustParseAddr("93.184.216.34")}, nil
	}))
	webhookSvc, err := webhooks.New(webhooks.NewMemoryStorage(), secrets,
		webhooks.WithLogger(slog.New(slog.DiscardHandler)),
		webhooks.WithGuard(guard))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-User-ID"); id != "" {
				req = req.WithContext(security.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Mount("/security", security.Router(security.RouterOptions{
		TwoFactor: security.NewTwoFactorHandler(twoFactorSvc),
		Webhooks:  security.NewWebhooksHandler(webhookSvc),
	}))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/security/webhooks/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/security/2fa/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_TwoFactorFlow(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/security/2fa/", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"enabled":false}}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/security/2fa/setup", "user-1",
		map[string]string{"account_name": "user@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var setup struct {
		Data struct {
			Secret      string   `json:"secret"`
			URI         string   `json:"uri"`
			BackupCodes []string `json:"backup_codes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &setup))
	assert.NotEmpty(t, setup.Data.Secret)
	assert.Contains(t, setup.Data.URI, "otpauth://totp/")
	assert.Len(t, setup.Data.BackupCodes, 10)

	rec = doJSON(t, h, http.MethodPost, "/security/2fa/enable", "user-1", map[string]any{
		"secret":       setup.Data.Secret,
		"backup_codes": setup.Data.BackupCodes,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/security/2fa/", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"enabled":true}}`, rec.Body.String())

	// Backup code verification consumes the code
	rec = doJSON(t, h, http.MethodPost, "/security/2fa/verify", "user-1",
		map[string]string{"code": setup.Data.BackupCodes[0]})
	require.Equal(t, http.StatusOK, rec.Code)

	var verify struct {
		Data twofactor.VerifyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.True(t, verify.Data.Valid)
	assert.True(t, verify.Data.UsedBackupCode)
	assert.Equal(t, 9, verify.Data.RemainingBackupCodes)

	rec = doJSON(t, h, http.MethodDelete, "/security/2fa/", "user-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_WebhookLifecycle(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/security/webhooks/", "user-1", map[string]any{
		"name":   "CI notifications",
		"url":    "https://hooks.example.com/endpoint",
		"events": []string{"transfer.created"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			Webhook webhooks.Webhook `json:"webhook"`
			Secret  string           `json:"secret"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Data.Webhook.ID)
	assert.Contains(t, created.Data.Secret, webhooks.SecretPrefix)

	// Reads only ever expose the masked secret
	rec = doJSON(t, h, http.MethodGet, "/security/webhooks/"+created.Data.Webhook.ID+"/", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), created.Data.Secret)
	assert.Contains(t, rec.Body.String(), created.Data.Secret[len(created.Data.Secret)-4:])

	// Another user cannot see it
	rec = doJSON(t, h, http.MethodGet, "/security/webhooks/"+created.Data.Webhook.ID+"/", "user-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/security/webhooks/"+created.Data.Webhook.ID+"/", "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_WebhookValidation(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/security/webhooks/", "user-1", map[string]any{
		"name":   "internal probe",
		"url":    "http://169.254.169.254/latest/meta-data",
		"events": []string{"transfer.created"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "url")

	rec = doJSON(t, h, http.MethodPost, "/security/webhooks/", "user-1", map[string]any{
		"name":   "no events",
		"url":    "https://hooks.example.com/endpoint",
		"events": []string{},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "events")
}

func TestRouter_EventsCatalog(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/security/webhooks/events", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transfer.created")
	assert.Contains(t, rec.Body.String(), "file.downloaded")
}
