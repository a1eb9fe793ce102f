package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftshare/securecore/pkg/webhook"
)

func TestSignAt_Reproducible(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event":"transfer.created","timestamp":"2026-01-02T03:04:05Z","data":{}}`)
	secret := "whsec_testsecret"
	at := time.Unix(1_700_000_000, 0)

	sig, err := webhook.SignAt(secret, payload, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), sig.Timestamp)

	// Recompute independently: HMAC-SHA256 over "{ts}.{payload}"
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", sig.Timestamp, payload)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), sig.V1)

	assert.Equal(t, fmt.Sprintf("t=%d,v1=%s", sig.Timestamp, sig.V1), sig.Header())
}

func TestSign_InputErrors(t *testing.T) {
	t.Parallel()

	_, err := webhook.Sign("", []byte("payload"))
	assert.ErrorIs(t, err, webhook.ErrMissingSecret)

	_, err = webhook.Sign("secret", nil)
	assert.ErrorIs(t, err, webhook.ErrInvalidPayload)
}

func TestParseSignatureHeader(t *testing.T) {
	t.Parallel()

	sig, err := webhook.ParseSignatureHeader("t=1700000000,v1=abcdef0123456789")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), sig.Timestamp)
	assert.Equal(t, "abcdef0123456789", sig.V1)

	// Components in either order, with spaces
	sig, err = webhook.ParseSignatureHeader("v1=abc, t=42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), sig.Timestamp)

	for _, header := range []string{"", "t=1700000000", "v1=abc", "t=notanumber,v1=abc"} {
		_, err := webhook.ParseSignatureHeader(header)
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature, "header %q", header)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event":"file.uploaded"}`)
	secret := "whsec_verify"

	sig, err := webhook.Sign(secret, payload)
	require.NoError(t, err)

	assert.NoError(t, webhook.Verify(secret, payload, sig, 5*time.Minute))

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, webhook.Verify("other", payload, sig, 0), webhook.ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, webhook.Verify(secret, []byte(`{"event":"file.downloaded"}`), sig, 0), webhook.ErrInvalidSignature)
	})

	t.Run("stale signature", func(t *testing.T) {
		t.Parallel()
		old, err := webhook.SignAt(secret, payload, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.ErrorIs(t, webhook.Verify(secret, payload, old, 5*time.Minute), webhook.ErrSignatureExpired)
	})
}
