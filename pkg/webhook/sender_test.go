package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftshare/securecore/pkg/webhook"
)

func TestSender_Deliver_Success(t *testing.T) {
	t.Parallel()

	secret := "whsec_sendertest"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, webhook.DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "transfer.created", r.Header.Get("X-Webhook-Event"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload webhook.Payload
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "transfer.created", payload.Event)

		// Timestamp is ISO-8601
		_, err = time.Parse(time.RFC3339, payload.Timestamp)
		assert.NoError(t, err)

		sig, err := webhook.ParseSignatureHeader(r.Header.Get("X-Webhook-Signature"))
		require.NoError(t, err)
		assert.NoError(t, webhook.Verify(secret, body, sig, time.Minute))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := webhook.NewSender()
	result := sender.Deliver(context.Background(), server.URL, secret,
		webhook.NewPayload("transfer.created", map[string]any{"transfer_id": "tr_123"}))

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.NoError(t, result.Err)
}

func TestSender_Deliver_HTTPFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone away", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender := webhook.NewSender()
	result := sender.Deliver(context.Background(), server.URL, "whsec_x",
		webhook.NewPayload("transfer.expired", nil))

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
}

func TestSender_Deliver_TransportFailure(t *testing.T) {
	t.Parallel()

	// Grab a port that nothing listens on
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	sender := webhook.NewSender()
	result := sender.Deliver(context.Background(), deadURL, "whsec_x",
		webhook.NewPayload("transfer.deleted", nil))

	assert.False(t, result.Success)
	assert.Equal(t, webhook.StatusTransportError, result.StatusCode)
	assert.Error(t, result.Err)
}

func TestSender_Deliver_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	sender := webhook.NewSender(webhook.WithTimeout(50 * time.Millisecond))

	start := time.Now()
	result := sender.Deliver(context.Background(), server.URL, "whsec_x",
		webhook.NewPayload("file.uploaded", nil))

	assert.False(t, result.Success)
	assert.Equal(t, webhook.StatusTransportError, result.StatusCode)
	assert.Error(t, result.Err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
