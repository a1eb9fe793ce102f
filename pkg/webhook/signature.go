package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature is a timestamped HMAC-SHA256 signature over a webhook payload.
// The header form is "t=<unixSeconds>,v1=<hex>"; embedding the timestamp
// lets receivers reject stale or replayed deliveries.
type Signature struct {
	Timestamp int64
	V1        string
}

// Header renders the signature in its X-Webhook-Signature header form.
func (s Signature) Header() string {
	return fmt.Sprintf("t=%d,v1=%s", s.Timestamp, s.V1)
}

// Sign computes the signature for a serialized payload using the current
// time.
func Sign(secret string, payload []byte) (Signature, error) {
	return SignAt(secret, payload, time.Now())
}

// SignAt computes HMAC-SHA256 over "{unixTimestamp}.{payload}" with the
// given secret. Exposed with an explicit time for tests and verification.
func SignAt(secret string, payload []byte, at time.Time) (Signature, error) {
	if secret == "" {
		return Signature{}, ErrMissingSecret
	}
	if len(payload) == 0 {
		return Signature{}, ErrInvalidPayload
	}

	ts := at.Unix()
	return Signature{Timestamp: ts, V1: computeV1(secret, payload, ts)}, nil
}

// ParseSignatureHeader parses the "t=...,v1=..." header form.
func ParseSignatureHeader(header string) (Signature, error) {
	var sig Signature
	for part := range strings.SplitSeq(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Signature{}, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			sig.Timestamp = ts
		case "v1":
			sig.V1 = value
		}
	}

	if sig.Timestamp == 0 || sig.V1 == "" {
		return Signature{}, fmt.Errorf("%w: missing components", ErrInvalidSignature)
	}
	return sig, nil
}

// Verify checks a received signature against the payload in constant time.
// A positive maxAge additionally rejects signatures older than that window;
// staleness enforcement beyond this helper is the receiver's responsibility.
func Verify(secret string, payload []byte, sig Signature, maxAge time.Duration) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if len(payload) == 0 {
		return ErrInvalidPayload
	}

	if maxAge > 0 {
		age := time.Since(time.Unix(sig.Timestamp, 0))
		if age > maxAge {
			return fmt.Errorf("%w: signed %v ago", ErrSignatureExpired, age)
		}
	}

	expected := computeV1(secret, payload, sig.Timestamp)
	if !hmac.Equal([]byte(expected), []byte(sig.V1)) {
		return ErrInvalidSignature
	}
	return nil
}

func computeV1(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return hex.EncodeToString(mac.Sum(nil))
}
