package webhooks

import (
	"strings"
	"time"
)

const (
	// SecretPrefix tags plaintext webhook secrets so receivers and support
	// tooling can recognize them.
	SecretPrefix = "whsec_"

	// DisableThreshold is the failure count at which a webhook is
	// automatically deactivated. There is no scheduled retry or backoff;
	// crossing the threshold requires a manual re-enable.
	DisableThreshold = 10

	// FixedMask is shown instead of a suffix mask for secrets too short to
	// safely reveal their last characters.
	FixedMask = "********"
)

// Webhook is a user-owned outbound webhook subscription. The stored secret
// is envelope-wrapped and never serialized; SecretMask carries the masked
// form on read paths.
type Webhook struct {
	ID              string     `json:"id" bson:"_id"`
	UserID          string     `json:"user_id" bson:"user_id"`
	Name            string     `json:"name" bson:"name"`
	URL             string     `json:"url" bson:"url"`
	Secret          string     `json:"-" bson:"secret"`
	SecretMask      string     `json:"secret,omitempty" bson:"-"`
	Events          []Event    `json:"events" bson:"events"`
	IsActive        bool       `json:"is_active" bson:"is_active"`
	FailureCount    int        `json:"failure_count" bson:"failure_count"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty" bson:"last_triggered_at,omitempty"`
	LastStatus      *int       `json:"last_status,omitempty" bson:"last_status,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// Subscribed reports whether the webhook subscribes to the given event.
func (w *Webhook) Subscribed(event Event) bool {
	for _, e := range w.Events {
		if e == event {
			return true
		}
	}
	return false
}

// MaskSecret hides a plaintext secret for display: every character is
// replaced except the trailing four. Secrets of eight characters or fewer
// get a fixed mask instead, since a suffix would reveal too much of them.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return FixedMask
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
