package webhook

import (
	"encoding/json"
	"errors"
	"time"
)

// Payload is the wire object POSTed to subscriber endpoints. It is never
// persisted.
type Payload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"` // ISO-8601, UTC
	Data      any    `json:"data"`
}

// NewPayload builds a payload stamped with the current UTC time.
func NewPayload(event string, data any) Payload {
	return NewPayloadAt(event, data, time.Now())
}

// NewPayloadAt builds a payload stamped with the given time.
func NewPayloadAt(event string, data any, at time.Time) Payload {
	return Payload{
		Event:     event,
		Timestamp: at.UTC().Format(time.RFC3339),
		Data:      data,
	}
}

// Marshal serializes the payload for signing and transmission.
func (p Payload) Marshal() ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return raw, nil
}
