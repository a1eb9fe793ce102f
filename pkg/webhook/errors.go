package webhook

import "errors"

var (
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrMissingSecret    = errors.New("webhook signing secret is required")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSignatureExpired = errors.New("webhook signature expired")
)
