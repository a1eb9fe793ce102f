package webhooks

import "errors"

var (
	ErrStorageRequired        = errors.New("webhook storage is required")
	ErrSecretsRequired        = errors.New("envelope service is required")
	ErrUserIDRequired         = errors.New("user id is required")
	ErrFailedToGenerateSecret = errors.New("failed to generate webhook secret")

	ErrInvalidEvent      = errors.New("unknown webhook event")
	ErrNoEvents          = errors.New("webhook must subscribe to at least one event")
	ErrEmptyName         = errors.New("webhook name is required")
	ErrFailedToStore     = errors.New("failed to store webhook")
	ErrSecretUnavailable = errors.New("webhook secret unavailable")
)
