package ssrf

import "errors"

var (
	ErrInvalidURL = errors.New("invalid webhook URL")
	ErrBlockedURL = errors.New("webhook URL targets an internal address")
)
