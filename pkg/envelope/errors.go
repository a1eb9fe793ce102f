package envelope

import "errors"

var (
	ErrKeyringRequired  = errors.New("keyring is required")
	ErrEmptyPlaintext   = errors.New("plaintext secret is empty")
	ErrInvalidMasterKey = errors.New("invalid master key: must be 32 bytes")
	ErrWrapFailed       = errors.New("failed to wrap secret")
	ErrUnwrapFailed     = errors.New("failed to unwrap secret")
	ErrNotWrapped       = errors.New("value is not in envelope format")
)
