package cipher

import "errors"

var (
	ErrEncryptionFailed    = errors.New("encryption failed")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrInvalidKeyLength    = errors.New("invalid encryption key length, must be 32 bytes")
	ErrInvalidPayload      = errors.New("invalid encrypted payload")
	ErrMissingSalt         = errors.New("payload has no salt for password-based decryption")
	ErrFailedToGenerateKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadKey     = errors.New("failed to load encryption key")
	ErrKeyNotSet           = errors.New("encryption key not set")
)
