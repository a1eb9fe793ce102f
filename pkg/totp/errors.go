package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey  = errors.New("failed to generate TOTP secret key")
	ErrFailedToGenerateBackupCode = errors.New("failed to generate backup code")
	ErrMissingSecret              = errors.New("missing secret")
	ErrInvalidSecret              = errors.New("invalid secret")
	ErrMissingAccountName         = errors.New("missing account name")
	ErrMissingIssuer              = errors.New("missing issuer")
	ErrInvalidOTP                 = errors.New("invalid OTP format")
)
