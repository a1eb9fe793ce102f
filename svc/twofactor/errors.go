package twofactor

import "errors"

var (
	ErrStorageRequired     = errors.New("storage is required")
	ErrSecretsRequired     = errors.New("envelope service is required")
	ErrUserIDRequired      = errors.New("user id is required")
	ErrBackupCodesRequired = errors.New("backup codes are required")
)
