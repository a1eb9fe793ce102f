package twofactor

import (
	"time"
)

// Config is the per-user two-factor state. A record exists only while 2FA
// is enabled; disabling removes it entirely rather than leaving a
// soft-disabled row behind.
type Config struct {
	Enabled          bool       `json:"enabled" bson:"enabled"`
	Secret           string     `json:"-" bson:"secret"` // envelope-wrapped TOTP seed
	BackupCodeHashes []string   `json:"-" bson:"backup_code_hashes"`
	EnabledAt        *time.Time `json:"enabled_at,omitempty" bson:"enabled_at,omitempty"`
}

// Enrollment is returned by Setup. Secret and BackupCodes are handed to the
// user exactly once and never stored in plaintext.
type Enrollment struct {
	Secret      string   `json:"secret"`
	URI         string   `json:"uri"` // otpauth:// provisioning URI
	BackupCodes []string `json:"backup_codes"`
}

// VerifyResult reports the outcome of a verification attempt. All failure
// causes collapse into Valid=false so callers cannot build an oracle out of
// the response.
type VerifyResult struct {
	Valid                bool `json:"valid"`
	UsedBackupCode       bool `json:"used_backup_code"`
	RemainingBackupCodes int  `json:"remaining_backup_codes"`
}
