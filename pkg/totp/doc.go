// Package totp implements time-based one-time passwords (RFC 6238) on top
// of the RFC 4226 HOTP algorithm, plus the backup-code primitives used by
// the two-factor enrollment flow.
//
// Secrets are 160-bit Base32-encoded strings; codes are 6 digits over
// 30-second periods with HMAC-SHA1, matching what authenticator apps expect
// from the otpauth:// provisioning URI produced by ProvisioningURI.
// Validation accepts one adjacent period on each side of the current one to
// tolerate clock drift.
//
// Backup codes are 8 hex characters formatted XXXX-XXXX, hashed with
// SHA-256 before storage and compared in constant time.
package totp
