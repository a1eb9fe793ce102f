// Package cipher provides authenticated symmetric encryption for small
// secrets using AES-256-GCM.
//
// Values protected by this package (TOTP seeds, webhook signing keys) are
// themselves credentials, so confidentiality alone is not enough: every
// decryption verifies the 128-bit authentication tag and fails closed on
// mismatch.
//
// Keys are either supplied directly (32 bytes) or derived from a password
// via PBKDF2-HMAC-SHA256 with 100,000 iterations and a random 32-byte salt.
// The salt travels inside the Payload so password-derived ciphertexts are
// self-contained.
//
//	payload, err := cipher.Encrypt([]byte("seed"), masterKey)
//	...
//	plain, err := cipher.Decrypt(payload, masterKey)
//
// Use errors.Is against the package sentinels (ErrDecryptionFailed and
// friends) to classify failures.
package cipher
