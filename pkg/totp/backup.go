package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// BackupCodeCount is the number of one-time backup codes issued per user.
const BackupCodeCount = 10

// GenerateBackupCodes creates exactly ten one-time backup codes. Each code
// is built from 4 random bytes rendered as 8 hex characters and split as
// XXXX-XXXX for readability.
func GenerateBackupCodes() ([]string, error) {
	codes := make([]string, BackupCodeCount)
	for i := range codes {
		raw := make([]byte, 4)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Join(ErrFailedToGenerateBackupCode, err)
		}
		hexCode := fmt.Sprintf("%X", raw)
		codes[i] = hexCode[:4] + "-" + hexCode[4:]
	}
	return codes, nil
}

// NormalizeBackupCode strips separators and whitespace and uppercases the
// code so user input matches the stored hash regardless of formatting.
func NormalizeBackupCode(code string) string {
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return strings.ToUpper(strings.TrimSpace(code))
}

// HashBackupCode creates a SHA-256 hash of the normalized code for storage.
// Plaintext backup codes are never persisted.
func HashBackupCode(code string) string {
	hash := sha256.Sum256([]byte(NormalizeBackupCode(code)))
	return hex.EncodeToString(hash[:])
}

// HashBackupCodes hashes a full set of codes, preserving order.
func HashBackupCodes(codes []string) []string {
	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = HashBackupCode(code)
	}
	return hashes
}

// MatchBackupCode returns the index of the stored hash matching the given
// code, or -1 if none matches. Every hash is compared in constant time and
// the scan never exits early.
func MatchBackupCode(code string, hashes []string) int {
	computed := HashBackupCode(code)

	match := -1
	for i, hash := range hashes {
		if subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1 && match == -1 {
			match = i
		}
	}
	return match
}
