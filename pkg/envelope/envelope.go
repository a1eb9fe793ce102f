package envelope

import (
	"errors"
	"log/slog"

	"github.com/swiftshare/securecore/pkg/cipher"
)

// Service wraps and unwraps small secrets under a server-held master key.
type Service struct {
	keyring Keyring
	log     *slog.Logger
}

// New creates an envelope service. A nil logger falls back to slog.Default.
func New(keyring Keyring, log *slog.Logger) (*Service, error) {
	if keyring == nil {
		return nil, ErrKeyringRequired
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{keyring: keyring, log: log}, nil
}

// Wrap encrypts a plaintext secret and serializes it into a single opaque
// string suitable for the document store. Empty secrets are rejected: their
// envelope would carry an empty ciphertext, which FromStored cannot tell
// apart from legacy plaintext.
func (s *Service) Wrap(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.Join(ErrWrapFailed, ErrEmptyPlaintext)
	}
	payload, err := cipher.Encrypt([]byte(plaintext), s.keyring.MasterKey())
	if err != nil {
		return "", errors.Join(ErrWrapFailed, err)
	}
	return Encrypted(payload).String(), nil
}

// Unwrap decrypts an envelope-format value. It fails if the value is not in
// envelope format or its authentication tag does not match.
func (s *Service) Unwrap(stored string) (string, error) {
	v := FromStored(stored)
	if !v.IsEncrypted() {
		return "", ErrNotWrapped
	}

	plaintext, err := cipher.Decrypt(v.payload, s.keyring.MasterKey())
	if err != nil {
		return "", errors.Join(ErrUnwrapFailed, err)
	}
	return string(plaintext), nil
}

// Open applies the read policy for stored secrets: envelope values are
// unwrapped, legacy plaintext values are returned as-is with a migration
// warning. Legacy values are never rewritten on read.
func (s *Service) Open(stored string) (string, error) {
	v := FromStored(stored)
	if !v.IsEncrypted() {
		s.log.Warn("secret stored as legacy plaintext, consider migrating to envelope format")
		return v.plaintext, nil
	}

	plaintext, err := cipher.Decrypt(v.payload, s.keyring.MasterKey())
	if err != nil {
		return "", errors.Join(ErrUnwrapFailed, err)
	}
	return string(plaintext), nil
}
