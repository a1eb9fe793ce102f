package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize   = 32 // AES-256 key size in bytes
	NonceSize = 12 // 96-bit nonce, the GCM-recommended size
	TagSize   = 16 // 128-bit authentication tag
	SaltSize  = 32 // Salt size for password-based key derivation

	// PBKDF2Iterations balances brute-force resistance against login latency.
	PBKDF2Iterations = 100_000
)

// Payload is the storable result of an authenticated encryption operation.
// Ciphertext, IV and Tag are always present; Salt is set only when the key
// was derived from a password.
type Payload struct {
	Ciphertext string `json:"ciphertext" bson:"ciphertext"`
	IV         string `json:"iv" bson:"iv"`
	Tag        string `json:"tag" bson:"tag"`
	Salt       string `json:"salt,omitempty" bson:"salt,omitempty"`
}

// Encrypt encrypts data with AES-256-GCM under the given 32-byte key.
// A fresh random nonce is generated per call; a nonce is never reused
// with the same key.
func Encrypt(data, key []byte) (Payload, error) {
	if len(key) != KeySize {
		return Payload{}, errors.Join(ErrEncryptionFailed, ErrInvalidKeyLength)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return Payload{}, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Payload{}, errors.Join(ErrEncryptionFailed, err)
	}

	sealed := gcm.Seal(nil, nonce, data, nil)
	split := len(sealed) - TagSize

	return Payload{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
	}, nil
}

// EncryptWithPassword derives a key from the password via PBKDF2-HMAC-SHA256
// with a fresh random salt, then encrypts like Encrypt. The salt is returned
// inside the payload so the caller can decrypt later.
func EncryptWithPassword(data []byte, password string) (Payload, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Payload{}, errors.Join(ErrEncryptionFailed, err)
	}

	payload, err := Encrypt(data, DeriveKey(password, salt))
	if err != nil {
		return Payload{}, err
	}

	payload.Salt = base64.StdEncoding.EncodeToString(salt)
	return payload, nil
}

// Decrypt decrypts a payload produced by Encrypt. It fails with
// ErrDecryptionFailed if the authentication tag does not match; tampering
// is always detected and no partial plaintext is ever returned.
func Decrypt(payload Payload, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidKeyLength)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(payload.Ciphertext)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidPayload, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(payload.IV)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidPayload, err)
	}
	tag, err := base64.StdEncoding.DecodeString(payload.Tag)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidPayload, err)
	}
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidPayload)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// DecryptWithPassword decrypts a payload produced by EncryptWithPassword.
// The payload must carry the original salt.
func DecryptWithPassword(payload Payload, password string) ([]byte, error) {
	if payload.Salt == "" {
		return nil, errors.Join(ErrDecryptionFailed, ErrMissingSalt)
	}

	salt, err := base64.StdEncoding.DecodeString(payload.Salt)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, ErrInvalidPayload, err)
	}

	return Decrypt(payload, DeriveKey(password, salt))
}

// DeriveKey derives a 256-bit key from a password and salt using
// PBKDF2-HMAC-SHA256. Deterministic for the same password and salt.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

func newGCM(key []byte) (stdcipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return stdcipher.NewGCM(block)
}
