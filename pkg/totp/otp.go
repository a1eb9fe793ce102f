package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits    = 6      // Standard 6-digit TOTP codes
	DefaultPeriod    = 30     // 30-second validity window (RFC 6238 standard)
	DefaultAlgorithm = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)

	// DefaultSkewWindows is how many adjacent periods Validate accepts on
	// each side of the current one, tolerating ±30s of clock drift.
	DefaultSkewWindows = 1
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	otpFormatRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))
)

// GenerateSecretKey generates a new Base32-encoded secret key for TOTP.
// The secret carries 160 bits of randomness (RFC 4226 recommendation).
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// Generate produces the 6-digit code for the 30-second window containing now.
func Generate(secret string) (string, error) {
	return GenerateAt(secret, time.Now())
}

// GenerateAt produces the 6-digit code for the 30-second window containing t.
// Useful for testing and for generating codes for specific moments.
func GenerateAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	code := GenerateHOTP(key, t.Unix()/int64(DefaultPeriod), DefaultDigits)
	return fmt.Sprintf("%0*d", DefaultDigits, code), nil
}

// Validate checks a user-supplied code against the current time.
func Validate(secret, otp string) (bool, error) {
	return ValidateAt(secret, otp, time.Now())
}

// ValidateAt checks a code against the window containing t plus one window
// on each side. All three windows are always evaluated regardless of where
// a match falls.
func ValidateAt(secret, otp string, t time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	otp = strings.TrimSpace(otp)
	if !otpFormatRegex.MatchString(otp) {
		return false, ErrInvalidOTP
	}

	counter := t.Unix() / int64(DefaultPeriod)

	matched := false
	for i := -DefaultSkewWindows; i <= DefaultSkewWindows; i++ {
		code := GenerateHOTP(key, counter+int64(i), DefaultDigits)
		if fmt.Sprintf("%0*d", DefaultDigits, code) == otp {
			matched = true
		}
	}

	return matched, nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based one-time password
// algorithm, converting a counter value into a numeric code via HMAC-SHA1
// and dynamic truncation.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Counter is encoded big-endian into 8 bytes (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte select the offset,
	// MSB of the extracted word is cleared to keep the value positive
	offset := hash[len(hash)-1] & 0x0f
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}

// URIParams contains the parameters for provisioning URI generation.
type URIParams struct {
	Secret      string // Base32-encoded TOTP secret key (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required parameters are present and well-formed.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// ProvisioningURI builds an otpauth:// URI for external authenticator apps,
// following the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", DefaultAlgorithm)
	query.Set("digits", fmt.Sprintf("%d", DefaultDigits))
	query.Set("period", fmt.Sprintf("%d", DefaultPeriod))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}
