package envelope

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/swiftshare/securecore/pkg/cipher"
)

// Prefix tags envelope-format values in storage. Anything without it is a
// legacy plaintext secret that predates envelope encryption.
const Prefix = "enc:v1:"

// Kind discriminates the two storage representations of a secret.
type Kind int

const (
	KindPlaintext Kind = iota
	KindEncrypted
)

// Value is a tagged variant over the two forms a stored secret can take:
// a legacy plaintext string or an encrypted payload. It replaces ad-hoc
// prefix sniffing at call sites.
type Value struct {
	kind      Kind
	plaintext string
	payload   cipher.Payload
}

// Plaintext builds a legacy plaintext value. Used when importing rows that
// predate envelope encryption.
func Plaintext(s string) Value {
	return Value{kind: KindPlaintext, plaintext: s}
}

// Encrypted builds an envelope value from an encrypted payload.
func Encrypted(p cipher.Payload) Value {
	return Value{kind: KindEncrypted, payload: p}
}

// FromStored classifies a persisted string without ever failing. A value is
// treated as encrypted only when the prefix matches and the body parses;
// everything else is legacy plaintext.
func FromStored(s string) Value {
	body, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return Plaintext(s)
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Plaintext(s)
	}

	var payload cipher.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Plaintext(s)
	}
	if payload.Ciphertext == "" || payload.IV == "" || payload.Tag == "" {
		return Plaintext(s)
	}

	return Encrypted(payload)
}

// Kind reports which variant this value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsEncrypted reports whether the value is in envelope format.
func (v Value) IsEncrypted() bool {
	return v.kind == KindEncrypted
}

// String serializes the value back to its single opaque storage form.
func (v Value) String() string {
	if v.kind == KindPlaintext {
		return v.plaintext
	}

	raw, err := json.Marshal(v.payload)
	if err != nil {
		// cipher.Payload is a plain struct of strings; marshaling cannot fail
		return ""
	}
	return Prefix + base64.StdEncoding.EncodeToString(raw)
}

// IsWrapped reports whether a stored string is in envelope format.
// Non-throwing by design: it is used to distinguish new envelope values
// from legacy plaintext on every read path.
func IsWrapped(s string) bool {
	return FromStored(s).IsEncrypted()
}
