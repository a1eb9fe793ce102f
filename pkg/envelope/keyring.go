package envelope

import (
	"github.com/swiftshare/securecore/pkg/cipher"
)

// Keyring supplies the master encryption key. It is an injected dependency
// so key storage and rotation stay an external collaborator's concern.
type Keyring interface {
	MasterKey() []byte
}

// StaticKeyring holds a fixed master key in memory.
type StaticKeyring struct {
	key []byte
}

// NewStaticKeyring wraps a raw 32-byte master key.
func NewStaticKeyring(key []byte) (*StaticKeyring, error) {
	if len(key) != cipher.KeySize {
		return nil, ErrInvalidMasterKey
	}
	return &StaticKeyring{key: key}, nil
}

// KeyringFromConfig decodes the base64 master key from configuration.
func KeyringFromConfig(cfg Config) (*StaticKeyring, error) {
	key, err := cipher.DecodeKey(cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	return &StaticKeyring{key: key}, nil
}

func (k *StaticKeyring) MasterKey() []byte {
	return k.key
}
