package tokenx

import (
	"errors"
	"fmt"
	"strings"
)

// MinSecretLength is the minimum accepted length of the signing secret in
// bytes (the HS256 key size).
const MinSecretLength = 32

// ErrSecretMissing is returned by ParseSecret for an empty secret.
var ErrSecretMissing = errors.New("tokenx: signing secret is not configured")

// Secret is the shared HMAC key. It is loaded once at startup and never
// changes afterwards.
type Secret struct {
	key []byte
}

// ParseSecret validates raw secret material. There is no default: an empty
// or short secret is a configuration error.
func ParseSecret(raw string) (Secret, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Secret{}, ErrSecretMissing
	}
	if len(raw) < MinSecretLength {
		return Secret{}, fmt.Errorf("tokenx: signing secret must be at least %d bytes, got %d", MinSecretLength, len(raw))
	}
	return Secret{key: []byte(raw)}, nil
}

// MustParseSecret is ParseSecret for tests and fixed fixtures.
func MustParseSecret(raw string) Secret {
	s, err := ParseSecret(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Key returns a copy of the key bytes.
func (s Secret) Key() []byte {
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out
}

// IsZero reports whether the secret was never set.
func (s Secret) IsZero() bool { return len(s.key) == 0 }

// String never reveals the key.
func (s Secret) String() string { return "tokenx.Secret(redacted)" }
