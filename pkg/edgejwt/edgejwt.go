// Package edgejwt is the constrained-tier session token codec. It runs in
// the route guard, which must decide on every request without storage or
// third-party crypto, so it only uses crypto/hmac and encoding/json.
//
// Tokens produced here verify under pkg/jwtx and vice versa.
package edgejwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/portal/pkg/tokenx"
)

var b64 = base64.RawURLEncoding.Strict()

// Codec implements tokenx.Codec with the standard library only.
type Codec struct {
	key []byte
	now tokenx.Clock
}

var _ tokenx.Codec = (*Codec)(nil)

// New returns a Codec for secret. now may be nil.
func New(secret tokenx.Secret, now tokenx.Clock) (*Codec, error) {
	if secret.IsZero() {
		return nil, tokenx.ErrSecretMissing
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{key: secret.Key(), now: now}, nil
}

// Issue signs a fresh session token.
func (c *Codec) Issue(userID, email, role string) (string, error) {
	if err := tokenx.CheckIdentity(userID, role); err != nil {
		return "", err
	}
	claims := tokenx.NewClaims(tokenx.NewJTI(), userID, email, role, c.now())

	header, err := json.Marshal(tokenx.Header{Alg: tokenx.Algorithm, Typ: tokenx.Type})
	if err != nil {
		return "", fmt.Errorf("edgejwt: marshal header: %w", err)
	}
	payload, err := json.Marshal(claims.Payload())
	if err != nil {
		return "", fmt.Errorf("edgejwt: marshal payload: %w", err)
	}

	signing := b64.EncodeToString(header) + "." + b64.EncodeToString(payload)
	return signing + "." + b64.EncodeToString(c.sign(signing)), nil
}

// Verify checks the signature, algorithm and claims of token.
func (c *Codec) Verify(token string) (tokenx.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return tokenx.Claims{}, invalid("token contains an invalid number of segments")
	}

	rawHeader, err := b64.DecodeString(parts[0])
	if err != nil {
		return tokenx.Claims{}, invalid("header is not base64url")
	}
	var h tokenx.Header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return tokenx.Claims{}, invalid("header is not JSON")
	}
	if h.Alg != tokenx.Algorithm {
		return tokenx.Claims{}, invalid("algorithm mismatch")
	}

	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return tokenx.Claims{}, invalid("signature is not base64url")
	}
	if !hmac.Equal(sig, c.sign(parts[0]+"."+parts[1])) {
		return tokenx.Claims{}, invalid("signature mismatch")
	}

	rawPayload, err := b64.DecodeString(parts[1])
	if err != nil {
		return tokenx.Claims{}, invalid("payload is not base64url")
	}
	var p tokenx.Payload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return tokenx.Claims{}, invalid("payload is not JSON")
	}
	if err := p.Validate(c.now()); err != nil {
		return tokenx.Claims{}, err
	}
	return p.Claims(), nil
}

func (c *Codec) sign(signing string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(signing))
	return mac.Sum(nil)
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", tokenx.ErrTokenInvalid, reason)
}
