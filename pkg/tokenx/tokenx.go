// Package tokenx defines the session token contract shared by every tier
// that issues or verifies portal session tokens.
//
// A session token is a compact JWS signed with HMAC-SHA256:
//
//	base64url(header) "." base64url(payload) "." base64url(HMAC-SHA256(secret, header "." payload))
//
// with header {"alg":"HS256","typ":"JWT"} and a payload carrying the claims
// below. Implementations live in pkg/jwtx (full tier) and pkg/edgejwt
// (constrained tier); both must accept exactly the same tokens.
//
// This package deliberately imports nothing outside the standard library so
// that the constrained tier can depend on it.
package tokenx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

const (
	// Algorithm is the only JWS algorithm accepted by any tier.
	Algorithm = "HS256"

	// Type is the JWS "typ" header value.
	Type = "JWT"

	// Issuer is the "iss" claim stamped on every session token.
	Issuer = "portal"

	// TTL is the lifetime of a session token.
	TTL = 7 * 24 * time.Hour
)

var (
	// ErrTokenInvalid covers malformed, unsigned, wrongly signed or otherwise
	// unacceptable tokens. Consumers treat it exactly like "no token".
	ErrTokenInvalid = errors.New("tokenx: invalid token")

	// ErrTokenExpired is a subset of ErrTokenInvalid: errors.Is(err,
	// ErrTokenInvalid) holds for it too.
	ErrTokenExpired error = expiredError{}
)

type expiredError struct{}

func (expiredError) Error() string        { return "tokenx: token expired" }
func (expiredError) Is(target error) bool { return target == ErrTokenInvalid }

// Codec issues and verifies session tokens.
type Codec interface {
	// Issue signs a new token for the identity with iat = now and
	// exp = now + TTL.
	Issue(userID, email, role string) (string, error)

	// Verify returns the claims of a valid token. Every failure is reported
	// as an error wrapping ErrTokenInvalid; Verify never panics.
	Verify(token string) (Claims, error)
}

// Clock returns the current time. Codecs accept one so that expiry windows
// can be exercised in tests.
type Clock func() time.Time

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [18]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
