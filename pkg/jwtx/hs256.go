package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/portal/pkg/tokenx"
	"github.com/golang-jwt/jwt/v5"
)

// HS256Codec signs and verifies session tokens with a shared secret. It is
// the full-tier implementation of tokenx.Codec.
type HS256Codec struct {
	key []byte
	now tokenx.Clock
}

var (
	_ Signer       = (*HS256Codec)(nil)
	_ Verifier     = (*HS256Codec)(nil)
	_ tokenx.Codec = CodecAdapter{}
)

// Option tweaks an HS256Codec.
type Option func(*HS256Codec)

// WithClock overrides the time source used for iat/exp and for verification.
func WithClock(now tokenx.Clock) Option {
	return func(c *HS256Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewHS256Codec builds a codec around secret. A zero secret is refused so a
// misconfigured process never signs with an empty key.
func NewHS256Codec(secret tokenx.Secret, opts ...Option) (*HS256Codec, error) {
	if secret.IsZero() {
		return nil, tokenx.ErrSecretMissing
	}
	c := &HS256Codec{
		key: secret.Key(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HS256Codec) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign turns claims into a compact JWS.
func (c *HS256Codec) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}

// Issue signs a fresh session token for the identity.
func (c *HS256Codec) Issue(userID, email, role string) (string, error) {
	if err := tokenx.CheckIdentity(userID, role); err != nil {
		return "", err
	}
	return c.Sign(NewSessionClaims(userID, email, role, c.now()))
}

// Verify validates the token string and returns its parsed Claims. All
// failures wrap tokenx.ErrTokenInvalid.
func (c *HS256Codec) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(tokenx.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", tokenx.ErrTokenInvalid)
	}

	// Same rule set the constrained tier applies.
	if err := claims.Payload().Validate(c.now()); err != nil {
		return nil, err
	}
	return claims, nil
}

// classify maps golang-jwt errors onto the shared error taxonomy while
// keeping the local sentinels reachable through errors.Is.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return tokenx.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w: %v", tokenx.ErrTokenInvalid, ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", tokenx.ErrTokenInvalid, ErrInvalidSig)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w: %v", tokenx.ErrTokenInvalid, ErrAlgMismatch, err)
	default:
		return fmt.Errorf("%w: %v", tokenx.ErrTokenInvalid, err)
	}
}

// CodecAdapter exposes an HS256Codec through the shared tokenx.Codec
// contract, returning claims by value.
type CodecAdapter struct{ *HS256Codec }

func (a CodecAdapter) Verify(token string) (tokenx.Claims, error) {
	c, err := a.HS256Codec.Verify(token)
	if err != nil {
		return tokenx.Claims{}, err
	}
	return c.Payload().Claims(), nil
}

// NewCodec returns the full-tier tokenx.Codec for secret.
func NewCodec(secret tokenx.Secret, opts ...Option) (tokenx.Codec, error) {
	c, err := NewHS256Codec(secret, opts...)
	if err != nil {
		return nil, err
	}
	return CodecAdapter{c}, nil
}
