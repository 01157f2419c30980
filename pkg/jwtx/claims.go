package jwtx

import (
	"time"

	"github.com/aussiebroadwan/portal/pkg/tokenx"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session-token claims in golang-jwt form. The custom fields
// keep the camelCase names the rest of the portal already speaks.
type Claims struct {
	jwt.RegisteredClaims

	// UserID of the principal the token was issued to.
	UserID string `json:"userId"`

	// Email as it was at issue time. Informational only, the resolver
	// re-reads the principal from storage.
	Email string `json:"email"`

	// Role as it was at issue time.
	Role string `json:"role"`
}

// NewSessionClaims builds claims for a token issued at now.
func NewSessionClaims(userID, email, role string, now time.Time) Claims {
	return FromContract(tokenx.NewClaims(tokenx.NewJTI(), userID, email, role, now))
}

// FromContract converts the shared claim set into golang-jwt claims.
func FromContract(c tokenx.Claims) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenx.Issuer,
			ID:        c.ID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}
}

// Payload returns the wire payload so the shared validation rules can run
// over it.
func (c *Claims) Payload() tokenx.Payload {
	p := tokenx.Payload{
		Issuer: c.Issuer,
		ID:     c.ID,
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Unix()
	}
	if c.NotBefore != nil {
		p.NotBefore = c.NotBefore.Unix()
	}
	return p
}
