package tokenx

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Claims are the identity claims carried by a session token.
type Claims struct {
	ID        string // jti
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Payload is the JSON form of Claims on the wire. Timestamps are NumericDate
// seconds.
type Payload struct {
	Issuer    string `json:"iss"`
	ID        string `json:"jti,omitempty"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	NotBefore int64  `json:"nbf,omitempty"`
}

// UnmarshalJSON accepts NumericDate values the way golang-jwt does: any
// JSON number (or numeric string), truncated to whole seconds.
func (p *Payload) UnmarshalJSON(b []byte) error {
	type plain Payload
	var w struct {
		plain
		IssuedAt  numericDate `json:"iat"`
		ExpiresAt numericDate `json:"exp"`
		NotBefore numericDate `json:"nbf"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Payload(w.plain)
	p.IssuedAt = int64(w.IssuedAt)
	p.ExpiresAt = int64(w.ExpiresAt)
	p.NotBefore = int64(w.NotBefore)
	return nil
}

type numericDate int64

func (d *numericDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("tokenx: numeric date: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("tokenx: numeric date: %w", err)
	}
	whole, frac := math.Modf(f)
	*d = numericDate(time.Unix(int64(whole), int64(frac*1e9)).Truncate(time.Second).Unix())
	return nil
}

// Header is the JSON form of the JWS header.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

// Roles lists every role a token may carry.
var Roles = []string{"admin", "director", "internal_auditor"}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NewClaims builds the claims for a token issued at now. Timestamps are
// truncated to whole seconds, matching what survives the wire.
func NewClaims(jti, userID, email, role string, now time.Time) Claims {
	iat := now.UTC().Truncate(time.Second)
	return Claims{
		ID:        jti,
		UserID:    userID,
		Email:     email,
		Role:      role,
		IssuedAt:  iat,
		ExpiresAt: iat.Add(TTL),
	}
}

// Payload converts claims to their wire form.
func (c Claims) Payload() Payload {
	return Payload{
		Issuer:    Issuer,
		ID:        c.ID,
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		IssuedAt:  c.IssuedAt.Unix(),
		ExpiresAt: c.ExpiresAt.Unix(),
	}
}

// Claims converts a wire payload back to claims.
func (p Payload) Claims() Claims {
	return Claims{
		ID:        p.ID,
		UserID:    p.UserID,
		Email:     p.Email,
		Role:      p.Role,
		IssuedAt:  time.Unix(p.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(p.ExpiresAt, 0).UTC(),
	}
}

// CheckIdentity validates the identity inputs to Issue.
func CheckIdentity(userID, role string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("tokenx: user id is required")
	}
	if !ValidRole(role) {
		return fmt.Errorf("tokenx: unknown role %q", role)
	}
	return nil
}

// Validate applies the claim rules every verifier enforces after the
// signature has been checked. now is the verifier's clock.
func (p Payload) Validate(now time.Time) error {
	if p.Issuer != Issuer {
		return fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: missing userId", ErrTokenInvalid)
	}
	if !ValidRole(p.Role) {
		return fmt.Errorf("%w: unknown role", ErrTokenInvalid)
	}
	if p.IssuedAt == 0 || p.ExpiresAt == 0 || p.ExpiresAt <= p.IssuedAt {
		return fmt.Errorf("%w: bad timestamps", ErrTokenInvalid)
	}
	if p.NotBefore != 0 && now.Before(time.Unix(p.NotBefore, 0)) {
		return fmt.Errorf("%w: not yet valid", ErrTokenInvalid)
	}
	if !now.Before(time.Unix(p.ExpiresAt, 0)) {
		return ErrTokenExpired
	}
	return nil
}
