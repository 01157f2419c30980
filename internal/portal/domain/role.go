package domain

import (
	"errors"
	"strings"
)

// Role is the fixed set of portal roles. The string values are what tokens
// and the database carry.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleDirector        Role = "director"
	RoleInternalAuditor Role = "internal_auditor"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleDirector, RoleInternalAuditor}

// ParseRole accepts the canonical role names, case-insensitively, plus the
// hyphenated form used in URLs ("internal-auditor").
func ParseRole(s string) (Role, error) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleInternalAuditor:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// LandingPath is where a freshly logged-in principal is sent.
func LandingPath(r Role) string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleDirector:
		return "/director/dashboard"
	case RoleInternalAuditor:
		return "/internal-auditor/dashboard"
	default:
		return "/"
	}
}
