package domain

import (
	"strings"
	"time"
)

// Principal is a portal account as the rest of the system sees it. It never
// carries the password hash.
type Principal struct {
	ID          string
	Email       string // stored case-folded
	Name        string
	Role        Role
	IsActive    bool
	DivisionIDs []string // divisions a director manages
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credentials is the login projection of a principal.
type Credentials struct {
	Principal
	PasswordHash string
}

// NormalizeEmail case-folds and trims an email address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Manages reports whether p manages division id.
func (p Principal) Manages(divisionID string) bool {
	for _, id := range p.DivisionIDs {
		if id == divisionID {
			return true
		}
	}
	return false
}
