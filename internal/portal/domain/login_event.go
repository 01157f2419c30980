package domain

import "time"

type LoginOutcome string

const (
	LoginSucceeded          LoginOutcome = "success"
	LoginInvalidCredentials LoginOutcome = "invalid_credentials"
	LoginDeactivated        LoginOutcome = "deactivated"
)

// LoginEvent is one audited login attempt. PrincipalID is empty when the
// email did not match any account.
type LoginEvent struct {
	ID          string
	PrincipalID string
	Email       string
	Outcome     LoginOutcome
	RemoteAddr  string
	CreatedAt   time.Time
}
