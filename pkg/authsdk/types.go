package authsdk

import "time"

// LoginRequest is the body of POST /api/auth/login. The endpoint also
// accepts the same fields form-encoded.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PrincipalResponse is a portal account as returned by the API. The password
// hash never appears here.
type PrincipalResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	DivisionIDs []string  `json:"division_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoginResponse is returned on successful login alongside the session cookie.
type LoginResponse struct {
	User       PrincipalResponse `json:"user"`
	Token      string            `json:"token"`
	ExpiresAt  time.Time         `json:"expires_at"`
	RedirectTo string            `json:"redirect_to"`
}

// LogoutResponse always reports success.
type LogoutResponse struct {
	Success bool     `json:"success"`
	Cleared []string `json:"cleared"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// CreateDirectorRequest provisions a director account.
type CreateDirectorRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	DivisionIDs []string `json:"division_ids,omitempty"`
}

// CreateDirectorResponse carries the generated one-time password. It is only
// ever returned once.
type CreateDirectorResponse struct {
	Director PrincipalResponse `json:"director"`
	Password string            `json:"password"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type AssignDivisionsRequest struct {
	DivisionIDs []string `json:"division_ids"`
}

type CreateDivisionRequest struct {
	Name string `json:"name"`
}

type DivisionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse wraps list endpoints so they can grow paging fields later.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}
