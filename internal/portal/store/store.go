package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so that transactions cannot be nested by accident.
// Every read goes to the database; there is no caching layer.
type Store interface {
	Principals() Principals
	Divisions() Divisions
	LoginEvents() LoginEvents

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped view of the repositories.
type Tx interface {
	Principals() Principals
	Divisions() Divisions
	LoginEvents() LoginEvents
}

type Principals interface {
	// GetPrincipalByID returns the principal without its password hash,
	// including the divisions it manages, in a single query.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByEmail is used by login and includes the password hash.
	// email must already be normalized.
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Credentials, error)

	// CreatePrincipal inserts a new principal. Duplicate emails report
	// ErrAlreadyExists.
	CreatePrincipal(ctx context.Context, c domain.Credentials) error

	// ListPrincipalsByRole returns principals of role ordered by email.
	ListPrincipalsByRole(ctx context.Context, role domain.Role) ([]domain.Principal, error)

	// SetActive flips the active flag and bumps updated_at.
	SetActive(ctx context.Context, id string, active bool) error

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id string, hash string) error

	// SetDivisions replaces the set of divisions a principal manages.
	SetDivisions(ctx context.Context, id string, divisionIDs []string) error

	// CountByRole returns how many principals hold role.
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

type Divisions interface {
	// CreateDivision inserts a division. Duplicate names report
	// ErrAlreadyExists.
	CreateDivision(ctx context.Context, d domain.Division) error

	GetDivisionByID(ctx context.Context, id string) (domain.Division, error)

	// ListDivisions returns all divisions ordered by name.
	ListDivisions(ctx context.Context) ([]domain.Division, error)

	// ListDivisionsForPrincipal returns the divisions a principal manages.
	ListDivisionsForPrincipal(ctx context.Context, principalID string) ([]domain.Division, error)
}

type LoginEvents interface {
	RecordLoginEvent(ctx context.Context, e domain.LoginEvent) error

	// ListRecentLoginEvents returns the newest events first.
	ListRecentLoginEvents(ctx context.Context, limit int) ([]domain.LoginEvent, error)

	// DeleteLoginEventsBefore is housekeeping; it returns the number of rows
	// removed.
	DeleteLoginEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Revocations is the optional session-token denylist, keyed by the token's
// jti. Entries only need to live until the token would have expired anyway.
type Revocations interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
