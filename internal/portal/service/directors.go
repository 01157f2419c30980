package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// DirectorService is the administrator's view of director accounts.
type DirectorService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// CreateDirector provisions an active director managing divisionIDs and
// returns the generated one-time password.
func (s *DirectorService) CreateDirector(ctx context.Context, email, name string, divisionIDs []string) (domain.Principal, string, error) {
	return createPrincipal(ctx, s.Store, s.Hasher, NewAccount{
		Email:       email,
		Name:        name,
		Role:        domain.RoleDirector,
		DivisionIDs: divisionIDs,
	})
}

func (s *DirectorService) ListDirectors(ctx context.Context) ([]domain.Principal, error) {
	return s.Store.Principals().ListPrincipalsByRole(ctx, domain.RoleDirector)
}

// SetActive flips a director's active flag. A deactivated director's
// existing sessions stop resolving on their next request.
func (s *DirectorService) SetActive(ctx context.Context, id string, active bool) (domain.Principal, error) {
	var out domain.Principal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := requireDirector(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Principals().SetActive(ctx, id, active); err != nil {
			return err
		}
		var err error
		out, err = tx.Principals().GetPrincipalByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Principal{}, err
	}

	slogx.FromContext(ctx).Info("director active flag changed",
		slog.String("director_id", id), slog.Bool("active", active))
	return out, nil
}

// AssignDivisions replaces the divisions a director manages.
func (s *DirectorService) AssignDivisions(ctx context.Context, id string, divisionIDs []string) (domain.Principal, error) {
	var out domain.Principal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := requireDirector(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Principals().SetDivisions(ctx, id, divisionIDs); err != nil {
			return unknownDivision(err)
		}
		var err error
		out, err = tx.Principals().GetPrincipalByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Principal{}, err
	}

	slogx.FromContext(ctx).Info("director divisions assigned",
		slog.String("director_id", id), slog.Int("divisions", len(out.DivisionIDs)))
	return out, nil
}

func requireDirector(ctx context.Context, tx store.Tx, id string) error {
	p, err := tx.Principals().GetPrincipalByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Role != domain.RoleDirector {
		return ErrNotDirector
	}
	return nil
}

// unknownDivision turns a dangling division reference into an input error.
// The store reports broken foreign keys as ErrNotFound.
func unknownDivision(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: unknown division", ErrInvalidInput)
	}
	return err
}
