package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/idx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

type DivisionService struct {
	Store store.Store
}

// CreateDivision adds a division. Names are unique.
func (s *DivisionService) CreateDivision(ctx context.Context, name string) (domain.Division, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Division{}, fmt.Errorf("%w: division name is required", ErrInvalidInput)
	}

	d := domain.Division{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Divisions().CreateDivision(ctx, d); err != nil {
		return domain.Division{}, err
	}

	slogx.FromContext(ctx).Info("division created", slog.String("division_id", d.ID), slog.String("name", d.Name))
	return d, nil
}

func (s *DivisionService) ListDivisions(ctx context.Context) ([]domain.Division, error) {
	return s.Store.Divisions().ListDivisions(ctx)
}

// ListManagedBy returns the divisions principalID manages.
func (s *DivisionService) ListManagedBy(ctx context.Context, principalID string) ([]domain.Division, error) {
	return s.Store.Divisions().ListDivisionsForPrincipal(ctx, principalID)
}
