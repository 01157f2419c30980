package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/idx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// NewAccount describes a principal to provision.
type NewAccount struct {
	Email       string
	Name        string
	Role        domain.Role
	Password    string // generated when empty
	DivisionIDs []string
}

// AccountService provisions principals outside the director workflow, e.g.
// the first administrator from the command line.
type AccountService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// CreateAccount creates an active principal and returns it together with the
// plaintext password, which is the generated one when none was supplied.
// Duplicate emails report store.ErrAlreadyExists.
func (s *AccountService) CreateAccount(ctx context.Context, a NewAccount) (domain.Principal, string, error) {
	return createPrincipal(ctx, s.Store, s.Hasher, a)
}

func createPrincipal(ctx context.Context, st store.Store, hasher *cryptox.Hasher, a NewAccount) (domain.Principal, string, error) {
	l := slogx.FromContext(ctx)

	email := domain.NormalizeEmail(a.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.Principal{}, "", fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, a.Email)
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return domain.Principal{}, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !a.Role.Valid() {
		return domain.Principal{}, "", fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrUnknownRole)
	}

	password := a.Password
	if password == "" {
		var err error
		if password, err = cryptox.GeneratePassword(); err != nil {
			return domain.Principal{}, "", fmt.Errorf("generate password: %w", err)
		}
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return domain.Principal{}, "", fmt.Errorf("hash password: %w", err)
	}

	creds := domain.Credentials{
		Principal: domain.Principal{
			ID:          idx.New().String(),
			Email:       email,
			Name:        name,
			Role:        a.Role,
			IsActive:    true,
			DivisionIDs: a.DivisionIDs,
		},
		PasswordHash: hash,
	}

	var created domain.Principal
	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().CreatePrincipal(ctx, creds); err != nil {
			return err
		}
		created, err = tx.Principals().GetPrincipalByID(ctx, creds.ID)
		return err
	})
	if err != nil {
		return domain.Principal{}, "", unknownDivision(err)
	}

	l.Info("principal created",
		slog.String("user_id", created.ID),
		slog.String("email", created.Email),
		slog.String("role", created.Role.String()))
	return created, password, nil
}
