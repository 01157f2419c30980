package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/idx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
)

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Principal  domain.Principal
	Token      string
	ExpiresAt  time.Time
	RedirectTo string
}

type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Codec  tokenx.Codec

	// Revocations is optional. When set, Logout denylists the token.
	Revocations store.Revocations

	// ObserveLogin is optional and receives the outcome of every attempt.
	ObserveLogin func(outcome string)

	dummyOnce sync.Once
	dummyHash string
}

type clientAddrKey struct{}

// WithClientAddr records the caller's address for the login audit.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrKey{}, addr)
}

func clientAddr(ctx context.Context) string {
	addr, _ := ctx.Value(clientAddrKey{}).(string)
	return addr
}

// Login verifies email and password and issues a session token.
//
// The order matters: an unknown email and a wrong password both return
// ErrInvalidCredentials after one hash comparison each, while a deactivated
// account is reported as ErrAccountDeactivated before its password is
// checked.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	creds, err := s.Store.Principals().GetPrincipalByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = s.Hasher.Verify(password, s.dummy())
		s.audit(ctx, domain.LoginEvent{Email: email, Outcome: domain.LoginInvalidCredentials})
		l.Info("login failed", slog.String("email", email), slog.String("reason", "unknown email"))
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		s.observe("error")
		return LoginResult{}, fmt.Errorf("lookup principal: %w", err)
	}

	if !creds.IsActive {
		s.audit(ctx, domain.LoginEvent{PrincipalID: creds.ID, Email: email, Outcome: domain.LoginDeactivated})
		l.Info("login refused", slog.String("email", email), slog.String("reason", "deactivated"))
		return LoginResult{}, ErrAccountDeactivated
	}

	if err := s.Hasher.Verify(password, creds.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrUnsupportedHash) {
			l.Error("stored password hash is unusable", slog.String("user_id", creds.ID))
		}
		s.audit(ctx, domain.LoginEvent{PrincipalID: creds.ID, Email: email, Outcome: domain.LoginInvalidCredentials})
		l.Info("login failed", slog.String("email", email), slog.String("reason", "password mismatch"))
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.Codec.Issue(creds.ID, creds.Email, creds.Role.String())
	if err != nil {
		s.observe("error")
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	claims, err := s.Codec.Verify(token)
	if err != nil {
		s.observe("error")
		return LoginResult{}, fmt.Errorf("verify issued token: %w", err)
	}

	if s.Hasher.NeedsRehash(creds.PasswordHash) {
		s.rehash(ctx, creds.ID, password)
	}

	s.audit(ctx, domain.LoginEvent{PrincipalID: creds.ID, Email: email, Outcome: domain.LoginSucceeded})
	l.Info("login succeeded", slog.String("user_id", creds.ID), slog.String("role", creds.Role.String()))

	return LoginResult{
		Principal:  creds.Principal,
		Token:      token,
		ExpiresAt:  claims.ExpiresAt,
		RedirectTo: domain.LandingPath(creds.Role),
	}, nil
}

// Logout denylists token when a denylist is configured. Tokens that no longer
// verify need no revocation and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.Revocations == nil || token == "" {
		return nil
	}
	claims, err := s.Codec.Verify(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := s.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	slogx.FromContext(ctx).Info("session revoked",
		slog.String("user_id", claims.UserID),
		slog.String("token_fp", cryptox.Fingerprint(claims.ID)),
	)
	return nil
}

// dummy is a real hash of a throwaway password, compared against when the
// email is unknown.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash(idx.New().String())
		if err != nil {
			h = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// rehash upgrades a legacy hash after a successful login. Failure only costs
// another upgrade attempt next time.
func (s *AuthService) rehash(ctx context.Context, id, password string) {
	l := slogx.FromContext(ctx)
	h, err := s.Hasher.Hash(password)
	if err != nil {
		l.Warn("failed to rehash password", slog.Any("error", err))
		return
	}
	if err := s.Store.Principals().UpdatePasswordHash(ctx, id, h); err != nil {
		l.Warn("failed to store rehashed password", slog.Any("error", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.String("user_id", id))
}

func (s *AuthService) audit(ctx context.Context, e domain.LoginEvent) {
	s.observe(string(e.Outcome))

	e.ID = idx.New().String()
	e.RemoteAddr = clientAddr(ctx)
	e.CreatedAt = time.Now().UTC()
	if err := s.Store.LoginEvents().RecordLoginEvent(ctx, e); err != nil {
		slogx.FromContext(ctx).Error("failed to record login event", slog.Any("error", err))
	}
}

func (s *AuthService) observe(outcome string) {
	if s.ObserveLogin != nil {
		s.ObserveLogin(outcome)
	}
}
