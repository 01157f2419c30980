package session_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/internal/portal/store/drivers/sqlite"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/idx"
	"github.com/aussiebroadwan/portal/pkg/jwtx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

const cookieName = "portal_session"

var testSecret = tokenx.MustParseSecret("session-test-secret-0123456789abcdef")

// countingReader counts principal reads so the single-read guarantee can be
// asserted.
type countingReader struct {
	session.PrincipalReader
	calls int
}

func (c *countingReader) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	c.calls++
	return c.PrincipalReader.GetPrincipalByID(ctx, id)
}

type failingReader struct{ err error }

func (f failingReader) GetPrincipalByID(context.Context, string) (domain.Principal, error) {
	return domain.Principal{}, f.err
}

type memRevocations struct {
	revoked map[string]bool
	err     error
}

func (m *memRevocations) Revoke(_ context.Context, jti string, _ time.Time) error {
	m.revoked[jti] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], m.err
}

type fixture struct {
	store  *sqlite.Store
	reader *countingReader
	codec  tokenx.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	codec, err := jwtx.NewCodec(testSecret)
	require.NoError(t, err)

	return &fixture{
		store:  s,
		reader: &countingReader{PrincipalReader: s.Principals()},
		codec:  codec,
	}
}

func (f *fixture) principal(t *testing.T, role domain.Role) domain.Principal {
	t.Helper()
	p := domain.Principal{
		ID:       idx.New().String(),
		Email:    string(role) + "@institute.edu",
		Name:     "Test",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, f.store.Principals().CreatePrincipal(context.Background(),
		domain.Credentials{Principal: p, PasswordHash: "x"}))
	return p
}

func (f *fixture) token(t *testing.T, p domain.Principal) string {
	t.Helper()
	tok, err := f.codec.Issue(p.ID, p.Email, p.Role.String())
	require.NoError(t, err)
	return tok
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"nothing", "", "", ""},
		{"cookie only", "", "from-cookie", "from-cookie"},
		{"bearer only", "Bearer from-header", "", "from-header"},
		{"bearer wins over cookie", "Bearer from-header", "from-cookie", "from-header"},
		{"lowercase scheme", "bearer from-header", "", "from-header"},
		{"malformed header falls back to cookie", "Basic abc", "from-cookie", "from-cookie"},
		{"empty bearer falls back to cookie", "Bearer ", "from-cookie", "from-cookie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: cookieName, Value: tt.cookie})
			}
			require.Equal(t, tt.want, session.ExtractToken(r, cookieName))
		})
	}
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resolver := session.NewResolver(f.reader, f.codec, nil)
	director := f.principal(t, domain.RoleDirector)

	t.Run("valid token", func(t *testing.T) {
		f.reader.calls = 0
		p, err := resolver.CurrentUser(ctx, f.token(t, director))
		require.NoError(t, err)
		require.NotNil(t, p)
		require.Equal(t, director.ID, p.ID)
		require.Equal(t, domain.RoleDirector, p.Role)
		require.Equal(t, 1, f.reader.calls)
	})

	t.Run("no token is anonymous without a read", func(t *testing.T) {
		f.reader.calls = 0
		p, err := resolver.CurrentUser(ctx, "")
		require.NoError(t, err)
		require.Nil(t, p)
		require.Zero(t, f.reader.calls)
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		f.reader.calls = 0
		p, err := resolver.CurrentUser(ctx, "not.a.token")
		require.NoError(t, err)
		require.Nil(t, p)
		require.Zero(t, f.reader.calls)
	})

	t.Run("unknown principal is anonymous", func(t *testing.T) {
		ghost := domain.Principal{ID: idx.New().String(), Email: "ghost@institute.edu", Role: domain.RoleAdmin}
		p, err := resolver.CurrentUser(ctx, f.token(t, ghost))
		require.NoError(t, err)
		require.Nil(t, p)
	})

	t.Run("token carried on context", func(t *testing.T) {
		p, err := resolver.CurrentUser(session.WithToken(ctx, f.token(t, director)), "")
		require.NoError(t, err)
		require.NotNil(t, p)
		require.Equal(t, director.ID, p.ID)
	})
}

func TestCurrentUserDeactivationIsLive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resolver := session.NewResolver(f.reader, f.codec, nil)
	p := f.principal(t, domain.RoleInternalAuditor)
	tok := f.token(t, p)

	got, err := resolver.CurrentUser(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, f.store.Principals().SetActive(ctx, p.ID, false))

	f.reader.calls = 0
	got, err = resolver.CurrentUser(ctx, tok)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, 1, f.reader.calls)

	require.NoError(t, f.store.Principals().SetActive(ctx, p.ID, true))
	got, err = resolver.CurrentUser(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCurrentUserStorageFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk on fire")
	resolver := session.NewResolver(failingReader{err: boom}, f.codec, nil)

	tok, err := f.codec.Issue(idx.New().String(), "a@institute.edu", "admin")
	require.NoError(t, err)

	p, err := resolver.CurrentUser(context.Background(), tok)
	require.ErrorIs(t, err, boom)
	require.Nil(t, p)
}

func TestCurrentUserRevocations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.principal(t, domain.RoleAdmin)
	tok := f.token(t, p)

	claims, err := f.codec.Verify(tok)
	require.NoError(t, err)

	rev := &memRevocations{revoked: map[string]bool{}}
	resolver := session.NewResolver(f.reader, f.codec, rev)

	got, err := resolver.CurrentUser(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, rev.Revoke(ctx, claims.ID, claims.ExpiresAt))
	f.reader.calls = 0
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	got, err = resolver.CurrentUser(slogx.WithContext(ctx, logger), tok)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Zero(t, f.reader.calls)
	require.Contains(t, logs.String(), `"token_fp":"`+cryptox.Fingerprint(claims.ID)+`"`)
	require.NotContains(t, logs.String(), claims.ID)

	rev.err = errors.New("redis down")
	_, err = resolver.CurrentUser(ctx, tok)
	require.Error(t, err)
}

func TestRequirePrincipal(t *testing.T) {
	f := newFixture(t)
	resolver := session.NewResolver(f.reader, f.codec, nil)
	admin := f.principal(t, domain.RoleAdmin)
	director := f.principal(t, domain.RoleDirector)

	h := session.Carry(cookieName)(resolver.RequirePrincipal(domain.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := session.PrincipalFromContext(r.Context())
			require.True(t, ok)
			_, _ = w.Write([]byte(p.ID))
		}),
	))

	tests := []struct {
		name     string
		token    string
		wantCode int
		wantBody string
	}{
		{"anonymous", "", http.StatusUnauthorized, "unauthenticated"},
		{"garbage token", "garbage", http.StatusUnauthorized, "unauthenticated"},
		{"wrong role", f.token(t, director), http.StatusForbidden, "forbidden"},
		{"admin", f.token(t, admin), http.StatusOK, admin.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/admin/directors", nil)
			if tt.token != "" {
				r.AddCookie(&http.Cookie{Name: cookieName, Value: tt.token})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			require.Equal(t, tt.wantCode, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
