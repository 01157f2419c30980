package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/portal/pkg/jwtx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = tokenx.MustParseSecret("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newCodec(t *testing.T, clock *fakeClock) *jwtx.HS256Codec {
	t.Helper()
	c, err := jwtx.NewHS256Codec(testSecret, jwtx.WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func TestHS256RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	codec := newCodec(t, clock)

	tok, err := codec.Issue("01HZX", "ops@example.com", "admin")
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "01HZX", claims.UserID)
	require.Equal(t, "ops@example.com", claims.Email)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, tokenx.Issuer, claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, clock.t, claims.IssuedAt.Time.UTC())
	require.Equal(t, clock.t.Add(tokenx.TTL), claims.ExpiresAt.Time.UTC())
}

func TestHS256Expiry(t *testing.T) {
	issued := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	codec := newCodec(t, clock)

	tok, err := codec.Issue("u1", "a@b.c", "director")
	require.NoError(t, err)

	t.Run("one second before expiry", func(t *testing.T) {
		clock.t = issued.Add(tokenx.TTL - time.Second)
		_, err := codec.Verify(tok)
		require.NoError(t, err)
	})

	t.Run("one second after expiry", func(t *testing.T) {
		clock.t = issued.Add(tokenx.TTL + time.Second)
		_, err := codec.Verify(tok)
		require.ErrorIs(t, err, tokenx.ErrTokenExpired)
		require.ErrorIs(t, err, tokenx.ErrTokenInvalid)
	})
}

func TestHS256Rejects(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	codec := newCodec(t, clock)

	tok, err := codec.Issue("u1", "a@b.c", "admin")
	require.NoError(t, err)

	other, err := jwtx.NewHS256Codec(tokenx.MustParseSecret(strings.Repeat("z", 32)), jwtx.WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Issue("u1", "a@b.c", "admin")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtx.NewSessionClaims("u1", "a@b.c", "admin", clock.t))
	hs512Tok, err := hs512.SignedString(testSecret.Key())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", parts[0] + "." + parts[1]},
		{"wrong secret", foreign},
		{"alg none", noneHeader + "." + parts[1] + "."},
		{"alg HS512", hs512Tok},
		{"payload swapped", parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(`{"userId":"evil","role":"admin"}`)) + "." + parts[2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			require.ErrorIs(t, err, tokenx.ErrTokenInvalid)
		})
	}
}

func TestHS256IssueValidation(t *testing.T) {
	codec := newCodec(t, &fakeClock{t: time.Now()})

	_, err := codec.Issue("", "a@b.c", "admin")
	require.Error(t, err)

	_, err = codec.Issue("u1", "a@b.c", "owner")
	require.Error(t, err)
}

func TestNewHS256CodecRequiresSecret(t *testing.T) {
	_, err := jwtx.NewHS256Codec(tokenx.Secret{})
	require.ErrorIs(t, err, tokenx.ErrSecretMissing)
}
