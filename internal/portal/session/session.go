// Package session resolves the caller of a request to a live principal.
//
// A request carries its session token either as an Authorization: Bearer
// header or as the session cookie. Resolution always verifies the token and
// then reads the principal from storage, so deactivating an account takes
// effect on the very next request.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
)

// PrincipalReader is the one storage read the resolver performs.
type PrincipalReader interface {
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)
}

// ExtractToken returns the bearer credential when the Authorization header is
// present and well formed, otherwise the value of the named cookie, otherwise
// "".
func ExtractToken(r *http.Request, cookieName string) string {
	if tok, ok := httpx.BearerToken(r); ok {
		return tok
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

type tokenKey struct{}

// WithToken stores the ambient request token on ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken, or "".
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Carry extracts the request token once and makes it available to
// Resolver.CurrentUser through the request context.
func Carry(cookieName string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := ExtractToken(r, cookieName); tok != "" {
				r = r.WithContext(WithToken(r.Context(), tok))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Resolver turns a session token into the current principal.
type Resolver struct {
	principals  PrincipalReader
	codec       tokenx.Codec
	revocations store.Revocations
}

// NewResolver builds a resolver. revocations may be nil when no denylist is
// configured.
func NewResolver(principals PrincipalReader, codec tokenx.Codec, revocations store.Revocations) *Resolver {
	return &Resolver{principals: principals, codec: codec, revocations: revocations}
}

// CurrentUser returns the principal behind token. An empty token falls back to
// the one carried on ctx.
//
// A nil principal with a nil error means anonymous: no token, an invalid or
// expired token, a revoked token, an unknown principal or a deactivated one.
// Errors are only returned when storage or the denylist fails.
func (r *Resolver) CurrentUser(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		token = TokenFromContext(ctx)
	}
	if token == "" {
		return nil, nil
	}

	log := slogx.FromContext(ctx)

	claims, err := r.codec.Verify(token)
	if err != nil {
		log.Debug("session token rejected", "err", err)
		return nil, nil
	}

	if r.revocations != nil && claims.ID != "" {
		revoked, err := r.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			log.Debug("session token revoked", "user_id", claims.UserID, "token_fp", cryptox.Fingerprint(claims.ID))
			return nil, nil
		}
	}

	p, err := r.principals.GetPrincipalByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug("session principal not found", "user_id", claims.UserID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !p.IsActive {
		log.Debug("session principal deactivated", "user_id", p.ID)
		return nil, nil
	}
	return &p, nil
}
