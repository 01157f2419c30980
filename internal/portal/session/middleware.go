package session

import (
	"context"
	"net/http"
	"slices"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/pkg/authsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

type principalKey struct{}

// PrincipalFromContext returns the principal stored by RequirePrincipal.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domain.Principal)
	return p, ok && p != nil
}

// RequirePrincipal resolves the caller and rejects the request with 401 when
// anonymous, or 403 when its role is not one of roles. No roles means any
// authenticated principal. The resolved principal is stored on the request
// context.
func (r *Resolver) RequirePrincipal(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			p, err := r.CurrentUser(ctx, "")
			if err != nil {
				slogx.FromContext(ctx).Error("resolve session principal", "err", err)
				authsdk.ErrServerError.WriteError(w)
				return
			}
			if p == nil {
				authsdk.ErrUnauthenticated.WriteError(w)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, p.Role) {
				authsdk.ErrForbidden.WriteError(w)
				return
			}

			ctx = context.WithValue(ctx, principalKey{}, p)
			ctx = httpx.WithIdentity(ctx, p.ID, p.Role.String())
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("user_id", p.ID))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
