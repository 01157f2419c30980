package guard

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Guard applies a Policy to page requests.
type Guard struct {
	policy    *Policy
	verifier  tokenx.Codec
	cookie    httpx.CookieConfig
	decisions *prometheus.CounterVec
}

type Option func(*Guard)

// WithDecisionCounter counts decisions by outcome. The vector must have the
// label "outcome".
func WithDecisionCounter(c *prometheus.CounterVec) Option {
	return func(g *Guard) { g.decisions = c }
}

func New(policy *Policy, verifier tokenx.Codec, cookie httpx.CookieConfig, opts ...Option) *Guard {
	g := &Guard{policy: policy, verifier: verifier, cookie: cookie}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware enforces the policy. Only the session cookie is consulted.
func (g *Guard) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(g.cookie.Name); err == nil {
				token = c.Value
			}

			d := g.policy.Evaluate(r.URL.Path, token, g.verifier)
			if g.decisions != nil {
				g.decisions.WithLabelValues(d.Outcome.String()).Inc()
			}

			if d.ClearCookie {
				httpx.ClearCookie(w, g.cookie, g.cookie.Name)
			}

			switch d.Outcome {
			case Allow:
				next.ServeHTTP(w, r)
			case RedirectLogin:
				slogx.FromContext(r.Context()).Debug("guard redirect to login", "path", r.URL.Path, "rule", d.Rule)
				target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
			default:
				slogx.FromContext(r.Context()).Debug("guard redirect to unauthorized", "path", r.URL.Path, "rule", d.Rule)
				http.Redirect(w, r, UnauthorizedPath, http.StatusFound)
			}
		})
	}
}
