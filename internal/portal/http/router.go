package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/guard"
	"github.com/aussiebroadwan/portal/internal/portal/obs"
	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"

	_ "github.com/aussiebroadwan/portal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	resolver *session.Resolver
	guard    *guard.Guard
	metrics  *obs.Metrics
	cookie   httpx.CookieConfig

	// ReadyChecks are extra named dependencies reported by /readyz, e.g.
	// the revocation denylist.
	ReadyChecks map[string]ReadyCheck

	LoginLimit httpx.RateLimitConfig
	AdminLimit httpx.RateLimitConfig

	// TrustedProxies may set X-Forwarded-For. Empty means the TCP peer is
	// the client.
	TrustedProxies httpx.TrustedProxies

	AuthService     *service.AuthService
	DirectorService *service.DirectorService
	DivisionService *service.DivisionService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	resolver *session.Resolver,
	g *guard.Guard,
	metrics *obs.Metrics,
	cookie httpx.CookieConfig,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		resolver:     resolver,
		guard:        g,
		metrics:      metrics,
		cookie:       cookie,
		ReadyChecks:  map[string]ReadyCheck{},
		LoginLimit:   httpx.LoginLimit,
		AdminLimit:   httpx.AdminLimit,
	}

	// Instrument must sit directly on the mux to see the matched pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.clientIP,
		r.metrics.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerDirector()
	r.registerSystem()
	r.registerPages()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Training Institute Portal API
//	@version		0.1.0
//	@description	Authentication and administration API of the training institute portal.
//	@description
//	@description				Sessions are HS256 signed tokens, carried as the session cookie or as a bearer token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/portal
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) clientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		httpx.ClientIPMiddleware(r.TrustedProxies)(next).ServeHTTP(w, req)
	})
}

// authenticated resolves the caller and limits requests per principal.
func (r *Router) authenticated(h http.Handler, limit httpx.RateLimitConfig, roles ...domain.Role) http.Handler {
	return httpx.Chain(h,
		session.Carry(r.cookie.Name),
		r.resolver.RequirePrincipal(roles...),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Cookie:      r.cookie,
	}

	// POST /login - limited by IP + email to slow down credential guessing
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndField(r.LoginLimit, "email"),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.AdminLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/me", r.authenticated(http.HandlerFunc(h.HandleMe), r.AdminLimit))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{
		DirectorService: r.DirectorService,
		DivisionService: r.DivisionService,
	}

	admin := func(f http.HandlerFunc) http.Handler {
		return r.authenticated(f, r.AdminLimit, domain.RoleAdmin)
	}

	r.Mux.Handle("POST /api/admin/directors", admin(h.HandleCreateDirector))
	r.Mux.Handle("GET /api/admin/directors", admin(h.HandleListDirectors))
	r.Mux.Handle("PUT /api/admin/directors/{id}/active", admin(h.HandleSetActive))
	r.Mux.Handle("PUT /api/admin/directors/{id}/divisions", admin(h.HandleAssignDivisions))
	r.Mux.Handle("POST /api/admin/divisions", admin(h.HandleCreateDivision))
	r.Mux.Handle("GET /api/admin/divisions", admin(h.HandleListDivisions))
}

func (r *Router) registerDirector() {
	h := &AdminHandler{DivisionService: r.DivisionService}
	r.Mux.Handle("GET /api/director/divisions",
		r.authenticated(http.HandlerFunc(h.HandleMyDivisions), r.AdminLimit, domain.RoleDirector))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.ReadyChecks))
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}

// registerPages mounts the page routes behind the route guard. Everything the
// mux does not match more specifically lands here.
func (r *Router) registerPages() {
	pages := &PageHandler{Resolver: r.resolver}
	r.Mux.Handle("/", httpx.Chain(pages.Mux(),
		r.guard.Middleware(),
		session.Carry(r.cookie.Name),
	))
}
