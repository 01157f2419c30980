package http

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/guard"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

var pageTemplates = template.Must(template.New("layout").Parse(`
{{define "head"}}<!doctype html><html lang="en"><head><meta charset="utf-8"><title>{{.Title}} | Portal</title></head><body>{{end}}
{{define "foot"}}</body></html>{{end}}

{{define "index"}}{{template "head" .}}
<h1>Training Institute Portal</h1>
<p><a href="/login">Sign in</a></p>
{{template "foot" .}}{{end}}

{{define "login"}}{{template "head" .}}
<h1>Sign in</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<form method="post" action="/api/auth/login">
  <input type="hidden" name="next" value="{{.Next}}">
  <label>Email <input type="email" name="email" autocomplete="username" required></label>
  <label>Password <input type="password" name="password" autocomplete="current-password" required></label>
  <button type="submit">Sign in</button>
</form>
{{template "foot" .}}{{end}}

{{define "unauthorized"}}{{template "head" .}}
<h1>Not allowed</h1>
<p>Your role does not give access to that page.</p>
<form method="post" action="/api/auth/logout"><button type="submit">Sign out</button></form>
{{template "foot" .}}{{end}}

{{define "dashboard"}}{{template "head" .}}
<h1>{{.Title}}</h1>
<p>Signed in as {{.Principal.Name}} ({{.Principal.Email}})</p>
<form method="post" action="/api/auth/logout"><button type="submit">Sign out</button></form>
{{template "foot" .}}{{end}}
`))

var loginErrors = map[string]string{
	"invalid_credentials": "Invalid email or password.",
	"account_deactivated": "This account has been deactivated. Contact an administrator.",
	"invalid_request":     "Enter your email and password.",
}

type pageData struct {
	Title     string
	Error     string
	Next      string
	Principal *domain.Principal
}

// PageHandler serves the page routes. The pages themselves are placeholders
// for the portal front end; what matters here is that protected areas
// re-resolve the caller, which the guard alone cannot do.
type PageHandler struct {
	Resolver *session.Resolver
}

func (h *PageHandler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.render("index", "Welcome", http.StatusOK))
	mux.HandleFunc("GET "+guard.LoginPath, h.handleLogin)
	mux.HandleFunc("GET "+guard.UnauthorizedPath, h.render("unauthorized", "Not allowed", http.StatusForbidden))
	mux.HandleFunc("GET /admin/", h.dashboard(domain.RoleAdmin, "Administration"))
	mux.HandleFunc("GET /director/", h.dashboard(domain.RoleDirector, "Director dashboard"))
	mux.HandleFunc("GET /internal-auditor/", h.dashboard(domain.RoleInternalAuditor, "Internal audit"))
	return mux
}

func (h *PageHandler) render(name, title string, code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePage(w, r, code, name, pageData{Title: title})
	}
}

func (h *PageHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writePage(w, r, http.StatusOK, "login", pageData{
		Title: "Sign in",
		Error: loginErrors[q.Get("error")],
		Next:  httpx.LocalRedirectTarget(q.Get("next"), ""),
	})
}

// dashboard re-resolves the caller so a deactivated principal holding a
// still-valid token is sent back to the login page.
func (h *PageHandler) dashboard(role domain.Role, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.Resolver.CurrentUser(r.Context(), "")
		if err != nil {
			slogx.FromContext(r.Context()).Error("resolve page principal", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.Redirect(w, r, guard.LoginPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		if p.Role != role {
			http.Redirect(w, r, guard.UnauthorizedPath, http.StatusFound)
			return
		}
		writePage(w, r, http.StatusOK, "dashboard", pageData{Title: title, Principal: p})
	}
}

func writePage(w http.ResponseWriter, r *http.Request, code int, name string, data pageData) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		slogx.FromContext(r.Context()).Error("render page", "page", name, "err", err)
	}
}
