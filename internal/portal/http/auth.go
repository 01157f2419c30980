package http

import (
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/portal/internal/portal/guard"
	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/pkg/authsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Cookie      httpx.CookieConfig
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next,omitempty"`
}

// HandleLogin authenticates with email and password.
//
//	@Summary		Log in
//	@Description	Verifies email and password, sets the session cookie and returns the session token.
//	@Description	Accepts a JSON body or a form-encoded body with the same fields. Browser form posts
//	@Description	(Accept: text/html) are answered with a 303 redirect instead of JSON.
//	@Tags			Auth
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.APIError	"Malformed request"
//	@Failure		401		{object}	authsdk.APIError	"Invalid email or password"
//	@Failure		403		{object}	authsdk.APIError	"Account deactivated"
//	@Failure		429		{object}	authsdk.APIError	"Too many attempts"
//	@Failure		500		{object}	authsdk.APIError	"Internal server error"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	html := wantsHTML(r)

	body, err := readLogin(w, r)
	if err != nil {
		h.fail(w, r, html, body.Next, authsdk.ErrInvalidRequest.WithDescription(err.Error()))
		return
	}

	ctx = service.WithClientAddr(ctx, httpx.IPKeyExtractor(r))
	res, err := h.AuthService.Login(ctx, body.Email, body.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.fail(w, r, html, body.Next, authsdk.ErrInvalidCredentials)
		return
	case errors.Is(err, service.ErrAccountDeactivated):
		h.fail(w, r, html, body.Next, authsdk.ErrAccountDeactivated)
		return
	case err != nil:
		log.Error("login failed", "err", err)
		h.fail(w, r, html, body.Next, authsdk.ErrServerError)
		return
	}

	next := body.Next
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	target := httpx.LocalRedirectTarget(next, res.RedirectTo)

	httpx.SetSessionCookie(w, h.Cookie, res.Token)
	if html {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		User:       toPrincipalResponse(res.Principal),
		Token:      res.Token,
		ExpiresAt:  res.ExpiresAt,
		RedirectTo: target,
	})
}

// fail reports a login error as JSON, or for browser form posts as a
// redirect back to the login page.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, html bool, next string, apiErr *authsdk.APIError) {
	if !html {
		apiErr.WriteError(w)
		return
	}
	q := url.Values{"error": {apiErr.Code}}
	if next = httpx.LocalRedirectTarget(next, ""); next != "" {
		q.Set("next", next)
	}
	http.Redirect(w, r, guard.LoginPath+"?"+q.Encode(), http.StatusSeeOther)
}

// wantsHTML reports a browser form post: not JSON, and HTML accepted.
func wantsHTML(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct != "application/json" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// readLogin accepts a JSON or form-encoded login body.
func readLogin(w http.ResponseWriter, r *http.Request) (loginBody, error) {
	var body loginBody

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := decodeJSON(w, r, &body); err != nil {
			return loginBody{}, errors.New("request body must be a JSON object with email and password")
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return loginBody{}, errors.New("request body could not be parsed")
		}
		body = loginBody{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
			Next:     r.PostForm.Get("next"),
		}
	}

	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		return loginBody{}, errors.New("email and password are required")
	}
	return body, nil
}

// HandleLogout clears the session.
//
//	@Summary		Log out
//	@Description	Clears the session cookie and every auth-looking cookie. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.LogoutResponse
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.AuthService.Logout(ctx, session.ExtractToken(r, h.Cookie.Name)); err != nil {
		slogx.FromContext(ctx).Warn("logout could not revoke session", "err", err)
	}

	cleared := httpx.ClearAuthCookies(w, r, h.Cookie)
	if wantsHTML(r) {
		http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{Success: true, Cleared: cleared})
}

// HandleMe returns the current principal.
//
//	@Summary		Current principal
//	@Description	Returns the principal behind the session cookie or bearer token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.PrincipalResponse
//	@Failure		401	{object}	authsdk.APIError	"Not logged in"
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := session.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthenticated.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPrincipalResponse(*p))
}
