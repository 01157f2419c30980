package httpx

import (
	"net/http"
	"regexp"
	"time"
)

// CookieConfig describes how the session cookie is written.
type CookieConfig struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// SetSessionCookie writes value as an HttpOnly session cookie.
func SetSessionCookie(w http.ResponseWriter, cfg CookieConfig, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     cfg.path(),
		Domain:   cfg.Domain,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Expires:  time.Now().Add(cfg.MaxAge),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// ClearCookie expires the cookie called name with the attributes it was
// written with, so the browser actually drops it.
func ClearCookie(w http.ResponseWriter, cfg CookieConfig, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     cfg.path(),
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

var authCookiePattern = regexp.MustCompile(`(?i)(auth|token|session)`)

// ClearAuthCookies expires the session cookie and every request cookie whose
// name looks auth related. It returns the names it cleared.
func ClearAuthCookies(w http.ResponseWriter, r *http.Request, cfg CookieConfig) []string {
	cleared := []string{cfg.Name}
	ClearCookie(w, cfg, cfg.Name)

	for _, c := range r.Cookies() {
		if c.Name == cfg.Name || !authCookiePattern.MatchString(c.Name) {
			continue
		}
		ClearCookie(w, cfg, c.Name)
		cleared = append(cleared, c.Name)
	}
	return cleared
}

func (cfg CookieConfig) path() string {
	if cfg.Path == "" {
		return "/"
	}
	return cfg.Path
}
