package httpx

import (
	"net/http"
	"strings"
)

// BearerToken returns the credential of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively; anything else, including
// an empty credential, reports false.
func BearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, cred, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	cred = strings.TrimSpace(cred)
	if cred == "" || strings.ContainsAny(cred, " \t") {
		return "", false
	}
	return cred, true
}
