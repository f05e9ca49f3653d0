package auth

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the cookie the web dashboard stores the session JWT in.
const AccessTokenCookie = "access_token"

// ExtractAccessToken returns the bearer token of a request, or "" when none.
// The cookie wins over the Authorization header; a websocket upgrade may also
// carry it as ?token= because browsers cannot set headers on that handshake.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}

	return ""
}
