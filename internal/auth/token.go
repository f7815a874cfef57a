package auth

import (
	"net/http"
	"strings"
)

const (
	SessionCookie = "session_token"
	StateCookie   = "oauth_state"
)

// ExtractAccessToken returns the session token from the cookie, falling back
// to a bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
