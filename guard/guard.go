// Package guard decides which pages a visitor may see based only on whether
// they carry an access credential. The credential is never validated here;
// an expired one is found by the first API call.
package guard

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/evangelism-tracker/sessions"
)

const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
)

// Decide returns where to redirect, or "" to let the request through.
func Decide(path string, hasCredential bool) string {
	if isProtected(path) && !hasCredential {
		return RouteLogin
	}
	if hasCredential && (path == RouteLogin || path == RouteRegister) {
		return RouteDashboard
	}
	return ""
}

func isProtected(path string) bool {
	return path == RouteDashboard || strings.HasPrefix(path, RouteDashboard+"/")
}

// Credential reads the access credential from the accessToken cookie, or
// failing that from a bearer Authorization header.
func Credential(r *http.Request) string {
	if c, err := r.Cookie(sessions.AccessTokenKey); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Middleware redirects with 307 according to Decide.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if to := Decide(r.URL.Path, Credential(r) != ""); to != "" {
			http.Redirect(w, r, to, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}
