package auth

import (
	"net/http"
	"strings"

	pkghttp "github.com/pupped/storefront/pkg/http"
)

const (
	// AdminPathPrefix marks the protected area of the site
	AdminPathPrefix = "/admin"
	// LoginPath is the only admin page reachable without a session
	LoginPath = "/admin/login"
)

// SessionChecker reports whether a request carries an admin session
type SessionChecker interface {
	IsAuthenticated(r *http.Request) bool
}

// RequiresAdmin reports whether the auth gate protects the given path.
// Matching is a plain prefix test, so "/administrator" is protected too.
func RequiresAdmin(path string) bool {
	return strings.HasPrefix(path, AdminPathPrefix) && path != LoginPath
}

// Gate runs ahead of every request. Protected pages without an admin
// session are redirected to the login page; everything else passes.
func Gate(sessions SessionChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RequiresAdmin(r.URL.Path) && !sessions.IsAuthenticated(r) {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards admin API routes, answering 401 JSON instead of a redirect
func RequireAdmin(sessions SessionChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAuthenticated(r) {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
