package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/dmitrijs2005/eventdrop/internal/common"
)

// AdminGuard reports whether r carries the admin secret in the x-admin-pass
// header. A missing header, any other value, or an empty configured secret
// all deny.
//
// The secret travels in plain text; deployments should terminate TLS in
// front of the server.
func AdminGuard(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	got := r.Header.Get(common.AdminPasswordHeaderName)
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !AdminGuard(r, a.adminPassword) {
			a.logger.Warn(r.Context(), "admin access denied", "path", r.URL.Path, "remote", r.RemoteAddr)
			a.RespondWithError(w, r, http.StatusUnauthorized, msgAccessDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}
