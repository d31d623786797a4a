package auth

import (
	"net/http"

	"github.com/matribhumi/matribhumi-admin/internal/shared"
)

// RequireSession redirects requests without a signed-in session to the login
// screen. It assumes the session loader middleware already ran.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || !sess.SignedIn() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
