package auth

import (
	"net/http"
	"strings"
)

// RequireAdmin gates catalog management (game creation) on the admin role.
// It must sit behind RequireUser, which is what puts the role in context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := RoleFromContext(r.Context())
		if strings.ToLower(strings.TrimSpace(role)) != "admin" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
