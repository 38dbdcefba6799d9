package middleware

import (
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

// RequireRole lets a request through only when the caller's token carries
// one of roles. It must run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !lo.Contains(roles, claims.Role) {
				slog.Warn("role check failed", "email", claims.Email, "role", claims.Role, "path", r.URL.Path)
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
