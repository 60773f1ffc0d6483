package middleware

import (
	"encoding/json"
	"net/http"

	"teamgate/internal/domain"
	"teamgate/internal/service/access"
)

// RequirePermission returns a middleware that lets the request through only
// if the authenticated principal holds at least one of the named
// permissions. Any other outcome, including a missing principal, is a 403.
func RequirePermission(enforcer *access.Enforcer, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal *domain.Principal
			if p, ok := domain.PrincipalFromContext(r.Context()); ok {
				principal = &p
			}
			if enforcer.Authorize(r.Context(), principal, permissions) != access.Allow {
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusForbidden,
		"message": "forbidden: insufficient permissions",
	})
}
