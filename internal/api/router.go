package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"teamgate/internal/domain"
	"teamgate/internal/middleware"
	"teamgate/internal/service/access"
)

// RouterConfig carries the cross-cutting pieces the router needs beyond the
// Handler itself.
type RouterConfig struct {
	Authenticator      *middleware.Authenticator
	Enforcer           *access.Enforcer
	CORSAllowedOrigins []string
	RateLimit          middleware.RateLimitConfig
}

// NewRouter assembles the chi router. /healthz and /v1/auth/login are
// public; everything else under /v1 requires an authenticated principal,
// and administrative resources additionally require management permissions.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimit))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticator.Middleware)

			r.Get("/whoami", h.whoami)

			// Read-only access management surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(cfg.Enforcer,
					domain.PermAccessManagement, domain.PermViewAccessManagement))

				r.Get("/users/{kind}", h.listUsers)
				r.Get("/users/{kind}/{username}", h.getUser)
				r.Get("/users/{kind}/{username}/teams", h.listUserTeams)
				r.Get("/users/{kind}/{username}/permissions", h.listUserPermissions)

				r.Get("/teams", h.listTeams)
				r.Get("/teams/{teamID}", h.getTeam)
				r.Get("/teams/{teamID}/permissions", h.listTeamPermissions)
				r.Get("/teams/{teamID}/directory-mappings", h.listDirectoryMappings)
				r.Get("/teams/{teamID}/oidc-mappings", h.listOidcMappings)

				r.Get("/permissions", h.listPermissions)
				r.Get("/permissions/{permission}", h.getPermission)

				r.Get("/oidc-groups", h.listOidcGroups)

				r.Get("/api-keys", h.listAPIKeys)
				r.Get("/api-keys/{keyID}", h.getAPIKey)
				r.Get("/api-keys/{keyID}/teams", h.listAPIKeyTeams)

				r.Get("/audit", h.listAuditEntries)
			})

			// Mutating access management surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(cfg.Enforcer, domain.PermAccessManagement))

				r.Post("/users/{kind}", h.createUser)
				r.Put("/users/{kind}/{username}", h.updateUser)
				r.Delete("/users/{kind}/{username}", h.deleteUser)
				r.Put("/users/{kind}/{username}/teams/{teamID}", h.addUserToTeam)
				r.Delete("/users/{kind}/{username}/teams/{teamID}", h.removeUserFromTeam)
				r.Put("/users/{kind}/{username}/permissions/{permission}", h.grantUserPermission)
				r.Delete("/users/{kind}/{username}/permissions/{permission}", h.revokeUserPermission)

				r.Post("/teams", h.createTeam)
				r.Put("/teams/{teamID}", h.renameTeam)
				r.Delete("/teams/{teamID}", h.deleteTeam)
				r.Put("/teams/{teamID}/permissions/{permission}", h.grantTeamPermission)
				r.Delete("/teams/{teamID}/permissions/{permission}", h.revokeTeamPermission)
				r.Post("/teams/{teamID}/directory-mappings", h.mapDirectoryGroup)
				r.Post("/teams/{teamID}/oidc-mappings", h.mapOidcGroup)
				r.Delete("/directory-mappings/{mappingID}", h.unmapDirectoryGroup)
				r.Delete("/oidc-mappings/{mappingID}", h.unmapOidcGroup)

				r.Post("/oidc-groups", h.createOidcGroup)
				r.Delete("/oidc-groups/{groupID}", h.deleteOidcGroup)

				r.Post("/api-keys", h.createAPIKey)
				r.Post("/api-keys/{keyID}/regenerate", h.regenerateAPIKey)
				r.Delete("/api-keys/{keyID}", h.deleteAPIKey)
				r.Put("/api-keys/{keyID}/teams/{teamID}", h.addAPIKeyToTeam)
				r.Delete("/api-keys/{keyID}/teams/{teamID}", h.removeAPIKeyFromTeam)
			})

			// Permission definitions are system configuration.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(cfg.Enforcer, domain.PermSystemConfiguration))

				r.Post("/permissions", h.createPermission)
				r.Delete("/permissions/{permission}", h.deletePermission)
			})
		})
	})

	return r
}
