package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"teamgate/internal/domain"
	"teamgate/internal/service/access"
)

// Authenticator resolves the principal behind each request. Bearer tokens
// are tried against the local HS256 validator first (managed-user sessions),
// then against the OIDC validator, which also runs the JIT provisioning and
// team sync workflow. API keys are resolved by hash.
type Authenticator struct {
	local  TokenValidator
	oidc   TokenValidator
	signIn *access.SignInService
	keys   *access.APIKeyService
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator. Either validator may be nil
// when that authentication method is disabled.
func NewAuthenticator(local, oidc TokenValidator, signIn *access.SignInService, keys *access.APIKeyService, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		local:  local,
		oidc:   oidc,
		signIn: signIn,
		keys:   keys,
		logger: logger.With("component", "auth"),
	}
}

// Middleware authenticates the request and stores the resolved principal in
// the context. Requests that authenticate by no method get a 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			if principal, ok := a.resolveBearer(r, token); ok {
				next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), principal)))
				return
			}
		}

		if rawKey := r.Header.Get("X-API-Key"); rawKey != "" && a.keys != nil {
			key, err := a.keys.Authenticate(r.Context(), rawKey)
			if err == nil {
				principal := domain.Principal{
					Kind: domain.KindAPIKey,
					ID:   key.ID,
					Name: key.KeyPrefix,
				}
				next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), principal)))
				return
			}
			var nferr *domain.NotFoundError
			if !errors.As(err, &nferr) {
				a.logger.Warn("api key lookup failed", "error", err)
			}
		}

		writeUnauthorized(w)
	})
}

func (a *Authenticator) resolveBearer(r *http.Request, token string) (domain.Principal, bool) {
	if a.local != nil {
		if claims, err := a.local.Validate(r.Context(), token); err == nil && claims.Username != "" {
			return domain.Principal{
				Kind: domain.KindManaged,
				Name: claims.Username,
			}, true
		}
	}

	if a.oidc != nil {
		claims, err := a.oidc.Validate(r.Context(), token)
		if err != nil || claims.Username == "" {
			return domain.Principal{}, false
		}
		user, err := a.signIn.OidcSignIn(r.Context(), claims.Username, claims.Subject, claims.Email, claims.Groups)
		if err != nil {
			a.logger.Warn("oidc sign-in failed", "username", claims.Username, "error", err)
			return domain.Principal{}, false
		}
		return domain.Principal{
			Kind: domain.KindOidc,
			ID:   user.ID,
			Name: user.Username,
		}, true
	}

	return domain.Principal{}, false
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": "unauthorized: provide a valid bearer token or API key",
	})
}
