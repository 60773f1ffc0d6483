package api

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"teamgate/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token               string `json:"token"`
	ExpiresAt           string `json:"expires_at"`
	ForcePasswordChange bool   `json:"force_password_change,omitempty"`
}

type whoamiResponse struct {
	Kind        string               `json:"kind"`
	Name        string               `json:"name"`
	Permissions []permissionResponse `json:"permissions"`
}

// login validates a managed user's password and issues a short-lived HS256
// session token. Invalid credentials and unknown users produce the same
// forbidden response.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.users.ValidateCredentials(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	expiresAt := time.Now().Add(h.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":                user.Username,
		"preferred_username": user.Username,
		"email":              user.Email,
		"iat":                jwt.NewNumericDate(time.Now()),
		"exp":                jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:               signed,
		ExpiresAt:           expiresAt.UTC().Format(time.RFC3339),
		ForcePasswordChange: user.ForcePasswordChange,
	})
}

// whoami reports the authenticated principal and its effective permission
// set. Available to any authenticated principal without further checks.
func (h *Handler) whoami(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrAccessDenied("not authenticated"))
		return
	}

	var perms []domain.Permission
	var err error
	if principal.Kind == domain.KindAPIKey {
		perms, err = h.evaluator.EffectiveAPIKeyPermissions(r.Context(), principal.ID)
	} else {
		var user *domain.User
		user, err = h.users.GetByUsername(r.Context(), principal.Kind, principal.Name)
		if err == nil {
			perms, err = h.evaluator.EffectivePermissions(r.Context(), user)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, whoamiResponse{
		Kind:        string(principal.Kind),
		Name:        principal.Name,
		Permissions: toPermissionResponses(perms),
	})
}
