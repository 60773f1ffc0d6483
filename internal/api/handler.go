// Package api provides the HTTP surface of the access control plane.
package api

import (
	"net/http"
	"strconv"
	"time"

	"teamgate/internal/domain"
	"teamgate/internal/service/access"
)

// Handler holds the service dependencies behind the REST API.
type Handler struct {
	users       *access.UserService
	teams       *access.TeamService
	permissions *access.PermissionService
	mappings    *access.MappingService
	apiKeys     *access.APIKeyService
	evaluator   *access.Evaluator
	signIn      *access.SignInService
	audit       domain.AuditRepository

	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewHandler creates a Handler with all required service dependencies.
func NewHandler(
	users *access.UserService,
	teams *access.TeamService,
	permissions *access.PermissionService,
	mappings *access.MappingService,
	apiKeys *access.APIKeyService,
	evaluator *access.Evaluator,
	signIn *access.SignInService,
	audit domain.AuditRepository,
	jwtSecret []byte,
	tokenTTL time.Duration,
) *Handler {
	return &Handler{
		users:       users,
		teams:       teams,
		permissions: permissions,
		mappings:    mappings,
		apiKeys:     apiKeys,
		evaluator:   evaluator,
		signIn:      signIn,
		audit:       audit,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

// pageFromQuery extracts a PageRequest from max_results/page_token params.
func pageFromQuery(r *http.Request) domain.PageRequest {
	p := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.MaxResults = n
		}
	}
	return p
}

func nextToken(page domain.PageRequest, total int64) string {
	return domain.NextPageToken(page.Offset(), page.Limit(), total)
}

// userResponse is the wire shape of a user; credential fields never leave
// the server.
type userResponse struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	Kind                string `json:"kind"`
	FullName            string `json:"full_name,omitempty"`
	Email               string `json:"email,omitempty"`
	DN                  string `json:"dn,omitempty"`
	SubjectIdentifier   string `json:"subject_identifier,omitempty"`
	ForcePasswordChange bool   `json:"force_password_change,omitempty"`
	Suspended           bool   `json:"suspended,omitempty"`
	CreatedAt           string `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Username:            u.Username,
		Kind:                string(u.Kind),
		FullName:            u.FullName,
		Email:               u.Email,
		DN:                  u.DN,
		SubjectIdentifier:   u.SubjectIdentifier,
		ForcePasswordChange: u.ForcePasswordChange,
		Suspended:           u.Suspended,
		CreatedAt:           u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type teamResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func toTeamResponse(t *domain.Team) teamResponse {
	return teamResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type apiKeyResponse struct {
	ID         string  `json:"id"`
	Comment    string  `json:"comment,omitempty"`
	KeyPrefix  string  `json:"key_prefix"`
	CreatedAt  string  `json:"created_at"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
}

func toAPIKeyResponse(k *domain.APIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:        k.ID,
		Comment:   k.Comment,
		KeyPrefix: k.KeyPrefix,
		CreatedAt: k.CreatedAt.UTC().Format(time.RFC3339),
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.UTC().Format(time.RFC3339)
		resp.LastUsedAt = &s
	}
	return resp
}
