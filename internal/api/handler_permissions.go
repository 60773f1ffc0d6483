package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"teamgate/internal/domain"
)

type permissionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type createPermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type permissionListResponse struct {
	Permissions   []permissionResponse `json:"permissions"`
	Total         int64                `json:"total"`
	NextPageToken string               `json:"next_page_token,omitempty"`
}

func toPermissionResponses(perms []domain.Permission) []permissionResponse {
	resp := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		resp = append(resp, permissionResponse{Name: p.Name, Description: p.Description})
	}
	return resp
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var body createPermissionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	perm, err := h.permissions.Create(r.Context(), &domain.CreatePermissionRequest{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, permissionResponse{Name: perm.Name, Description: perm.Description})
}

func (h *Handler) getPermission(w http.ResponseWriter, r *http.Request) {
	perm, err := h.permissions.GetByName(r.Context(), chi.URLParam(r, "permission"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, permissionResponse{Name: perm.Name, Description: perm.Description})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	perms, total, err := h.permissions.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := permissionListResponse{Permissions: toPermissionResponses(perms), Total: total}
	resp.NextPageToken = nextToken(page, total)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.permissions.Delete(r.Context(), chi.URLParam(r, "permission")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
