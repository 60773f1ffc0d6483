package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"teamgate/internal/domain"
)

type createDirectoryMappingRequest struct {
	DN string `json:"dn"`
}

type directoryMappingResponse struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
	DN     string `json:"dn"`
}

type createOidcGroupRequest struct {
	Name string `json:"name"`
}

type oidcGroupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type oidcGroupListResponse struct {
	Groups        []oidcGroupResponse `json:"groups"`
	Total         int64               `json:"total"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

type createOidcMappingRequest struct {
	GroupID string `json:"group_id"`
}

type oidcMappingResponse struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
}

func (h *Handler) mapDirectoryGroup(w http.ResponseWriter, r *http.Request) {
	var body createDirectoryMappingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.mappings.MapDirectoryGroup(r.Context(), &domain.CreateDirectoryMappingRequest{
		TeamID: chi.URLParam(r, "teamID"),
		DN:     body.DN,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, directoryMappingResponse{ID: m.ID, TeamID: m.TeamID, DN: m.DN})
}

func (h *Handler) listDirectoryMappings(w http.ResponseWriter, r *http.Request) {
	ms, err := h.mappings.DirectoryMappingsForTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]directoryMappingResponse, 0, len(ms))
	for _, m := range ms {
		resp = append(resp, directoryMappingResponse{ID: m.ID, TeamID: m.TeamID, DN: m.DN})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) unmapDirectoryGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.mappings.UnmapDirectoryGroup(r.Context(), chi.URLParam(r, "mappingID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createOidcGroup(w http.ResponseWriter, r *http.Request) {
	var body createOidcGroupRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	g, err := h.mappings.CreateOidcGroup(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, oidcGroupResponse{ID: g.ID, Name: g.Name})
}

func (h *Handler) listOidcGroups(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	groups, total, err := h.mappings.ListOidcGroups(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := oidcGroupListResponse{Groups: make([]oidcGroupResponse, 0, len(groups)), Total: total}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, oidcGroupResponse{ID: g.ID, Name: g.Name})
	}
	resp.NextPageToken = nextToken(page, total)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteOidcGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.mappings.DeleteOidcGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapOidcGroup(w http.ResponseWriter, r *http.Request) {
	var body createOidcMappingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.mappings.MapOidcGroup(r.Context(), &domain.CreateOidcMappingRequest{
		TeamID:  chi.URLParam(r, "teamID"),
		GroupID: body.GroupID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, oidcMappingResponse{
		ID: m.ID, TeamID: m.TeamID, GroupID: m.GroupID, GroupName: m.GroupName,
	})
}

func (h *Handler) listOidcMappings(w http.ResponseWriter, r *http.Request) {
	ms, err := h.mappings.OidcMappingsForTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]oidcMappingResponse, 0, len(ms))
	for _, m := range ms {
		resp = append(resp, oidcMappingResponse{
			ID: m.ID, TeamID: m.TeamID, GroupID: m.GroupID, GroupName: m.GroupName,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) unmapOidcGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.mappings.UnmapOidcGroup(r.Context(), chi.URLParam(r, "mappingID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
