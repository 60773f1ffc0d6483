package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"teamgate/internal/domain"
)

type createTeamRequest struct {
	Name       string `json:"name"`
	WithAPIKey bool   `json:"with_api_key"`
}

type createTeamResponse struct {
	Team   teamResponse `json:"team"`
	APIKey string       `json:"api_key,omitempty"`
}

type renameTeamRequest struct {
	Name string `json:"name"`
}

type teamListResponse struct {
	Teams         []teamResponse `json:"teams"`
	Total         int64          `json:"total"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var body createTeamRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	team, rawKey, err := h.teams.Create(r.Context(), &domain.CreateTeamRequest{
		Name:       body.Name,
		WithAPIKey: body.WithAPIKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createTeamResponse{Team: toTeamResponse(team), APIKey: rawKey})
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.GetByID(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	teams, total, err := h.teams.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := teamListResponse{Teams: make([]teamResponse, 0, len(teams)), Total: total}
	for i := range teams {
		resp.Teams = append(resp.Teams, toTeamResponse(&teams[i]))
	}
	resp.NextPageToken = nextToken(page, total)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) renameTeam(w http.ResponseWriter, r *http.Request) {
	var body renameTeamRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	team, err := h.teams.Rename(r.Context(), chi.URLParam(r, "teamID"), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

func (h *Handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.Delete(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTeamPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.teams.Permissions(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPermissionResponses(perms))
}

func (h *Handler) grantTeamPermission(w http.ResponseWriter, r *http.Request) {
	err := h.teams.GrantPermission(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "permission"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) revokeTeamPermission(w http.ResponseWriter, r *http.Request) {
	err := h.teams.RevokePermission(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "permission"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
