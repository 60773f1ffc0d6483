package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"teamgate/internal/domain"
)

type createAPIKeyRequest struct {
	TeamID  string `json:"team_id"`
	Comment string `json:"comment"`
}

// mintedAPIKeyResponse carries the raw key material. It is returned exactly
// once, at mint or regenerate time; only the hash is stored.
type mintedAPIKeyResponse struct {
	Key    string         `json:"key"`
	APIKey apiKeyResponse `json:"api_key"`
}

type apiKeyListResponse struct {
	APIKeys       []apiKeyResponse `json:"api_keys"`
	Total         int64            `json:"total"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var body createAPIKeyRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	rawKey, key, err := h.apiKeys.Create(r.Context(), &domain.CreateAPIKeyRequest{
		TeamID:  body.TeamID,
		Comment: body.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mintedAPIKeyResponse{Key: rawKey, APIKey: toAPIKeyResponse(key)})
}

func (h *Handler) getAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.apiKeys.GetByID(r.Context(), chi.URLParam(r, "keyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIKeyResponse(key))
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	keys, total, err := h.apiKeys.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := apiKeyListResponse{APIKeys: make([]apiKeyResponse, 0, len(keys)), Total: total}
	for i := range keys {
		resp.APIKeys = append(resp.APIKeys, toAPIKeyResponse(&keys[i]))
	}
	resp.NextPageToken = nextToken(page, total)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) regenerateAPIKey(w http.ResponseWriter, r *http.Request) {
	rawKey, key, err := h.apiKeys.Regenerate(r.Context(), chi.URLParam(r, "keyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mintedAPIKeyResponse{Key: rawKey, APIKey: toAPIKeyResponse(key)})
}

func (h *Handler) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.apiKeys.Delete(r.Context(), chi.URLParam(r, "keyID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAPIKeyTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.apiKeys.Teams(r.Context(), chi.URLParam(r, "keyID"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]teamResponse, 0, len(teams))
	for i := range teams {
		resp = append(resp, toTeamResponse(&teams[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) addAPIKeyToTeam(w http.ResponseWriter, r *http.Request) {
	added, err := h.apiKeys.AddToTeam(r.Context(), chi.URLParam(r, "keyID"), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !added {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) removeAPIKeyFromTeam(w http.ResponseWriter, r *http.Request) {
	if _, err := h.apiKeys.RemoveFromTeam(r.Context(), chi.URLParam(r, "keyID"), chi.URLParam(r, "teamID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
