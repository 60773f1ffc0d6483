package api

import (
	"net/http"
	"time"
)

type auditEntryResponse struct {
	ID            int64  `json:"id"`
	PrincipalName string `json:"principal_name"`
	Action        string `json:"action"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

type auditListResponse struct {
	Entries       []auditEntryResponse `json:"entries"`
	Total         int64                `json:"total"`
	NextPageToken string               `json:"next_page_token,omitempty"`
}

// listAuditEntries returns audit entries, newest first.
func (h *Handler) listAuditEntries(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	entries, total, err := h.audit.List(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := auditListResponse{Entries: make([]auditEntryResponse, 0, len(entries)), Total: total}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, auditEntryResponse{
			ID:            e.ID,
			PrincipalName: e.PrincipalName,
			Action:        e.Action,
			Status:        e.Status,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	resp.NextPageToken = nextToken(page, total)
	writeJSON(w, http.StatusOK, resp)
}
