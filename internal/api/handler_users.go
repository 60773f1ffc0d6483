package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"teamgate/internal/domain"
)

type createManagedUserRequest struct {
	Username            string `json:"username"`
	FullName            string `json:"full_name"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	ForcePasswordChange bool   `json:"force_password_change"`
	Suspended           bool   `json:"suspended"`
}

type createExternalUserRequest struct {
	Username string `json:"username"`
}

type updateManagedUserRequest struct {
	FullName            string `json:"full_name"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	ForcePasswordChange bool   `json:"force_password_change"`
	Suspended           bool   `json:"suspended"`
}

type userListResponse struct {
	Users         []userResponse `json:"users"`
	Total         int64          `json:"total"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// userKindFromRoute maps the {kind} path segment to a user partition.
// API keys have their own resource and never appear here.
func userKindFromRoute(r *http.Request) (domain.PrincipalKind, error) {
	kind := domain.PrincipalKind(chi.URLParam(r, "kind"))
	if !kind.IsUser() {
		return "", domain.ErrValidation("unknown user kind %q", string(kind))
	}
	return kind, nil
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	kind, err := userKindFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var user *domain.User
	if kind == domain.KindManaged {
		var body createManagedUserRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
		user, err = h.users.CreateManaged(r.Context(), &domain.CreateManagedUserRequest{
			Username:            body.Username,
			FullName:            body.FullName,
			Email:               body.Email,
			Password:            body.Password,
			ForcePasswordChange: body.ForcePasswordChange,
			Suspended:           body.Suspended,
		})
	} else {
		var body createExternalUserRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
		user, err = h.users.CreateExternal(r.Context(), &domain.CreateExternalUserRequest{
			Username: body.Username,
			Kind:     kind,
		})
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	kind, err := userKindFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page := pageFromQuery(r)
	users, total, err := h.users.List(r.Context(), kind, page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := userListResponse{Users: make([]userResponse, 0, len(users)), Total: total}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}
	resp.NextPageToken = nextToken(page, total)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	kind, err := userKindFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if kind != domain.KindManaged {
		writeError(w, domain.ErrValidation("only managed users can be updated"))
		return
	}
	var body updateManagedUserRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.users.UpdateManaged(r.Context(), &domain.UpdateManagedUserRequest{
		Username:            chi.URLParam(r, "username"),
		FullName:            body.FullName,
		Email:               body.Email,
		Password:            body.Password,
		ForcePasswordChange: body.ForcePasswordChange,
		Suspended:           body.Suspended,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	kind, err := userKindFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), kind, chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserTeams(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	teams, err := h.users.Teams(r.Context(), user)
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

func (h *Handler) addUserToTeam(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	added, err := h.users.AddToTeam(r.Context(), user, chi.URLParam(r, "teamID"))
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

func (h *Handler) removeUserFromTeam(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.users.RemoveFromTeam(r.Context(), user, chi.URLParam(r, "teamID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserPermissions(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	perms, err := h.users.DirectPermissions(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPermissionResponses(perms))
}

func (h *Handler) grantUserPermission(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.GrantPermission(r.Context(), user, chi.URLParam(r, "permission")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) revokeUserPermission(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromRoute(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.RevokePermission(r.Context(), user, chi.URLParam(r, "permission")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userFromRoute(r *http.Request) (*domain.User, error) {
	kind, err := userKindFromRoute(r)
	if err != nil {
		return nil, err
	}
	return h.users.GetByUsername(r.Context(), kind, chi.URLParam(r, "username"))
}
