package access

import (
	"context"

	"teamgate/internal/domain"
)

// TeamService provides team administration and team-level permission grants.
type TeamService struct {
	teams domain.TeamRepository
	keys  *APIKeyService
	audit domain.AuditRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teams domain.TeamRepository, keys *APIKeyService, audit domain.AuditRepository) *TeamService {
	return &TeamService{teams: teams, keys: keys, audit: audit}
}

// Create validates and persists a new team, optionally minting an API key
// bound to it. The raw key is returned once and never stored.
func (s *TeamService) Create(ctx context.Context, req *domain.CreateTeamRequest) (*domain.Team, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	team, err := s.teams.Create(ctx, &domain.Team{Name: req.Name})
	if err != nil {
		return nil, "", err
	}
	s.logAudit(ctx, team.Name, "CREATE_TEAM")

	var rawKey string
	if req.WithAPIKey {
		rawKey, _, err = s.keys.Create(ctx, &domain.CreateAPIKeyRequest{TeamID: team.ID})
		if err != nil {
			return nil, "", err
		}
	}
	return team, rawKey, nil
}

// GetByID returns a team by ID.
func (s *TeamService) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return s.teams.GetByID(ctx, id)
}

// List returns a paginated list of teams.
func (s *TeamService) List(ctx context.Context, page domain.PageRequest) ([]domain.Team, int64, error) {
	return s.teams.List(ctx, page)
}

// Rename changes a team's display name.
func (s *TeamService) Rename(ctx context.Context, id, name string) (*domain.Team, error) {
	if name == "" {
		return nil, domain.ErrValidation("team name is required")
	}
	team, err := s.teams.Rename(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, team.Name, "RENAME_TEAM")
	return team, nil
}

// Delete removes a team and, through the store, all of its memberships,
// grants, and group mappings.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, team.Name, "DELETE_TEAM")
	return nil
}

// Permissions returns the team's directly granted permissions in grant
// order.
func (s *TeamService) Permissions(ctx context.Context, id string) ([]domain.Permission, error) {
	if _, err := s.teams.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.teams.Permissions(ctx, id)
}

// GrantPermission grants a permission to the team.
func (s *TeamService) GrantPermission(ctx context.Context, id, name string) error {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.teams.GrantPermission(ctx, id, name); err != nil {
		return err
	}
	s.logAudit(ctx, team.Name, "GRANT_PERMISSION "+name)
	return nil
}

// RevokePermission revokes a permission from the team.
func (s *TeamService) RevokePermission(ctx context.Context, id, name string) error {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.teams.RevokePermission(ctx, id, name); err != nil {
		return err
	}
	s.logAudit(ctx, team.Name, "REVOKE_PERMISSION "+name)
	return nil
}

func (s *TeamService) logAudit(ctx context.Context, teamName, action string) {
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: teamName,
		Action:        action,
		Status:        "ALLOWED",
	})
}
