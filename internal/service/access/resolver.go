package access

import (
	"context"
	"errors"

	"teamgate/internal/domain"
)

// MappingService resolves between teams and the external groups mapped to
// them, and manages the mapping rows themselves. Resolution methods are pure
// reads with no side effects.
type MappingService struct {
	mappings domain.MappingRepository
	teams    domain.TeamRepository
	audit    domain.AuditRepository
}

// NewMappingService creates a new MappingService.
func NewMappingService(mappings domain.MappingRepository, teams domain.TeamRepository, audit domain.AuditRepository) *MappingService {
	return &MappingService{mappings: mappings, teams: teams, audit: audit}
}

// GroupIdentifiersForTeam returns the external group identifiers mapped to a
// team for the given principal kind: distinguished names for directory users,
// group names for OIDC users.
func (s *MappingService) GroupIdentifiersForTeam(ctx context.Context, teamID string, kind domain.PrincipalKind) ([]string, error) {
	switch kind {
	case domain.KindDirectory:
		mappings, err := s.mappings.DirectoryMappingsForTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(mappings))
		for _, m := range mappings {
			ids = append(ids, m.DN)
		}
		return ids, nil
	case domain.KindOidc:
		mappings, err := s.mappings.OidcMappingsForTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(mappings))
		for _, m := range mappings {
			ids = append(ids, m.GroupName)
		}
		return ids, nil
	default:
		return nil, domain.ErrValidation("no group mappings for principal kind %q", kind)
	}
}

// TeamsForGroup returns the teams mapped to an external group identifier.
// An identifier with no corresponding group record resolves to zero teams;
// it is not an error.
func (s *MappingService) TeamsForGroup(ctx context.Context, kind domain.PrincipalKind, identifier string) ([]domain.Team, error) {
	var teamIDs []string
	switch kind {
	case domain.KindDirectory:
		mappings, err := s.mappings.DirectoryMappingsForDN(ctx, identifier)
		if err != nil {
			return nil, err
		}
		for _, m := range mappings {
			teamIDs = append(teamIDs, m.TeamID)
		}
	case domain.KindOidc:
		group, err := s.mappings.GetOidcGroupByName(ctx, identifier)
		if err != nil {
			var nferr *domain.NotFoundError
			if errors.As(err, &nferr) {
				return nil, nil
			}
			return nil, err
		}
		mappings, err := s.mappings.OidcMappingsForGroup(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range mappings {
			teamIDs = append(teamIDs, m.TeamID)
		}
	default:
		return nil, domain.ErrValidation("no group mappings for principal kind %q", kind)
	}

	teams := make([]domain.Team, 0, len(teamIDs))
	for _, id := range teamIDs {
		team, err := s.teams.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, nil
}

// MapDirectoryGroup creates a team to directory group mapping.
func (s *MappingService) MapDirectoryGroup(ctx context.Context, req *domain.CreateDirectoryMappingRequest) (*domain.MappedDirectoryGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	mapped, err := s.mappings.IsDirectoryMapped(ctx, req.TeamID, req.DN)
	if err != nil {
		return nil, err
	}
	if mapped {
		return nil, domain.ErrConflict("team %q is already mapped to %q", team.Name, req.DN)
	}
	m, err := s.mappings.CreateDirectoryMapping(ctx, req.TeamID, req.DN)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, team.Name, "MAP_DIRECTORY_GROUP")
	return m, nil
}

// UnmapDirectoryGroup removes a directory group mapping by ID.
func (s *MappingService) UnmapDirectoryGroup(ctx context.Context, id string) error {
	if err := s.mappings.DeleteDirectoryMapping(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, id, "UNMAP_DIRECTORY_GROUP")
	return nil
}

// DirectoryMappingsForTeam returns a team's directory group mappings.
func (s *MappingService) DirectoryMappingsForTeam(ctx context.Context, teamID string) ([]domain.MappedDirectoryGroup, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.mappings.DirectoryMappingsForTeam(ctx, teamID)
}

// CreateOidcGroup registers an OIDC group by claim name.
func (s *MappingService) CreateOidcGroup(ctx context.Context, name string) (*domain.OidcGroup, error) {
	if name == "" {
		return nil, domain.ErrValidation("group name is required")
	}
	g, err := s.mappings.CreateOidcGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, name, "CREATE_OIDC_GROUP")
	return g, nil
}

// ListOidcGroups returns a paginated list of registered OIDC groups.
func (s *MappingService) ListOidcGroups(ctx context.Context, page domain.PageRequest) ([]domain.OidcGroup, int64, error) {
	return s.mappings.ListOidcGroups(ctx, page)
}

// DeleteOidcGroup removes an OIDC group and its mappings.
func (s *MappingService) DeleteOidcGroup(ctx context.Context, id string) error {
	if err := s.mappings.DeleteOidcGroup(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, id, "DELETE_OIDC_GROUP")
	return nil
}

// MapOidcGroup creates a team to OIDC group mapping.
func (s *MappingService) MapOidcGroup(ctx context.Context, req *domain.CreateOidcMappingRequest) (*domain.MappedOidcGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	mapped, err := s.mappings.IsOidcMapped(ctx, req.TeamID, req.GroupID)
	if err != nil {
		return nil, err
	}
	if mapped {
		return nil, domain.ErrConflict("team %q is already mapped to group %s", team.Name, req.GroupID)
	}
	m, err := s.mappings.CreateOidcMapping(ctx, req.TeamID, req.GroupID)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, team.Name, "MAP_OIDC_GROUP")
	return m, nil
}

// UnmapOidcGroup removes an OIDC group mapping by ID.
func (s *MappingService) UnmapOidcGroup(ctx context.Context, id string) error {
	if err := s.mappings.DeleteOidcMapping(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, id, "UNMAP_OIDC_GROUP")
	return nil
}

// OidcMappingsForTeam returns a team's OIDC group mappings.
func (s *MappingService) OidcMappingsForTeam(ctx context.Context, teamID string) ([]domain.MappedOidcGroup, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.mappings.OidcMappingsForTeam(ctx, teamID)
}

func (s *MappingService) logAudit(ctx context.Context, name, action string) {
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: name,
		Action:        action,
		Status:        "ALLOWED",
	})
}
