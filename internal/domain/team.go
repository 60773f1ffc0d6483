package domain

import "time"

// Team is a named group of principals that aggregates permissions and
// external group mappings. Membership equality is by team ID.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// MappedDirectoryGroup associates a team with an LDAP group distinguished
// name. At most one mapping row exists per (team, DN) pair; a DN may map to
// multiple teams and vice versa.
type MappedDirectoryGroup struct {
	ID     string
	TeamID string
	DN     string
}

// OidcGroup is an OpenID Connect group known to the system. Mappings
// reference the group row rather than the raw claim value.
type OidcGroup struct {
	ID   string
	Name string
}

// MappedOidcGroup associates a team with an OIDC group. GroupName is
// populated on reads for comparison against asserted group claims.
type MappedOidcGroup struct {
	ID        string
	TeamID    string
	GroupID   string
	GroupName string
}

// CreateTeamRequest holds parameters for creating a new team.
type CreateTeamRequest struct {
	Name string
	// WithAPIKey mints an API key bound to the new team.
	WithAPIKey bool
}

// Validate checks that the request is well-formed.
func (r *CreateTeamRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("team name is required")
	}
	return nil
}

// CreateDirectoryMappingRequest holds parameters for mapping a team to an
// LDAP group DN.
type CreateDirectoryMappingRequest struct {
	TeamID string
	DN     string
}

// Validate checks that the request is well-formed.
func (r *CreateDirectoryMappingRequest) Validate() error {
	if r.TeamID == "" {
		return ErrValidation("team_id is required")
	}
	if r.DN == "" {
		return ErrValidation("dn is required")
	}
	return nil
}

// CreateOidcMappingRequest holds parameters for mapping a team to an OIDC
// group.
type CreateOidcMappingRequest struct {
	TeamID  string
	GroupID string
}

// Validate checks that the request is well-formed.
func (r *CreateOidcMappingRequest) Validate() error {
	if r.TeamID == "" {
		return ErrValidation("team_id is required")
	}
	if r.GroupID == "" {
		return ErrValidation("group_id is required")
	}
	return nil
}
