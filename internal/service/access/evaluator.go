package access

import (
	"context"

	"teamgate/internal/domain"
)

// Evaluator decides whether a principal holds a permission, optionally
// expanding through team membership, and computes effective permission sets.
// It never caches; every check reads the current persisted state.
type Evaluator struct {
	users   domain.UserRepository
	teams   domain.TeamRepository
	apiKeys domain.APIKeyRepository
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(users domain.UserRepository, teams domain.TeamRepository, apiKeys domain.APIKeyRepository) *Evaluator {
	return &Evaluator{users: users, teams: teams, apiKeys: apiKeys}
}

// HasPermission reports whether the user holds the named permission. An
// unknown permission name is false, not an error; a user absent from the
// store is a NotFound error. With includeTeams, a failed direct check falls
// through to the user's teams, short-circuiting on the first match.
func (e *Evaluator) HasPermission(ctx context.Context, user *domain.User, name string, includeTeams bool) (bool, error) {
	if _, err := e.users.GetByID(ctx, user.Kind, user.ID); err != nil {
		return false, err
	}

	has, err := e.users.HasDirectPermission(ctx, user, name)
	if err != nil {
		return false, err
	}
	if has {
		return true, nil
	}
	if !includeTeams {
		return false, nil
	}

	teams, err := e.users.Teams(ctx, user)
	if err != nil {
		return false, err
	}
	for _, team := range teams {
		has, err := e.teams.HasPermission(ctx, team.ID, name)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

// HasTeamPermission reports whether the team directly holds the named
// permission. Membership inheritance does not apply to teams.
func (e *Evaluator) HasTeamPermission(ctx context.Context, teamID, name string) (bool, error) {
	if _, err := e.teams.GetByID(ctx, teamID); err != nil {
		return false, err
	}
	return e.teams.HasPermission(ctx, teamID, name)
}

// HasAPIKeyPermission reports whether any team the key belongs to holds the
// named permission. API keys have no direct permission set, so team
// inheritance is unconditional.
func (e *Evaluator) HasAPIKeyPermission(ctx context.Context, keyID, name string) (bool, error) {
	if _, err := e.apiKeys.GetByID(ctx, keyID); err != nil {
		return false, err
	}

	teams, err := e.apiKeys.Teams(ctx, keyID)
	if err != nil {
		return false, err
	}
	for _, team := range teams {
		has, err := e.teams.HasPermission(ctx, team.ID, name)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

// EffectivePermissions returns the union of the user's direct permissions
// and the permissions of every team the user belongs to. Duplicates
// collapse; iteration order is insertion order of first occurrence, direct
// permissions first, then team permissions in team-set order.
func (e *Evaluator) EffectivePermissions(ctx context.Context, user *domain.User) ([]domain.Permission, error) {
	if _, err := e.users.GetByID(ctx, user.Kind, user.ID); err != nil {
		return nil, err
	}

	var effective []domain.Permission
	seen := make(map[string]struct{})
	add := func(perms []domain.Permission) {
		for _, p := range perms {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			effective = append(effective, p)
		}
	}

	direct, err := e.users.DirectPermissions(ctx, user)
	if err != nil {
		return nil, err
	}
	add(direct)

	teams, err := e.users.Teams(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		perms, err := e.teams.Permissions(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		add(perms)
	}

	return effective, nil
}

// EffectiveAPIKeyPermissions returns the union of the permissions of every
// team the key belongs to, deduplicated in team-set order.
func (e *Evaluator) EffectiveAPIKeyPermissions(ctx context.Context, keyID string) ([]domain.Permission, error) {
	if _, err := e.apiKeys.GetByID(ctx, keyID); err != nil {
		return nil, err
	}

	var effective []domain.Permission
	seen := make(map[string]struct{})

	teams, err := e.apiKeys.Teams(ctx, keyID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		perms, err := e.teams.Permissions(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			effective = append(effective, p)
		}
	}

	return effective, nil
}
