package access

import (
	"context"
	"log/slog"

	"teamgate/internal/domain"
)

// Synchronizer reconciles a user's team memberships against the group
// identifiers currently asserted for them by the external identity source.
// The asserted set is authoritative and complete for each call.
type Synchronizer struct {
	users    domain.UserRepository
	resolver *MappingService
	logger   *slog.Logger
}

// NewSynchronizer creates a new Synchronizer.
func NewSynchronizer(users domain.UserRepository, resolver *MappingService, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{users: users, resolver: resolver, logger: logger.With("component", "sync")}
}

// Synchronize applies the membership delta that makes the user's team set
// reflect the asserted group identifiers through the configured mappings.
// Distinguished names for directory users, group claim names for OIDC users.
//
// A team the user currently belongs to is removed when it has no mappings,
// or when any one of its mapped identifiers is absent from the asserted set.
// A team mapped from an asserted identifier is added unless the user is
// already a member. Identifiers with no group record are skipped. Each
// membership mutation is individually atomic and idempotent, so a partially
// applied run converges on retry with the same asserted set.
//
// Returns the user re-read from the store after all mutations.
func (s *Synchronizer) Synchronize(ctx context.Context, user *domain.User, asserted []string) (*domain.User, error) {
	if user.Kind != domain.KindDirectory && user.Kind != domain.KindOidc {
		return nil, domain.ErrValidation("cannot synchronize team membership for principal kind %q", user.Kind)
	}

	assertedSet := make(map[string]struct{}, len(asserted))
	for _, g := range asserted {
		assertedSet[g] = struct{}{}
	}

	current, err := s.users.Teams(ctx, user)
	if err != nil {
		return nil, err
	}

	removals := make(map[string]string, len(current))
	for _, team := range current {
		mapped, err := s.resolver.GroupIdentifiersForTeam(ctx, team.ID, user.Kind)
		if err != nil {
			return nil, err
		}
		if len(mapped) == 0 {
			removals[team.ID] = team.Name
			continue
		}
		for _, id := range mapped {
			if _, ok := assertedSet[id]; !ok {
				removals[team.ID] = team.Name
				break
			}
		}
	}

	for teamID, teamName := range removals {
		removed, err := s.users.RemoveFromTeam(ctx, user, teamID)
		if err != nil {
			return nil, err
		}
		if removed {
			s.logger.Info("removed user from team",
				"username", user.Username, "kind", user.Kind, "team", teamName)
		}
	}

	for _, g := range asserted {
		teams, err := s.resolver.TeamsForGroup(ctx, user.Kind, g)
		if err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			s.logger.Info("asserted group has no team mappings, skipping",
				"username", user.Username, "kind", user.Kind, "group", g)
			continue
		}
		for _, team := range teams {
			added, err := s.users.AddToTeam(ctx, user, team.ID)
			if err != nil {
				return nil, err
			}
			if added {
				s.logger.Info("added user to team",
					"username", user.Username, "kind", user.Kind, "team", team.Name)
			}
		}
	}

	return s.users.GetByID(ctx, user.Kind, user.ID)
}
