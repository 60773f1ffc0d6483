package repository

import (
	"context"
	"testing"

	"teamgate/internal/db"
	"teamgate/internal/domain"
)

type repos struct {
	users       *UserRepo
	teams       *TeamRepo
	permissions *PermissionRepo
	mappings    *MappingRepo
	apiKeys     *APIKeyRepo
	audit       *AuditRepo
}

func setupRepos(t *testing.T) (repos, context.Context) {
	t.Helper()
	writeDB, _ := db.OpenTestSQLite(t)
	return repos{
		users:       NewUserRepo(writeDB),
		teams:       NewTeamRepo(writeDB),
		permissions: NewPermissionRepo(writeDB),
		mappings:    NewMappingRepo(writeDB),
		apiKeys:     NewAPIKeyRepo(writeDB),
		audit:       NewAuditRepo(writeDB),
	}, context.Background()
}

func mustCreateTeam(t *testing.T, ctx context.Context, r repos, name string) *domain.Team {
	t.Helper()
	team, err := r.teams.Create(ctx, &domain.Team{Name: name})
	if err != nil {
		t.Fatalf("create team %q: %v", name, err)
	}
	return team
}

func mustCreateUser(t *testing.T, ctx context.Context, r repos, kind domain.PrincipalKind, username string) *domain.User {
	t.Helper()
	u := &domain.User{Kind: kind, Username: username}
	if kind == domain.KindManaged {
		u.PasswordHash = "x"
	}
	created, err := r.users.Create(ctx, u)
	if err != nil {
		t.Fatalf("create %s user %q: %v", kind, username, err)
	}
	return created
}

func mustCreatePermission(t *testing.T, ctx context.Context, r repos, name string) {
	t.Helper()
	if _, err := r.permissions.Create(ctx, &domain.Permission{Name: name}); err != nil {
		t.Fatalf("create permission %q: %v", name, err)
	}
}

func permissionNames(perms []domain.Permission) []string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return names
}

func teamNames(teams []domain.Team) []string {
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
	}
	return names
}
