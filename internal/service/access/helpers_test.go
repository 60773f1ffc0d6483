package access

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"teamgate/internal/db"
	"teamgate/internal/db/repository"
	"teamgate/internal/domain"
)

type fixture struct {
	users       *repository.UserRepo
	teams       *repository.TeamRepo
	permissions *repository.PermissionRepo
	mappings    *repository.MappingRepo
	apiKeys     *repository.APIKeyRepo
	audit       *repository.AuditRepo

	resolver     *MappingService
	synchronizer *Synchronizer
	evaluator    *Evaluator
	enforcer     *Enforcer
	userSvc      *UserService
	teamSvc      *TeamService
	keySvc       *APIKeyService
	signIn       *SignInService
}

func setupAccess(t *testing.T) (*fixture, context.Context) {
	t.Helper()
	writeDB, _ := db.OpenTestSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		users:       repository.NewUserRepo(writeDB),
		teams:       repository.NewTeamRepo(writeDB),
		permissions: repository.NewPermissionRepo(writeDB),
		mappings:    repository.NewMappingRepo(writeDB),
		apiKeys:     repository.NewAPIKeyRepo(writeDB),
		audit:       repository.NewAuditRepo(writeDB),
	}
	f.resolver = NewMappingService(f.mappings, f.teams, f.audit)
	f.synchronizer = NewSynchronizer(f.users, f.resolver, logger)
	f.evaluator = NewEvaluator(f.users, f.teams, f.apiKeys)
	f.enforcer = NewEnforcer(f.users, f.evaluator, f.audit, logger)
	f.userSvc = NewUserService(f.users, f.teams, f.audit)
	f.keySvc = NewAPIKeyService(f.apiKeys, f.teams, f.audit)
	f.teamSvc = NewTeamService(f.teams, f.keySvc, f.audit)
	f.signIn = NewSignInService(f.users, f.synchronizer, true, logger)
	return f, context.Background()
}

func (f *fixture) createTeam(t *testing.T, ctx context.Context, name string) *domain.Team {
	t.Helper()
	team, err := f.teams.Create(ctx, &domain.Team{Name: name})
	require.NoError(t, err)
	return team
}

func (f *fixture) createUser(t *testing.T, ctx context.Context, kind domain.PrincipalKind, username string) *domain.User {
	t.Helper()
	u := &domain.User{Kind: kind, Username: username}
	if kind == domain.KindManaged {
		u.PasswordHash = "x"
	}
	created, err := f.users.Create(ctx, u)
	require.NoError(t, err)
	return created
}

func (f *fixture) createPermission(t *testing.T, ctx context.Context, name string) {
	t.Helper()
	_, err := f.permissions.Create(ctx, &domain.Permission{Name: name})
	require.NoError(t, err)
}

func (f *fixture) mapDN(t *testing.T, ctx context.Context, teamID, dn string) {
	t.Helper()
	_, err := f.mappings.CreateDirectoryMapping(ctx, teamID, dn)
	require.NoError(t, err)
}

func (f *fixture) mapOidcGroup(t *testing.T, ctx context.Context, teamID, groupName string) *domain.OidcGroup {
	t.Helper()
	group, err := f.mappings.GetOidcGroupByName(ctx, groupName)
	if err != nil {
		group, err = f.mappings.CreateOidcGroup(ctx, groupName)
		require.NoError(t, err)
	}
	_, err = f.mappings.CreateOidcMapping(ctx, teamID, group.ID)
	require.NoError(t, err)
	return group
}

func (f *fixture) teamNamesOf(t *testing.T, ctx context.Context, user *domain.User) []string {
	t.Helper()
	teams, err := f.users.Teams(ctx, user)
	require.NoError(t, err)
	names := make([]string, 0, len(teams))
	for _, team := range teams {
		names = append(names, team.Name)
	}
	return names
}
