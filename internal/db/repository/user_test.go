package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamgate/internal/domain"
)

func TestUserRepoCreateAndGetPerPartition(t *testing.T) {
	r, ctx := setupRepos(t)

	managed := mustCreateUser(t, ctx, r, domain.KindManaged, "alice")
	directory := mustCreateUser(t, ctx, r, domain.KindDirectory, "alice")
	oidc := mustCreateUser(t, ctx, r, domain.KindOidc, "alice")

	// Same username in each partition is three distinct users.
	got, err := r.users.GetByUsername(ctx, domain.KindManaged, "alice")
	require.NoError(t, err)
	assert.Equal(t, managed.ID, got.ID)
	assert.Equal(t, domain.KindManaged, got.Kind)

	got, err = r.users.GetByUsername(ctx, domain.KindDirectory, "alice")
	require.NoError(t, err)
	assert.Equal(t, directory.ID, got.ID)

	got, err = r.users.GetByUsername(ctx, domain.KindOidc, "alice")
	require.NoError(t, err)
	assert.Equal(t, oidc.ID, got.ID)
}

func TestUserRepoCreateRejectsAPIKeyKind(t *testing.T) {
	r, ctx := setupRepos(t)

	_, err := r.users.Create(ctx, &domain.User{Kind: domain.KindAPIKey, Username: "key"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUserRepoDuplicateUsernameConflicts(t *testing.T) {
	r, ctx := setupRepos(t)

	mustCreateUser(t, ctx, r, domain.KindManaged, "alice")
	_, err := r.users.Create(ctx, &domain.User{Kind: domain.KindManaged, Username: "alice", PasswordHash: "x"})
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestUserRepoGetUnknownIsNotFound(t *testing.T) {
	r, ctx := setupRepos(t)

	_, err := r.users.GetByUsername(ctx, domain.KindManaged, "ghost")
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestUserRepoUpdateManaged(t *testing.T) {
	r, ctx := setupRepos(t)

	u := mustCreateUser(t, ctx, r, domain.KindManaged, "alice")
	u.FullName = "Alice Example"
	u.Suspended = true

	updated, err := r.users.Update(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "Alice Example", updated.FullName)
	assert.True(t, updated.Suspended)
}

func TestUserRepoDelete(t *testing.T) {
	r, ctx := setupRepos(t)

	mustCreateUser(t, ctx, r, domain.KindDirectory, "bob")
	require.NoError(t, r.users.Delete(ctx, domain.KindDirectory, "bob"))

	_, err := r.users.GetByUsername(ctx, domain.KindDirectory, "bob")
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)

	err = r.users.Delete(ctx, domain.KindDirectory, "bob")
	require.ErrorAs(t, err, &nferr)
}

func TestUserRepoTeamMembershipIdempotent(t *testing.T) {
	r, ctx := setupRepos(t)

	u := mustCreateUser(t, ctx, r, domain.KindOidc, "carol")
	team := mustCreateTeam(t, ctx, r, "platform")

	added, err := r.users.AddToTeam(ctx, u, team.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.users.AddToTeam(ctx, u, team.ID)
	require.NoError(t, err)
	assert.False(t, added, "second add should be a no-op")

	removed, err := r.users.RemoveFromTeam(ctx, u, team.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.users.RemoveFromTeam(ctx, u, team.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second remove should be a no-op")
}

func TestUserRepoTeamsPreserveInsertionOrder(t *testing.T) {
	r, ctx := setupRepos(t)

	u := mustCreateUser(t, ctx, r, domain.KindDirectory, "dave")
	for _, name := range []string{"zeta", "alpha", "mid"} {
		team := mustCreateTeam(t, ctx, r, name)
		_, err := r.users.AddToTeam(ctx, u, team.ID)
		require.NoError(t, err)
	}

	teams, err := r.users.Teams(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, teamNames(teams))
}

func TestUserRepoDirectPermissions(t *testing.T) {
	r, ctx := setupRepos(t)

	u := mustCreateUser(t, ctx, r, domain.KindManaged, "erin")
	mustCreatePermission(t, ctx, r, "PORTFOLIO_MANAGEMENT")
	mustCreatePermission(t, ctx, r, "VIEW_PORTFOLIO")

	require.NoError(t, r.users.GrantPermission(ctx, u, "PORTFOLIO_MANAGEMENT"))
	require.NoError(t, r.users.GrantPermission(ctx, u, "VIEW_PORTFOLIO"))
	// Regranting is a no-op, not an error.
	require.NoError(t, r.users.GrantPermission(ctx, u, "PORTFOLIO_MANAGEMENT"))

	perms, err := r.users.DirectPermissions(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"PORTFOLIO_MANAGEMENT", "VIEW_PORTFOLIO"}, permissionNames(perms))

	has, err := r.users.HasDirectPermission(ctx, u, "VIEW_PORTFOLIO")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = r.users.HasDirectPermission(ctx, u, "SYSTEM_CONFIGURATION")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, r.users.RevokePermission(ctx, u, "PORTFOLIO_MANAGEMENT"))
	perms, err = r.users.DirectPermissions(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIEW_PORTFOLIO"}, permissionNames(perms))
}

func TestUserRepoDeleteCascadesJoinRows(t *testing.T) {
	r, ctx := setupRepos(t)

	u := mustCreateUser(t, ctx, r, domain.KindManaged, "frank")
	team := mustCreateTeam(t, ctx, r, "ops")
	mustCreatePermission(t, ctx, r, "ACCESS_MANAGEMENT")

	_, err := r.users.AddToTeam(ctx, u, team.ID)
	require.NoError(t, err)
	require.NoError(t, r.users.GrantPermission(ctx, u, "ACCESS_MANAGEMENT"))

	require.NoError(t, r.users.Delete(ctx, domain.KindManaged, "frank"))

	recreated := mustCreateUser(t, ctx, r, domain.KindManaged, "frank")
	teams, err := r.users.Teams(ctx, recreated)
	require.NoError(t, err)
	assert.Empty(t, teams)

	perms, err := r.users.DirectPermissions(ctx, recreated)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

// List runs against the write pool here, which only holds a single
// connection, so it must not issue follow-up queries while its result
// cursor is still open.
func TestUserRepoList(t *testing.T) {
	r, ctx := setupRepos(t)

	for _, name := range []string{"carol", "alice", "bob"} {
		mustCreateUser(t, ctx, r, domain.KindManaged, name)
	}
	mustCreateUser(t, ctx, r, domain.KindOidc, "zoe")

	users, total, err := r.users.List(ctx, domain.KindManaged, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)

	// Rows are fully hydrated, not just usernames.
	for _, u := range users {
		assert.Equal(t, domain.KindManaged, u.Kind)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "x", u.PasswordHash)
	}
}

func TestUserRepoListPaginates(t *testing.T) {
	r, ctx := setupRepos(t)

	for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		mustCreateUser(t, ctx, r, domain.KindDirectory, name)
	}

	page := domain.PageRequest{MaxResults: 2, PageToken: domain.EncodePageToken(2)}
	users, total, err := r.users.List(ctx, domain.KindDirectory, page)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, users, 2)
	assert.Equal(t, "u3", users[0].Username)
	assert.Equal(t, "u4", users[1].Username)
}
