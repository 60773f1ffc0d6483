package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamgate/internal/domain"
)

func TestDirectoryMappings(t *testing.T) {
	r, ctx := setupRepos(t)

	devs := mustCreateTeam(t, ctx, r, "devs")
	ops := mustCreateTeam(t, ctx, r, "ops")

	const dn = "cn=developers,ou=groups,dc=example,dc=com"

	m, err := r.mappings.CreateDirectoryMapping(ctx, devs.ID, dn)
	require.NoError(t, err)
	assert.Equal(t, devs.ID, m.TeamID)
	assert.Equal(t, dn, m.DN)

	// The same DN may map to several teams.
	_, err = r.mappings.CreateDirectoryMapping(ctx, ops.ID, dn)
	require.NoError(t, err)

	// But the same (team, dn) pair only once.
	_, err = r.mappings.CreateDirectoryMapping(ctx, devs.ID, dn)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)

	byDN, err := r.mappings.DirectoryMappingsForDN(ctx, dn)
	require.NoError(t, err)
	assert.Len(t, byDN, 2)

	byTeam, err := r.mappings.DirectoryMappingsForTeam(ctx, devs.ID)
	require.NoError(t, err)
	require.Len(t, byTeam, 1)

	mapped, err := r.mappings.IsDirectoryMapped(ctx, devs.ID, dn)
	require.NoError(t, err)
	assert.True(t, mapped)

	require.NoError(t, r.mappings.DeleteDirectoryMapping(ctx, byTeam[0].ID))
	mapped, err = r.mappings.IsDirectoryMapped(ctx, devs.ID, dn)
	require.NoError(t, err)
	assert.False(t, mapped)
}

func TestDirectoryMappingForUnknownTeamIsNotFound(t *testing.T) {
	r, ctx := setupRepos(t)

	_, err := r.mappings.CreateDirectoryMapping(ctx, "no-such-team", "cn=x")
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestOidcGroupCatalog(t *testing.T) {
	r, ctx := setupRepos(t)

	g, err := r.mappings.CreateOidcGroup(ctx, "platform-admins")
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)

	got, err := r.mappings.GetOidcGroupByName(ctx, "platform-admins")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = r.mappings.CreateOidcGroup(ctx, "platform-admins")
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)

	groups, total, err := r.mappings.ListOidcGroups(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, groups, 1)

	require.NoError(t, r.mappings.DeleteOidcGroup(ctx, g.ID))
	_, err = r.mappings.GetOidcGroupByName(ctx, "platform-admins")
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestOidcMappings(t *testing.T) {
	r, ctx := setupRepos(t)

	team := mustCreateTeam(t, ctx, r, "devs")
	g, err := r.mappings.CreateOidcGroup(ctx, "developers")
	require.NoError(t, err)

	m, err := r.mappings.CreateOidcMapping(ctx, team.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "developers", m.GroupName, "mapping should carry the group name")

	_, err = r.mappings.CreateOidcMapping(ctx, team.ID, g.ID)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)

	byTeam, err := r.mappings.OidcMappingsForTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
	assert.Equal(t, g.ID, byTeam[0].GroupID)

	byGroup, err := r.mappings.OidcMappingsForGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, byGroup, 1)

	mapped, err := r.mappings.IsOidcMapped(ctx, team.ID, g.ID)
	require.NoError(t, err)
	assert.True(t, mapped)

	// Deleting the group cascades to its mappings.
	require.NoError(t, r.mappings.DeleteOidcGroup(ctx, g.ID))
	byTeam, err = r.mappings.OidcMappingsForTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, byTeam)
}

func TestTeamDeleteCascadesMappings(t *testing.T) {
	r, ctx := setupRepos(t)

	team := mustCreateTeam(t, ctx, r, "devs")
	const dn = "cn=devs,ou=groups,dc=example,dc=com"
	_, err := r.mappings.CreateDirectoryMapping(ctx, team.ID, dn)
	require.NoError(t, err)

	require.NoError(t, r.teams.Delete(ctx, team.ID))

	byDN, err := r.mappings.DirectoryMappingsForDN(ctx, dn)
	require.NoError(t, err)
	assert.Empty(t, byDN)
}
