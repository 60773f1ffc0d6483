package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamgate/internal/domain"
)

func TestAPIKeyCreateReturnsRawOnce(t *testing.T) {
	f, ctx := setupAccess(t)

	team := f.createTeam(t, ctx, "Automation")
	rawKey, key, err := f.keySvc.Create(ctx, &domain.CreateAPIKeyRequest{
		TeamID: team.ID, Comment: "ci",
	})
	require.NoError(t, err)

	assert.Len(t, rawKey, 64)
	assert.Equal(t, rawKey[:8], key.KeyPrefix)
	assert.NotContains(t, key.KeyHash, rawKey, "raw key must not be stored")

	teams, err := f.keySvc.Teams(ctx, key.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Automation", teams[0].Name)
}

func TestAPIKeyAuthenticate(t *testing.T) {
	f, ctx := setupAccess(t)

	team := f.createTeam(t, ctx, "Automation")
	rawKey, key, err := f.keySvc.Create(ctx, &domain.CreateAPIKeyRequest{TeamID: team.ID})
	require.NoError(t, err)

	resolved, err := f.keySvc.Authenticate(ctx, rawKey)
	require.NoError(t, err)
	assert.Equal(t, key.ID, resolved.ID)

	got, err := f.keySvc.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt, "authentication should record use")

	var nferr *domain.NotFoundError
	_, err = f.keySvc.Authenticate(ctx, "not-a-key")
	require.ErrorAs(t, err, &nferr)
}

func TestAPIKeyRegenerateInvalidatesOldSecret(t *testing.T) {
	f, ctx := setupAccess(t)

	team := f.createTeam(t, ctx, "Automation")
	oldRaw, key, err := f.keySvc.Create(ctx, &domain.CreateAPIKeyRequest{TeamID: team.ID})
	require.NoError(t, err)

	newRaw, regenerated, err := f.keySvc.Regenerate(ctx, key.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldRaw, newRaw)
	assert.Equal(t, key.ID, regenerated.ID)

	var nferr *domain.NotFoundError
	_, err = f.keySvc.Authenticate(ctx, oldRaw)
	require.ErrorAs(t, err, &nferr)

	resolved, err := f.keySvc.Authenticate(ctx, newRaw)
	require.NoError(t, err)
	assert.Equal(t, key.ID, resolved.ID)

	// Team memberships survive the secret rotation.
	teams, err := f.keySvc.Teams(ctx, key.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
}

func TestTeamCreateWithAPIKey(t *testing.T) {
	f, ctx := setupAccess(t)

	team, rawKey, err := f.teamSvc.Create(ctx, &domain.CreateTeamRequest{
		Name: "Automation", WithAPIKey: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rawKey)

	key, err := f.keySvc.Authenticate(ctx, rawKey)
	require.NoError(t, err)
	teams, err := f.keySvc.Teams(ctx, key.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)
}

func TestTeamCreateWithoutAPIKey(t *testing.T) {
	f, ctx := setupAccess(t)

	_, rawKey, err := f.teamSvc.Create(ctx, &domain.CreateTeamRequest{Name: "Plain"})
	require.NoError(t, err)
	assert.Empty(t, rawKey)
}
