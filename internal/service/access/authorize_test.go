package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamgate/internal/domain"
)

func TestAuthorizeDeniesAbsentPrincipal(t *testing.T) {
	f, ctx := setupAccess(t)

	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, nil, []string{"VIEW"}))
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, &domain.Principal{}, []string{"VIEW"}))
}

func TestAuthorizeDeniesEmptyRequirementList(t *testing.T) {
	f, ctx := setupAccess(t)

	user := f.createUser(t, ctx, domain.KindManaged, "alice")
	f.createPermission(t, ctx, "VIEW")
	require.NoError(t, f.users.GrantPermission(ctx, user, "VIEW"))

	principal := &domain.Principal{Kind: domain.KindManaged, ID: user.ID, Name: user.Username}
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, nil))
}

func TestAuthorizeAllowsOnAnyRequiredPermission(t *testing.T) {
	f, ctx := setupAccess(t)

	user := f.createUser(t, ctx, domain.KindManaged, "alice")
	f.createPermission(t, ctx, "EDIT")
	require.NoError(t, f.users.GrantPermission(ctx, user, "EDIT"))

	principal := &domain.Principal{Kind: domain.KindManaged, ID: user.ID, Name: user.Username}
	// OR semantics: the second required permission matches.
	assert.Equal(t, Allow, f.enforcer.Authorize(ctx, principal, []string{"ADMIN", "EDIT"}))
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, []string{"ADMIN"}))
}

func TestAuthorizeUsesTeamInheritance(t *testing.T) {
	f, ctx := setupAccess(t)

	team := f.createTeam(t, ctx, "Admin")
	f.createPermission(t, ctx, "MANAGE_USERS")
	require.NoError(t, f.teams.GrantPermission(ctx, team.ID, "MANAGE_USERS"))

	user := f.createUser(t, ctx, domain.KindOidc, "bob")
	_, err := f.users.AddToTeam(ctx, user, team.ID)
	require.NoError(t, err)

	principal := &domain.Principal{Kind: domain.KindOidc, ID: user.ID, Name: user.Username}
	assert.Equal(t, Allow, f.enforcer.Authorize(ctx, principal, []string{"MANAGE_USERS"}))
}

func TestAuthorizeReResolvesPrincipalFromStore(t *testing.T) {
	f, ctx := setupAccess(t)

	user := f.createUser(t, ctx, domain.KindManaged, "alice")
	f.createPermission(t, ctx, "VIEW")
	require.NoError(t, f.users.GrantPermission(ctx, user, "VIEW"))

	principal := &domain.Principal{Kind: domain.KindManaged, ID: user.ID, Name: user.Username}
	require.Equal(t, Allow, f.enforcer.Authorize(ctx, principal, []string{"VIEW"}))

	// Once the user is gone, the stale principal reference must deny.
	require.NoError(t, f.users.Delete(ctx, domain.KindManaged, "alice"))
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, []string{"VIEW"}))
}

func TestAuthorizeDeniesSuspendedUser(t *testing.T) {
	f, ctx := setupAccess(t)

	user := f.createUser(t, ctx, domain.KindManaged, "alice")
	f.createPermission(t, ctx, "VIEW")
	require.NoError(t, f.users.GrantPermission(ctx, user, "VIEW"))

	principal := &domain.Principal{Kind: domain.KindManaged, ID: user.ID, Name: user.Username}
	require.Equal(t, Allow, f.enforcer.Authorize(ctx, principal, []string{"VIEW"}))

	// Suspension takes effect immediately, even for sessions issued
	// before the account was suspended.
	user.Suspended = true
	_, err := f.users.Update(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, []string{"VIEW"}))

	entries, _, err := f.audit.List(ctx, domain.PageRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "DENIED", entries[0].Status)
}

func TestAuthorizeAPIKeyThroughTeams(t *testing.T) {
	f, ctx := setupAccess(t)

	team := f.createTeam(t, ctx, "Automation")
	f.createPermission(t, ctx, "TRIGGER_BUILD")
	require.NoError(t, f.teams.GrantPermission(ctx, team.ID, "TRIGGER_BUILD"))

	key, err := f.apiKeys.Create(ctx, &domain.APIKey{KeyPrefix: "tg_ci", KeyHash: "h"})
	require.NoError(t, err)
	_, err = f.apiKeys.AddToTeam(ctx, key.ID, team.ID)
	require.NoError(t, err)

	principal := &domain.Principal{Kind: domain.KindAPIKey, ID: key.ID, Name: key.KeyPrefix}
	assert.Equal(t, Allow, f.enforcer.Authorize(ctx, principal, []string{"TRIGGER_BUILD"}))
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, []string{"DELETE_EVERYTHING"}))
}

func TestAuthorizeDeniedAPIKeyNotInStore(t *testing.T) {
	f, ctx := setupAccess(t)

	principal := &domain.Principal{Kind: domain.KindAPIKey, ID: "revoked", Name: "tg_gone"}
	assert.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, []string{"VIEW"}))
}

func TestAuthorizeRecordsDecision(t *testing.T) {
	f, ctx := setupAccess(t)

	user := f.createUser(t, ctx, domain.KindManaged, "alice")
	principal := &domain.Principal{Kind: domain.KindManaged, ID: user.ID, Name: user.Username}
	require.Equal(t, Deny, f.enforcer.Authorize(ctx, principal, []string{"VIEW"}))

	entries, _, err := f.audit.List(ctx, domain.PageRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "alice", entries[0].PrincipalName)
	assert.Equal(t, "DENIED", entries[0].Status)
}
