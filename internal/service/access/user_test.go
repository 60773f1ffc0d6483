package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"teamgate/internal/domain"
)

func TestCreateManagedUserHashesPassword(t *testing.T) {
	f, ctx := setupAccess(t)

	user, err := f.userSvc.CreateManaged(ctx, &domain.CreateManagedUserRequest{
		Username: "alice",
		FullName: "Alice Example",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestValidateCredentials(t *testing.T) {
	f, ctx := setupAccess(t)

	_, err := f.userSvc.CreateManaged(ctx, &domain.CreateManagedUserRequest{
		Username: "alice", Password: "s3cret",
	})
	require.NoError(t, err)

	user, err := f.userSvc.ValidateCredentials(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	var aerr *domain.AccessDeniedError
	_, err = f.userSvc.ValidateCredentials(ctx, "alice", "wrong")
	require.ErrorAs(t, err, &aerr)

	// Unknown users fail the same way as bad passwords.
	_, err = f.userSvc.ValidateCredentials(ctx, "ghost", "s3cret")
	require.ErrorAs(t, err, &aerr)
}

func TestValidateCredentialsRejectsSuspendedUser(t *testing.T) {
	f, ctx := setupAccess(t)

	_, err := f.userSvc.CreateManaged(ctx, &domain.CreateManagedUserRequest{
		Username: "alice", Password: "s3cret",
	})
	require.NoError(t, err)

	_, err = f.userSvc.UpdateManaged(ctx, &domain.UpdateManagedUserRequest{
		Username: "alice", Suspended: true,
	})
	require.NoError(t, err)

	var aerr *domain.AccessDeniedError
	_, err = f.userSvc.ValidateCredentials(ctx, "alice", "s3cret")
	require.ErrorAs(t, err, &aerr)
}

func TestUpdateManagedPasswordRestampsChangeTime(t *testing.T) {
	f, ctx := setupAccess(t)

	created, err := f.userSvc.CreateManaged(ctx, &domain.CreateManagedUserRequest{
		Username: "alice", Password: "old",
	})
	require.NoError(t, err)

	updated, err := f.userSvc.UpdateManaged(ctx, &domain.UpdateManagedUserRequest{
		Username: "alice", Password: "new",
	})
	require.NoError(t, err)

	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)
	assert.True(t, updated.LastPasswordChange.After(created.LastPasswordChange) ||
		updated.LastPasswordChange.Equal(created.LastPasswordChange))

	_, err = f.userSvc.ValidateCredentials(ctx, "alice", "new")
	require.NoError(t, err)
}

func TestResolveUserPrincipalPartitionOrder(t *testing.T) {
	f, ctx := setupAccess(t)

	// The same username exists as a directory and an OIDC user; directory
	// wins. A managed user with the name would win over both.
	f.createUser(t, ctx, domain.KindDirectory, "shared")
	f.createUser(t, ctx, domain.KindOidc, "shared")

	user, err := f.userSvc.ResolveUserPrincipal(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, domain.KindDirectory, user.Kind)

	_, err = f.userSvc.CreateManaged(ctx, &domain.CreateManagedUserRequest{
		Username: "shared", Password: "x",
	})
	require.NoError(t, err)

	user, err = f.userSvc.ResolveUserPrincipal(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, domain.KindManaged, user.Kind)
}

func TestResolveUserPrincipalUnknownIsNotFound(t *testing.T) {
	f, ctx := setupAccess(t)

	_, err := f.userSvc.ResolveUserPrincipal(ctx, "nobody")
	var nferr *domain.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestCreateExternalUserValidation(t *testing.T) {
	f, ctx := setupAccess(t)

	var verr *domain.ValidationError
	_, err := f.userSvc.CreateExternal(ctx, &domain.CreateExternalUserRequest{
		Username: "x", Kind: domain.KindManaged,
	})
	require.ErrorAs(t, err, &verr)

	user, err := f.userSvc.CreateExternal(ctx, &domain.CreateExternalUserRequest{
		Username: "x", Kind: domain.KindOidc,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindOidc, user.Kind)
}
