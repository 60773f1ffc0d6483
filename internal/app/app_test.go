package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamgate/internal/config"
	"teamgate/internal/db"
	"teamgate/internal/domain"
)

func newTestDeps(t *testing.T, cfg *config.Config) Deps {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)
	return Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewSeedsWellKnownPermissions(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}
	a, err := New(ctx, newTestDeps(t, cfg))
	require.NoError(t, err)

	for _, name := range []string{
		domain.PermAccessManagement,
		domain.PermViewAccessManagement,
		domain.PermSystemConfiguration,
	} {
		perm, err := a.Services.Permission.GetByName(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, perm.Name)
	}

	// No bootstrap password, so no admin user.
	assert.False(t, cfg.Auth.ProvisionUsers)
	_, err = a.Services.User.GetByUsername(ctx, domain.KindManaged, "admin")
	assert.Error(t, err)
}

func TestNewSeedsBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Auth.BootstrapAdminUsername = "root"
	cfg.Auth.BootstrapAdminPassword = "correct-horse-battery"

	deps := newTestDeps(t, cfg)
	a, err := New(ctx, deps)
	require.NoError(t, err)

	admin, err := a.Services.User.GetByUsername(ctx, domain.KindManaged, "root")
	require.NoError(t, err)
	assert.True(t, admin.ForcePasswordChange)

	has, err := a.Services.Evaluator.HasPermission(ctx, admin, domain.PermAccessManagement, false)
	require.NoError(t, err)
	assert.True(t, has)

	// Wiring twice over the same store must not fail or duplicate.
	_, err = New(ctx, deps)
	require.NoError(t, err)
}
