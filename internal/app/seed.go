package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"teamgate/internal/config"
	"teamgate/internal/domain"
	"teamgate/internal/service/access"
)

// wellKnownPermissions are created on every start if absent. The enforcement
// layer references them by name.
var wellKnownPermissions = []domain.CreatePermissionRequest{
	{Name: domain.PermAccessManagement, Description: "Manage users, teams, API keys, and group mappings"},
	{Name: domain.PermViewAccessManagement, Description: "Read-only view of access management data"},
	{Name: domain.PermSystemConfiguration, Description: "Define and remove permissions"},
}

// seedIdentityStore makes sure the well-known permissions exist and creates
// the bootstrap admin on first start. Idempotent.
func seedIdentityStore(ctx context.Context, cfg *config.Config, perms *access.PermissionService, users *access.UserService, logger *slog.Logger) error {
	for _, req := range wellKnownPermissions {
		if _, err := perms.Create(ctx, &req); err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				continue
			}
			return fmt.Errorf("seed permission %s: %w", req.Name, err)
		}
	}

	if cfg.Auth.BootstrapAdminPassword == "" {
		logger.Info("bootstrap admin seeding skipped, AUTH_BOOTSTRAP_ADMIN_PASSWORD not set")
		return nil
	}

	username := cfg.Auth.BootstrapAdminUsername
	if _, err := users.GetByUsername(ctx, domain.KindManaged, username); err == nil {
		return nil
	} else {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("lookup bootstrap admin: %w", err)
		}
	}

	admin, err := users.CreateManaged(ctx, &domain.CreateManagedUserRequest{
		Username:            username,
		FullName:            "Bootstrap Administrator",
		Password:            cfg.Auth.BootstrapAdminPassword,
		ForcePasswordChange: true,
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	for _, req := range wellKnownPermissions {
		if err := users.GrantPermission(ctx, admin, req.Name); err != nil {
			return fmt.Errorf("grant %s to bootstrap admin: %w", req.Name, err)
		}
	}
	logger.Info("bootstrap admin created", "username", username)
	return nil
}
