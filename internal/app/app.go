// Package app provides application-level wiring and dependency injection
// for the teamgate server.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"teamgate/internal/config"
	"teamgate/internal/db/repository"
	"teamgate/internal/domain"
	"teamgate/internal/service/access"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API handler and router need.
type Services struct {
	User       *access.UserService
	Team       *access.TeamService
	Permission *access.PermissionService
	Mapping    *access.MappingService
	APIKey     *access.APIKeyService
	Evaluator  *access.Evaluator
	Enforcer   *access.Enforcer
	SignIn     *access.SignInService
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Audit    domain.AuditRepository
}

// New wires all repositories and services from the provided deps and seeds
// the well-known permissions and bootstrap admin.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Repositories (write-pool) ===
	userRepo := repository.NewUserRepo(deps.WriteDB)
	teamRepo := repository.NewTeamRepo(deps.WriteDB)
	permRepo := repository.NewPermissionRepo(deps.WriteDB)
	mappingRepo := repository.NewMappingRepo(deps.WriteDB)
	apiKeyRepo := repository.NewAPIKeyRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)

	// === Evaluation reads from the read-pool ===
	readUserRepo := repository.NewUserRepo(deps.ReadDB)
	readTeamRepo := repository.NewTeamRepo(deps.ReadDB)
	readKeyRepo := repository.NewAPIKeyRepo(deps.ReadDB)

	// === Core services ===
	resolver := access.NewMappingService(mappingRepo, teamRepo, auditRepo)
	synchronizer := access.NewSynchronizer(userRepo, resolver, deps.Logger.With("component", "sync"))
	evaluator := access.NewEvaluator(readUserRepo, readTeamRepo, readKeyRepo)
	enforcer := access.NewEnforcer(readUserRepo, evaluator, auditRepo, deps.Logger.With("component", "enforcer"))
	keySvc := access.NewAPIKeyService(apiKeyRepo, teamRepo, auditRepo)
	userSvc := access.NewUserService(userRepo, teamRepo, auditRepo)
	teamSvc := access.NewTeamService(teamRepo, keySvc, auditRepo)
	permSvc := access.NewPermissionService(permRepo, auditRepo)
	signIn := access.NewSignInService(userRepo, synchronizer, cfg.Auth.ProvisionUsers, deps.Logger.With("component", "signin"))

	if err := seedIdentityStore(ctx, cfg, permSvc, userSvc, deps.Logger); err != nil {
		return nil, err
	}

	return &App{
		Services: Services{
			User:       userSvc,
			Team:       teamSvc,
			Permission: permSvc,
			Mapping:    resolver,
			APIKey:     keySvc,
			Evaluator:  evaluator,
			Enforcer:   enforcer,
			SignIn:     signIn,
		},
		Audit: auditRepo,
	}, nil
}
