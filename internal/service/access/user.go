package access

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"teamgate/internal/domain"
)

// UserService provides user lifecycle and membership administration across
// the three user partitions.
type UserService struct {
	users domain.UserRepository
	teams domain.TeamRepository
	audit domain.AuditRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, teams domain.TeamRepository, audit domain.AuditRepository) *UserService {
	return &UserService{users: users, teams: teams, audit: audit}
}

// CreateManaged creates a locally managed user with a bcrypt password hash.
func (s *UserService) CreateManaged(ctx context.Context, req *domain.CreateManagedUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, &domain.User{
		Kind:                domain.KindManaged,
		Username:            req.Username,
		FullName:            req.FullName,
		Email:               req.Email,
		PasswordHash:        string(hash),
		ForcePasswordChange: req.ForcePasswordChange,
		Suspended:           req.Suspended,
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, user.Username, "CREATE_MANAGED_USER")
	return user, nil
}

// CreateExternal creates a directory or OIDC user record. The DN or subject
// identifier is filled in when the user first signs in.
func (s *UserService) CreateExternal(ctx context.Context, req *domain.CreateExternalUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, &domain.User{Kind: req.Kind, Username: req.Username})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, user.Username, "CREATE_EXTERNAL_USER")
	return user, nil
}

// UpdateManaged updates a managed user. A non-empty password rehashes the
// credential and restamps the last-change time.
func (s *UserService) UpdateManaged(ctx context.Context, req *domain.UpdateManagedUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, domain.KindManaged, req.Username)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Email = req.Email
	user.ForcePasswordChange = req.ForcePasswordChange
	user.Suspended = req.Suspended
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		user.LastPasswordChange = time.Now().UTC()
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, updated.Username, "UPDATE_MANAGED_USER")
	return updated, nil
}

// ValidateCredentials checks a managed user's password. A suspended user or
// a bad password both fail with AccessDenied; the caller cannot tell which.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, domain.KindManaged, username)
	if err != nil {
		var nferr *domain.NotFoundError
		if errors.As(err, &nferr) {
			s.logAuditStatus(ctx, username, "LOGIN", "DENIED")
			return nil, domain.ErrAccessDenied("invalid credentials")
		}
		return nil, err
	}
	if user.Suspended {
		s.logAuditStatus(ctx, username, "LOGIN", "DENIED")
		return nil, domain.ErrAccessDenied("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logAuditStatus(ctx, username, "LOGIN", "DENIED")
		return nil, domain.ErrAccessDenied("invalid credentials")
	}
	s.logAudit(ctx, username, "LOGIN")
	return user, nil
}

// ResolveUserPrincipal finds the user behind a bare username, trying the
// partitions in order: managed, then directory, then OIDC.
func (s *UserService) ResolveUserPrincipal(ctx context.Context, username string) (*domain.User, error) {
	for _, kind := range []domain.PrincipalKind{domain.KindManaged, domain.KindDirectory, domain.KindOidc} {
		user, err := s.users.GetByUsername(ctx, kind, username)
		if err == nil {
			return user, nil
		}
		var nferr *domain.NotFoundError
		if !errors.As(err, &nferr) {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound("user %q not found", username)
}

// GetByUsername returns a user from the partition for the given kind.
func (s *UserService) GetByUsername(ctx context.Context, kind domain.PrincipalKind, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, kind, username)
}

// List returns a paginated list of users of one kind.
func (s *UserService) List(ctx context.Context, kind domain.PrincipalKind, page domain.PageRequest) ([]domain.User, int64, error) {
	return s.users.List(ctx, kind, page)
}

// Delete removes a user and, through the store, all memberships and grants.
func (s *UserService) Delete(ctx context.Context, kind domain.PrincipalKind, username string) error {
	if err := s.users.Delete(ctx, kind, username); err != nil {
		return err
	}
	s.logAudit(ctx, username, "DELETE_USER")
	return nil
}

// Teams returns the user's team memberships in membership order.
func (s *UserService) Teams(ctx context.Context, user *domain.User) ([]domain.Team, error) {
	return s.users.Teams(ctx, user)
}

// AddToTeam adds the user to a team. Returns false if already a member.
func (s *UserService) AddToTeam(ctx context.Context, user *domain.User, teamID string) (bool, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return false, err
	}
	added, err := s.users.AddToTeam(ctx, user, teamID)
	if err != nil {
		return false, err
	}
	if added {
		s.logAudit(ctx, user.Username, "ADD_TO_TEAM")
	}
	return added, nil
}

// RemoveFromTeam removes the user from a team. Returns false if not a
// member.
func (s *UserService) RemoveFromTeam(ctx context.Context, user *domain.User, teamID string) (bool, error) {
	removed, err := s.users.RemoveFromTeam(ctx, user, teamID)
	if err != nil {
		return false, err
	}
	if removed {
		s.logAudit(ctx, user.Username, "REMOVE_FROM_TEAM")
	}
	return removed, nil
}

// GrantPermission grants a permission directly to the user.
func (s *UserService) GrantPermission(ctx context.Context, user *domain.User, name string) error {
	if err := s.users.GrantPermission(ctx, user, name); err != nil {
		return err
	}
	s.logAudit(ctx, user.Username, "GRANT_PERMISSION "+name)
	return nil
}

// RevokePermission revokes a directly granted permission from the user.
func (s *UserService) RevokePermission(ctx context.Context, user *domain.User, name string) error {
	if err := s.users.RevokePermission(ctx, user, name); err != nil {
		return err
	}
	s.logAudit(ctx, user.Username, "REVOKE_PERMISSION "+name)
	return nil
}

// DirectPermissions returns the user's directly granted permissions.
func (s *UserService) DirectPermissions(ctx context.Context, user *domain.User) ([]domain.Permission, error) {
	return s.users.DirectPermissions(ctx, user)
}

func (s *UserService) logAudit(ctx context.Context, username, action string) {
	s.logAuditStatus(ctx, username, action, "ALLOWED")
}

func (s *UserService) logAuditStatus(ctx context.Context, username, action, status string) {
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: username,
		Action:        action,
		Status:        status,
	})
}
