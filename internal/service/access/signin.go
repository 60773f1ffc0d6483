package access

import (
	"context"
	"errors"
	"log/slog"

	"teamgate/internal/domain"
)

// SignInService runs the post-authentication identity sync workflows. The
// directory or OIDC provider has already verified the credential; this
// service reconciles the local user record and its team memberships against
// what the provider asserted.
type SignInService struct {
	users        domain.UserRepository
	synchronizer *Synchronizer
	provision    bool
	logger       *slog.Logger
}

// NewSignInService creates a new SignInService. With provision enabled,
// unknown OIDC users are created on first sign-in.
func NewSignInService(users domain.UserRepository, synchronizer *Synchronizer, provision bool, logger *slog.Logger) *SignInService {
	return &SignInService{
		users:        users,
		synchronizer: synchronizer,
		provision:    provision,
		logger:       logger.With("component", "signin"),
	}
}

// OidcSignIn resolves or provisions the OIDC user for a validated token,
// syncs the stored subject identifier and email, and reconciles team
// memberships from the token's group claims.
func (s *SignInService) OidcSignIn(ctx context.Context, username, subject, email string, groups []string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, domain.KindOidc, username)
	if err != nil {
		var nferr *domain.NotFoundError
		if !errors.As(err, &nferr) {
			return nil, err
		}
		if !s.provision {
			return nil, domain.ErrAccessDenied("user %q is not provisioned", username)
		}
		user, err = s.users.Create(ctx, &domain.User{
			Kind:              domain.KindOidc,
			Username:          username,
			SubjectIdentifier: subject,
			Email:             email,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("provisioned oidc user", "username", username)
	}

	if user.SubjectIdentifier != "" && user.SubjectIdentifier != subject {
		return nil, domain.ErrAccessDenied("subject identifier mismatch for user %q", username)
	}
	if user.SubjectIdentifier != subject || user.Email != email {
		user.SubjectIdentifier = subject
		user.Email = email
		if user, err = s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.synchronizer.Synchronize(ctx, user, groups)
}

// DirectorySignIn syncs a directory user's DN and team memberships from the
// group DNs asserted by the directory after a successful bind.
func (s *SignInService) DirectorySignIn(ctx context.Context, username, dn string, groupDNs []string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, domain.KindDirectory, username)
	if err != nil {
		return nil, err
	}

	if user.DN != dn {
		user.DN = dn
		if user, err = s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.synchronizer.Synchronize(ctx, user, groupDNs)
}
