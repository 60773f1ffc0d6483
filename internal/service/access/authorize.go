package access

import (
	"context"
	"log/slog"

	"teamgate/internal/domain"
)

// Decision is the outcome of an authorization check. There is no partial
// grant; exactly one of Allow or Deny is returned.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "ALLOW"
	}
	return "DENY"
}

// Enforcer is the single authorization decision point consumed by the
// request boundary. It fails closed: an absent principal, an empty
// requirement list, a principal that no longer resolves, or any store error
// all yield Deny. A Deny is externally indistinguishable from a plain
// permission gap.
type Enforcer struct {
	users     domain.UserRepository
	evaluator *Evaluator
	audit     domain.AuditRepository
	logger    *slog.Logger
}

// NewEnforcer creates a new Enforcer.
func NewEnforcer(users domain.UserRepository, evaluator *Evaluator, audit domain.AuditRepository, logger *slog.Logger) *Enforcer {
	return &Enforcer{users: users, evaluator: evaluator, audit: audit, logger: logger.With("component", "authz")}
}

// Authorize decides whether the principal holds at least one of the required
// permissions. Required permissions have OR semantics; the first match
// allows. User principals are re-resolved from the store by their stable
// identifier rather than trusting the caller's copy.
func (e *Enforcer) Authorize(ctx context.Context, principal *domain.Principal, required []string) Decision {
	if principal == nil || !principal.Kind.Valid() {
		e.logger.Warn("authorization attempted with no resolved principal")
		return Deny
	}
	if len(required) == 0 {
		e.logAudit(ctx, principal.Name, "", Deny)
		return Deny
	}

	if principal.Kind == domain.KindAPIKey {
		return e.authorizeAPIKey(ctx, principal, required)
	}
	return e.authorizeUser(ctx, principal, required)
}

func (e *Enforcer) authorizeAPIKey(ctx context.Context, principal *domain.Principal, required []string) Decision {
	for _, name := range required {
		has, err := e.evaluator.HasAPIKeyPermission(ctx, principal.ID, name)
		if err != nil {
			e.logger.Warn("api key permission check failed, denying",
				"key_prefix", principal.Name, "permission", name, "error", err)
			return Deny
		}
		if has {
			e.logAudit(ctx, principal.Name, name, Allow)
			return Allow
		}
	}
	e.logAudit(ctx, principal.Name, required[0], Deny)
	return Deny
}

func (e *Enforcer) authorizeUser(ctx context.Context, principal *domain.Principal, required []string) Decision {
	user, err := e.users.GetByUsername(ctx, principal.Kind, principal.Name)
	if err != nil {
		e.logger.Warn("principal did not re-resolve, denying",
			"username", principal.Name, "kind", principal.Kind, "error", err)
		return Deny
	}
	if user.Suspended {
		e.logger.Warn("suspended user denied", "username", user.Username, "kind", user.Kind)
		e.logAudit(ctx, user.Username, required[0], Deny)
		return Deny
	}

	for _, name := range required {
		has, err := e.evaluator.HasPermission(ctx, user, name, true)
		if err != nil {
			e.logger.Warn("permission check failed, denying",
				"username", user.Username, "permission", name, "error", err)
			return Deny
		}
		if has {
			e.logAudit(ctx, user.Username, name, Allow)
			return Allow
		}
	}
	e.logAudit(ctx, user.Username, required[0], Deny)
	return Deny
}

func (e *Enforcer) logAudit(ctx context.Context, principalName, permission string, d Decision) {
	status := "DENIED"
	if d == Allow {
		status = "ALLOWED"
	}
	_ = e.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: principalName,
		Action:        "AUTHORIZE " + permission,
		Status:        status,
	})
}
