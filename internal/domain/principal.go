package domain

import "time"

// PrincipalKind discriminates the closed set of principal variants. Adding a
// kind requires extending every dispatch switch, which the compiler surfaces
// through the exhaustive default branches in the repositories.
type PrincipalKind string

const (
	// KindManaged is a locally managed user with a password credential.
	KindManaged PrincipalKind = "managed"
	// KindDirectory is a user backed by an external LDAP directory.
	KindDirectory PrincipalKind = "directory"
	// KindOidc is a user backed by an OpenID Connect provider.
	KindOidc PrincipalKind = "oidc"
	// KindAPIKey is a programmatic key whose only permission source is
	// its team memberships.
	KindAPIKey PrincipalKind = "apikey"
)

// IsUser reports whether the kind is one of the three user partitions.
func (k PrincipalKind) IsUser() bool {
	return k == KindManaged || k == KindDirectory || k == KindOidc
}

// Valid reports whether the kind names a known principal variant.
func (k PrincipalKind) Valid() bool {
	return k.IsUser() || k == KindAPIKey
}

// User represents a user principal of any of the three user kinds. A single
// struct carries the union of per-kind attributes; Kind selects which ones
// are meaningful and which storage partition holds the row.
type User struct {
	ID       string
	Username string
	Kind     PrincipalKind

	// Managed user attributes.
	FullName            string
	Email               string
	PasswordHash        string
	ForcePasswordChange bool
	Suspended           bool
	LastPasswordChange  time.Time

	// Directory user attributes. DN is the user's distinguished name,
	// synced from the directory on sign-in.
	DN string

	// OIDC user attributes. SubjectIdentifier is the provider's `sub`
	// claim, synced on first sign-in.
	SubjectIdentifier string

	CreatedAt time.Time
}

// Principal is a resolved reference to an authenticated actor, carried from
// the authentication layer to the authorization decision point. For user
// kinds, Name is the stable identifier used for re-resolution; for API keys,
// ID is the key row's identifier.
type Principal struct {
	Kind PrincipalKind
	ID   string
	Name string
}

// APIKey represents a programmatic access key. The raw key string is never
// stored; only its SHA-256 hash and a short prefix for identification.
type APIKey struct {
	ID         string
	Comment    string
	KeyPrefix  string // first 8 chars of the raw key
	KeyHash    string // SHA-256 of the raw key
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// CreateManagedUserRequest holds parameters for creating a managed user.
type CreateManagedUserRequest struct {
	Username            string
	FullName            string
	Email               string
	Password            string
	ForcePasswordChange bool
	Suspended           bool
}

// Validate checks that the request is well-formed.
func (r *CreateManagedUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	if r.Password == "" {
		return ErrValidation("password is required")
	}
	return nil
}

// UpdateManagedUserRequest holds parameters for updating a managed user.
// Password is optional; when set, the password hash and last-change
// timestamp are updated.
type UpdateManagedUserRequest struct {
	Username            string
	FullName            string
	Email               string
	Password            string
	ForcePasswordChange bool
	Suspended           bool
}

// Validate checks that the request is well-formed.
func (r *UpdateManagedUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	return nil
}

// CreateExternalUserRequest holds parameters for creating a directory or
// OIDC user record. The DN or subject identifier is synced when the user
// signs in for the first time.
type CreateExternalUserRequest struct {
	Username string
	Kind     PrincipalKind
}

// Validate checks that the request is well-formed.
func (r *CreateExternalUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	if r.Kind != KindDirectory && r.Kind != KindOidc {
		return ErrValidation("kind must be 'directory' or 'oidc'")
	}
	return nil
}

// CreateAPIKeyRequest holds parameters for minting a new API key.
type CreateAPIKeyRequest struct {
	TeamID  string
	Comment string
}

// Validate checks that the request is well-formed.
func (r *CreateAPIKeyRequest) Validate() error {
	if r.TeamID == "" {
		return ErrValidation("team_id is required")
	}
	return nil
}
