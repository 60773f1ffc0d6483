package domain

import "context"

// UserRepository provides access to the three user storage partitions.
// Every operation that takes a kind routes to the partition for that kind;
// passing KindAPIKey or an unknown kind is a programming error and yields a
// ValidationError.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByUsername(ctx context.Context, kind PrincipalKind, username string) (*User, error)
	GetByID(ctx context.Context, kind PrincipalKind, id string) (*User, error)
	List(ctx context.Context, kind PrincipalKind, page PageRequest) ([]User, int64, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, kind PrincipalKind, username string) error

	// Teams returns the teams the user belongs to, in membership insertion
	// order.
	Teams(ctx context.Context, u *User) ([]Team, error)

	// DirectPermissions returns permissions granted directly to the user,
	// in grant insertion order.
	DirectPermissions(ctx context.Context, u *User) ([]Permission, error)

	// HasDirectPermission reports whether the named permission is granted
	// directly to the user. Absence of the permission is not an error.
	HasDirectPermission(ctx context.Context, u *User, name string) (bool, error)

	GrantPermission(ctx context.Context, u *User, name string) error
	RevokePermission(ctx context.Context, u *User, name string) error

	// AddToTeam and RemoveFromTeam are idempotent membership primitives.
	// Add returns false when the user is already a member; Remove returns
	// false when the user was not a member. Each call is atomic.
	AddToTeam(ctx context.Context, u *User, teamID string) (bool, error)
	RemoveFromTeam(ctx context.Context, u *User, teamID string) (bool, error)
}

// TeamRepository provides team storage and team-level permission grants.
type TeamRepository interface {
	Create(ctx context.Context, t *Team) (*Team, error)
	GetByID(ctx context.Context, id string) (*Team, error)
	GetByName(ctx context.Context, name string) (*Team, error)
	List(ctx context.Context, page PageRequest) ([]Team, int64, error)
	Rename(ctx context.Context, id, name string) (*Team, error)
	Delete(ctx context.Context, id string) error

	// Permissions returns the team's directly granted permissions in grant
	// insertion order.
	Permissions(ctx context.Context, teamID string) ([]Permission, error)
	HasPermission(ctx context.Context, teamID, name string) (bool, error)
	GrantPermission(ctx context.Context, teamID, name string) error
	RevokePermission(ctx context.Context, teamID, name string) error
}

// PermissionRepository provides the permission catalog.
type PermissionRepository interface {
	Create(ctx context.Context, p *Permission) (*Permission, error)
	GetByName(ctx context.Context, name string) (*Permission, error)
	List(ctx context.Context, page PageRequest) ([]Permission, int64, error)
	Delete(ctx context.Context, name string) error
}

// MappingRepository provides team↔external-group mapping storage for both
// directory (LDAP DN) and OIDC group mappings, and the OIDC group catalog.
type MappingRepository interface {
	CreateDirectoryMapping(ctx context.Context, teamID, dn string) (*MappedDirectoryGroup, error)
	DeleteDirectoryMapping(ctx context.Context, id string) error
	DirectoryMappingsForTeam(ctx context.Context, teamID string) ([]MappedDirectoryGroup, error)
	DirectoryMappingsForDN(ctx context.Context, dn string) ([]MappedDirectoryGroup, error)
	IsDirectoryMapped(ctx context.Context, teamID, dn string) (bool, error)

	CreateOidcGroup(ctx context.Context, name string) (*OidcGroup, error)
	GetOidcGroupByName(ctx context.Context, name string) (*OidcGroup, error)
	ListOidcGroups(ctx context.Context, page PageRequest) ([]OidcGroup, int64, error)
	DeleteOidcGroup(ctx context.Context, id string) error

	CreateOidcMapping(ctx context.Context, teamID, groupID string) (*MappedOidcGroup, error)
	DeleteOidcMapping(ctx context.Context, id string) error
	OidcMappingsForTeam(ctx context.Context, teamID string) ([]MappedOidcGroup, error)
	OidcMappingsForGroup(ctx context.Context, groupID string) ([]MappedOidcGroup, error)
	IsOidcMapped(ctx context.Context, teamID, groupID string) (bool, error)
}

// APIKeyRepository provides API key storage. Keys are stored hashed; lookup
// by hash is the authentication path.
type APIKeyRepository interface {
	Create(ctx context.Context, k *APIKey) (*APIKey, error)
	GetByID(ctx context.Context, id string) (*APIKey, error)
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	List(ctx context.Context, page PageRequest) ([]APIKey, int64, error)
	Delete(ctx context.Context, id string) error

	// UpdateSecret replaces the stored prefix and hash, preserving the key
	// row identity and its team memberships.
	UpdateSecret(ctx context.Context, id, keyPrefix, keyHash string) error

	// TouchLastUsed records that the key authenticated a request. Best
	// effort; callers may ignore the error.
	TouchLastUsed(ctx context.Context, id string) error

	// Teams returns the teams the key belongs to, in membership insertion
	// order.
	Teams(ctx context.Context, keyID string) ([]Team, error)

	// AddToTeam and RemoveFromTeam follow the same idempotent contract as
	// the user membership primitives.
	AddToTeam(ctx context.Context, keyID, teamID string) (bool, error)
	RemoveFromTeam(ctx context.Context, keyID, teamID string) (bool, error)
}

// AuditRepository records security-relevant events. Implementations must
// never fail a caller's primary operation; callers ignore insert errors.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, page PageRequest) ([]AuditEntry, int64, error)
}
