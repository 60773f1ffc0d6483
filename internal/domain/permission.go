package domain

import "time"

// Permission is a named capability. Identity and equality are by name.
type Permission struct {
	Name        string
	Description string
}

// Well-known permissions guarding the administrative API surface.
const (
	PermAccessManagement     = "ACCESS_MANAGEMENT"
	PermSystemConfiguration  = "SYSTEM_CONFIGURATION"
	PermViewAccessManagement = "VIEW_ACCESS_MANAGEMENT"
)

// AuditEntry records a security-relevant administrative action or
// authorization outcome.
type AuditEntry struct {
	ID            int64
	PrincipalName string
	Action        string
	Status        string // "ALLOWED" or "DENIED"
	CreatedAt     time.Time
}

// CreatePermissionRequest holds parameters for defining a new permission.
type CreatePermissionRequest struct {
	Name        string
	Description string
}

// Validate checks that the request is well-formed.
func (r *CreatePermissionRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("permission name is required")
	}
	return nil
}
