package access

import (
	"context"

	"teamgate/internal/domain"
)

// PermissionService provides the permission catalog.
type PermissionService struct {
	permissions domain.PermissionRepository
	audit       domain.AuditRepository
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(permissions domain.PermissionRepository, audit domain.AuditRepository) *PermissionService {
	return &PermissionService{permissions: permissions, audit: audit}
}

// Create validates and persists a new permission.
func (s *PermissionService) Create(ctx context.Context, req *domain.CreatePermissionRequest) (*domain.Permission, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.permissions.Create(ctx, &domain.Permission{Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: p.Name,
		Action:        "CREATE_PERMISSION",
		Status:        "ALLOWED",
	})
	return p, nil
}

// GetByName returns a permission by name.
func (s *PermissionService) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	return s.permissions.GetByName(ctx, name)
}

// List returns a paginated, name-ordered list of permissions.
func (s *PermissionService) List(ctx context.Context, page domain.PageRequest) ([]domain.Permission, int64, error) {
	return s.permissions.List(ctx, page)
}

// Delete removes a permission and, through the store, all grants of it.
func (s *PermissionService) Delete(ctx context.Context, name string) error {
	if err := s.permissions.Delete(ctx, name); err != nil {
		return err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: name,
		Action:        "DELETE_PERMISSION",
		Status:        "ALLOWED",
	})
	return nil
}
