package repository

import (
	"context"
	"database/sql"

	"teamgate/internal/domain"
)

// PermissionRepo implements domain.PermissionRepository.
type PermissionRepo struct {
	db *sql.DB
}

// NewPermissionRepo creates a new PermissionRepo.
func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

func (r *PermissionRepo) Create(ctx context.Context, p *domain.Permission) (*domain.Permission, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (name, description) VALUES (?, ?)`, p.Name, p.Description)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByName(ctx, p.Name)
}

func (r *PermissionRepo) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	var p domain.Permission
	err := r.db.QueryRowContext(ctx,
		`SELECT name, description FROM permissions WHERE name = ?`, name).
		Scan(&p.Name, &p.Description)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &p, nil
}

func (r *PermissionRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Permission, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM permissions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description FROM permissions ORDER BY name ASC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.Name, &p.Description); err != nil {
			return nil, 0, err
		}
		perms = append(perms, p)
	}
	return perms, total, rows.Err()
}

func (r *PermissionRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE name = ?`, name)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("permission %q not found", name)
	}
	return nil
}
