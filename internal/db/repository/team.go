package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"teamgate/internal/domain"
)

// TeamRepo implements domain.TeamRepository.
type TeamRepo struct {
	db *sql.DB
}

// NewTeamRepo creates a new TeamRepo.
func NewTeamRepo(db *sql.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

func (r *TeamRepo) Create(ctx context.Context, t *domain.Team) (*domain.Team, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, name) VALUES (?, ?)`, t.ID, t.Name)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, t.ID)
}

func (r *TeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &t, nil
}

func (r *TeamRepo) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE name = ?`, name).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &t, nil
}

func (r *TeamRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Team, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM teams ORDER BY name ASC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		teams = append(teams, t)
	}
	return teams, total, rows.Err()
}

func (r *TeamRepo) Rename(ctx context.Context, id, name string) (*domain.Team, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE teams SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("team %q not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *TeamRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("team %q not found", id)
	}
	return nil
}

func (r *TeamRepo) Permissions(ctx context.Context, teamID string) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.name, p.description FROM permissions p
		 JOIN team_permissions j ON j.permission_name = p.name
		 WHERE j.team_id = ? ORDER BY j.rowid`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *TeamRepo) HasPermission(ctx context.Context, teamID, name string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_permissions WHERE team_id = ? AND permission_name = ?`,
		teamID, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TeamRepo) GrantPermission(ctx context.Context, teamID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO team_permissions (team_id, permission_name) VALUES (?, ?)`,
		teamID, name)
	return mapDBError(err)
}

func (r *TeamRepo) RevokePermission(ctx context.Context, teamID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM team_permissions WHERE team_id = ? AND permission_name = ?`, teamID, name)
	return mapDBError(err)
}
