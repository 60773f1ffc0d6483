package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"teamgate/internal/domain"
)

// MappingRepo implements domain.MappingRepository.
type MappingRepo struct {
	db *sql.DB
}

// NewMappingRepo creates a new MappingRepo.
func NewMappingRepo(db *sql.DB) *MappingRepo {
	return &MappingRepo{db: db}
}

func (r *MappingRepo) CreateDirectoryMapping(ctx context.Context, teamID, dn string) (*domain.MappedDirectoryGroup, error) {
	m := domain.MappedDirectoryGroup{ID: uuid.NewString(), TeamID: teamID, DN: dn}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mapped_directory_groups (id, team_id, dn) VALUES (?, ?, ?)`,
		m.ID, m.TeamID, m.DN)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &m, nil
}

func (r *MappingRepo) DeleteDirectoryMapping(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mapped_directory_groups WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("directory group mapping %q not found", id)
	}
	return nil
}

func (r *MappingRepo) DirectoryMappingsForTeam(ctx context.Context, teamID string) ([]domain.MappedDirectoryGroup, error) {
	return r.directoryMappings(ctx,
		`SELECT id, team_id, dn FROM mapped_directory_groups WHERE team_id = ? ORDER BY rowid`, teamID)
}

func (r *MappingRepo) DirectoryMappingsForDN(ctx context.Context, dn string) ([]domain.MappedDirectoryGroup, error) {
	return r.directoryMappings(ctx,
		`SELECT id, team_id, dn FROM mapped_directory_groups WHERE dn = ? ORDER BY rowid`, dn)
}

func (r *MappingRepo) directoryMappings(ctx context.Context, query, arg string) ([]domain.MappedDirectoryGroup, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []domain.MappedDirectoryGroup
	for rows.Next() {
		var m domain.MappedDirectoryGroup
		if err := rows.Scan(&m.ID, &m.TeamID, &m.DN); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *MappingRepo) IsDirectoryMapped(ctx context.Context, teamID, dn string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mapped_directory_groups WHERE team_id = ? AND dn = ?`,
		teamID, dn).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MappingRepo) CreateOidcGroup(ctx context.Context, name string) (*domain.OidcGroup, error) {
	g := domain.OidcGroup{ID: uuid.NewString(), Name: name}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO oidc_groups (id, name) VALUES (?, ?)`, g.ID, g.Name)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &g, nil
}

func (r *MappingRepo) GetOidcGroupByName(ctx context.Context, name string) (*domain.OidcGroup, error) {
	var g domain.OidcGroup
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM oidc_groups WHERE name = ?`, name).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &g, nil
}

func (r *MappingRepo) ListOidcGroups(ctx context.Context, page domain.PageRequest) ([]domain.OidcGroup, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM oidc_groups`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM oidc_groups ORDER BY name ASC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var groups []domain.OidcGroup
	for rows.Next() {
		var g domain.OidcGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, 0, err
		}
		groups = append(groups, g)
	}
	return groups, total, rows.Err()
}

func (r *MappingRepo) DeleteOidcGroup(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM oidc_groups WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("oidc group %q not found", id)
	}
	return nil
}

func (r *MappingRepo) CreateOidcMapping(ctx context.Context, teamID, groupID string) (*domain.MappedOidcGroup, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mapped_oidc_groups (id, team_id, group_id) VALUES (?, ?, ?)`,
		id, teamID, groupID)
	if err != nil {
		return nil, mapDBError(err)
	}

	var m domain.MappedOidcGroup
	err = r.db.QueryRowContext(ctx,
		`SELECT m.id, m.team_id, m.group_id, g.name
		 FROM mapped_oidc_groups m JOIN oidc_groups g ON g.id = m.group_id
		 WHERE m.id = ?`, id).
		Scan(&m.ID, &m.TeamID, &m.GroupID, &m.GroupName)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &m, nil
}

func (r *MappingRepo) DeleteOidcMapping(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mapped_oidc_groups WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("oidc group mapping %q not found", id)
	}
	return nil
}

func (r *MappingRepo) OidcMappingsForTeam(ctx context.Context, teamID string) ([]domain.MappedOidcGroup, error) {
	return r.oidcMappings(ctx,
		`SELECT m.id, m.team_id, m.group_id, g.name
		 FROM mapped_oidc_groups m JOIN oidc_groups g ON g.id = m.group_id
		 WHERE m.team_id = ? ORDER BY m.rowid`, teamID)
}

func (r *MappingRepo) OidcMappingsForGroup(ctx context.Context, groupID string) ([]domain.MappedOidcGroup, error) {
	return r.oidcMappings(ctx,
		`SELECT m.id, m.team_id, m.group_id, g.name
		 FROM mapped_oidc_groups m JOIN oidc_groups g ON g.id = m.group_id
		 WHERE m.group_id = ? ORDER BY m.rowid`, groupID)
}

func (r *MappingRepo) oidcMappings(ctx context.Context, query, arg string) ([]domain.MappedOidcGroup, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []domain.MappedOidcGroup
	for rows.Next() {
		var m domain.MappedOidcGroup
		if err := rows.Scan(&m.ID, &m.TeamID, &m.GroupID, &m.GroupName); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *MappingRepo) IsOidcMapped(ctx context.Context, teamID, groupID string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mapped_oidc_groups WHERE team_id = ? AND group_id = ?`,
		teamID, groupID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
