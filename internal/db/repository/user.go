package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"teamgate/internal/domain"
)

// UserRepo implements domain.UserRepository over the three SQLite user
// partitions.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	var err error
	switch u.Kind {
	case domain.KindManaged:
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO managed_users (id, username, full_name, email, password_hash, force_password_change, suspended)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.FullName, u.Email, u.PasswordHash,
			boolToInt(u.ForcePasswordChange), boolToInt(u.Suspended))
	case domain.KindDirectory:
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO directory_users (id, username, dn) VALUES (?, ?, ?)`,
			u.ID, u.Username, u.DN)
	case domain.KindOidc:
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO oidc_users (id, username, subject_identifier, email) VALUES (?, ?, ?, ?)`,
			u.ID, u.Username, u.SubjectIdentifier, u.Email)
	default:
		return nil, domain.ErrValidation("no user storage partition for principal kind %q", u.Kind)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, u.Kind, u.ID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, kind domain.PrincipalKind, username string) (*domain.User, error) {
	return r.getOne(ctx, kind, "username", username)
}

func (r *UserRepo) GetByID(ctx context.Context, kind domain.PrincipalKind, id string) (*domain.User, error) {
	return r.getOne(ctx, kind, "id", id)
}

func (r *UserRepo) getOne(ctx context.Context, kind domain.PrincipalKind, column, value string) (*domain.User, error) {
	switch kind {
	case domain.KindManaged:
		u := domain.User{Kind: kind}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, username, full_name, email, password_hash, force_password_change, suspended, last_password_change, created_at
			 FROM managed_users WHERE `+column+` = ?`, value).
			Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
				&u.ForcePasswordChange, &u.Suspended, &u.LastPasswordChange, &u.CreatedAt)
		if err != nil {
			return nil, mapDBError(err)
		}
		return &u, nil
	case domain.KindDirectory:
		u := domain.User{Kind: kind}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, username, dn, created_at FROM directory_users WHERE `+column+` = ?`, value).
			Scan(&u.ID, &u.Username, &u.DN, &u.CreatedAt)
		if err != nil {
			return nil, mapDBError(err)
		}
		return &u, nil
	case domain.KindOidc:
		u := domain.User{Kind: kind}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, username, subject_identifier, email, created_at FROM oidc_users WHERE `+column+` = ?`, value).
			Scan(&u.ID, &u.Username, &u.SubjectIdentifier, &u.Email, &u.CreatedAt)
		if err != nil {
			return nil, mapDBError(err)
		}
		return &u, nil
	default:
		return nil, domain.ErrValidation("no user storage partition for principal kind %q", kind)
	}
}

func (r *UserRepo) List(ctx context.Context, kind domain.PrincipalKind, page domain.PageRequest) ([]domain.User, int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.users).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Select the full row set in one query. Fetching users one by one
	// while the cursor is open would need a second connection, and the
	// write pool only has one.
	var query string
	switch kind {
	case domain.KindManaged:
		query = `SELECT id, username, full_name, email, password_hash, force_password_change, suspended, last_password_change, created_at
			 FROM managed_users ORDER BY username ASC LIMIT ? OFFSET ?`
	case domain.KindDirectory:
		query = `SELECT id, username, dn, created_at FROM directory_users ORDER BY username ASC LIMIT ? OFFSET ?`
	case domain.KindOidc:
		query = `SELECT id, username, subject_identifier, email, created_at FROM oidc_users ORDER BY username ASC LIMIT ? OFFSET ?`
	}

	rows, err := r.db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u := domain.User{Kind: kind}
		switch kind {
		case domain.KindManaged:
			err = rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash,
				&u.ForcePasswordChange, &u.Suspended, &u.LastPasswordChange, &u.CreatedAt)
		case domain.KindDirectory:
			err = rows.Scan(&u.ID, &u.Username, &u.DN, &u.CreatedAt)
		case domain.KindOidc:
			err = rows.Scan(&u.ID, &u.Username, &u.SubjectIdentifier, &u.Email, &u.CreatedAt)
		}
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	var res sql.Result
	var err error
	switch u.Kind {
	case domain.KindManaged:
		res, err = r.db.ExecContext(ctx,
			`UPDATE managed_users
			 SET full_name = ?, email = ?, password_hash = ?, force_password_change = ?, suspended = ?, last_password_change = ?
			 WHERE username = ?`,
			u.FullName, u.Email, u.PasswordHash, boolToInt(u.ForcePasswordChange),
			boolToInt(u.Suspended), u.LastPasswordChange, u.Username)
	case domain.KindDirectory:
		res, err = r.db.ExecContext(ctx,
			`UPDATE directory_users SET dn = ? WHERE username = ?`, u.DN, u.Username)
	case domain.KindOidc:
		res, err = r.db.ExecContext(ctx,
			`UPDATE oidc_users SET subject_identifier = ?, email = ? WHERE username = ?`,
			u.SubjectIdentifier, u.Email, u.Username)
	default:
		return nil, domain.ErrValidation("no user storage partition for principal kind %q", u.Kind)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("user %q not found", u.Username)
	}
	return r.GetByUsername(ctx, u.Kind, u.Username)
}

func (r *UserRepo) Delete(ctx context.Context, kind domain.PrincipalKind, username string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+t.users+` WHERE username = ?`, username)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %q not found", username)
	}
	return nil
}

func (r *UserRepo) Teams(ctx context.Context, u *domain.User) ([]domain.Team, error) {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT t.id, t.name, t.created_at FROM teams t
		 JOIN %s j ON j.team_id = t.id
		 WHERE j.user_id = ? ORDER BY j.rowid`, t.teams), u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *UserRepo) DirectPermissions(ctx context.Context, u *domain.User) ([]domain.Permission, error) {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT p.name, p.description FROM permissions p
		 JOIN %s j ON j.permission_name = p.name
		 WHERE j.user_id = ? ORDER BY j.rowid`, t.perms), u.ID)
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

func (r *UserRepo) HasDirectPermission(ctx context.Context, u *domain.User, name string) (bool, error) {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return false, err
	}

	var count int64
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+t.perms+` WHERE user_id = ? AND permission_name = ?`,
		u.ID, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepo) GrantPermission(ctx context.Context, u *domain.User, name string) error {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+t.perms+` (user_id, permission_name) VALUES (?, ?)`,
		u.ID, name)
	return mapDBError(err)
}

func (r *UserRepo) RevokePermission(ctx context.Context, u *domain.User, name string) error {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM `+t.perms+` WHERE user_id = ? AND permission_name = ?`, u.ID, name)
	return mapDBError(err)
}

func (r *UserRepo) AddToTeam(ctx context.Context, u *domain.User, teamID string) (bool, error) {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+t.teams+` (user_id, team_id) VALUES (?, ?)`, u.ID, teamID)
	if err != nil {
		return false, mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) RemoveFromTeam(ctx context.Context, u *domain.User, teamID string) (bool, error) {
	t, err := tablesFor(u.Kind)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+t.teams+` WHERE user_id = ? AND team_id = ?`, u.ID, teamID)
	if err != nil {
		return false, mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
