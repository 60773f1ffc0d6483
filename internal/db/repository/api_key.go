package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"teamgate/internal/domain"
)

// APIKeyRepo implements domain.APIKeyRepository.
type APIKeyRepo struct {
	db *sql.DB
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{db: db}
}

func (r *APIKeyRepo) Create(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, comment, key_prefix, key_hash) VALUES (?, ?, ?, ?)`,
		k.ID, k.Comment, k.KeyPrefix, k.KeyHash)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, k.ID)
}

func (r *APIKeyRepo) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *APIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return r.getOne(ctx, `WHERE key_hash = ?`, keyHash)
}

func (r *APIKeyRepo) getOne(ctx context.Context, where, arg string) (*domain.APIKey, error) {
	var k domain.APIKey
	err := r.db.QueryRowContext(ctx,
		`SELECT id, comment, key_prefix, key_hash, created_at, last_used_at FROM api_keys `+where, arg).
		Scan(&k.ID, &k.Comment, &k.KeyPrefix, &k.KeyHash, &k.CreatedAt, &k.LastUsedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &k, nil
}

func (r *APIKeyRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.APIKey, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_keys`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, comment, key_prefix, key_hash, created_at, last_used_at
		 FROM api_keys ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID, &k.Comment, &k.KeyPrefix, &k.KeyHash, &k.CreatedAt, &k.LastUsedAt); err != nil {
			return nil, 0, err
		}
		keys = append(keys, k)
	}
	return keys, total, rows.Err()
}

func (r *APIKeyRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("api key %q not found", id)
	}
	return nil
}

func (r *APIKeyRepo) UpdateSecret(ctx context.Context, id, keyPrefix, keyHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET key_prefix = ?, key_hash = ? WHERE id = ?`,
		keyPrefix, keyHash, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("api key %q not found", id)
	}
	return nil
}

func (r *APIKeyRepo) TouchLastUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (r *APIKeyRepo) Teams(ctx context.Context, keyID string) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at FROM teams t
		 JOIN api_key_teams j ON j.team_id = t.id
		 WHERE j.api_key_id = ? ORDER BY j.rowid`, keyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *APIKeyRepo) AddToTeam(ctx context.Context, keyID, teamID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO api_key_teams (api_key_id, team_id) VALUES (?, ?)`,
		keyID, teamID)
	if err != nil {
		return false, mapDBError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *APIKeyRepo) RemoveFromTeam(ctx context.Context, keyID, teamID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM api_key_teams WHERE api_key_id = ? AND team_id = ?`,
		keyID, teamID)
	if err != nil {
		return false, mapDBError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
