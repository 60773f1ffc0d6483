package access

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"teamgate/internal/domain"
)

// APIKeyService provides API key management. Keys carry no direct
// permissions; everything they can do comes from their team memberships.
type APIKeyService struct {
	keys  domain.APIKeyRepository
	teams domain.TeamRepository
	audit domain.AuditRepository
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(keys domain.APIKeyRepository, teams domain.TeamRepository, audit domain.AuditRepository) *APIKeyService {
	return &APIKeyService{keys: keys, teams: teams, audit: audit}
}

// Create mints a new API key bound to a team. Returns the raw key, shown
// once; only its hash and prefix are persisted.
func (s *APIKeyService) Create(ctx context.Context, req *domain.CreateAPIKeyRequest) (string, *domain.APIKey, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	team, err := s.teams.GetByID(ctx, req.TeamID)
	if err != nil {
		return "", nil, err
	}

	rawKey, prefix, hash, err := generateKey()
	if err != nil {
		return "", nil, err
	}

	key, err := s.keys.Create(ctx, &domain.APIKey{
		Comment:   req.Comment,
		KeyPrefix: prefix,
		KeyHash:   hash,
	})
	if err != nil {
		return "", nil, err
	}
	if _, err := s.keys.AddToTeam(ctx, key.ID, team.ID); err != nil {
		return "", nil, err
	}

	s.logAudit(ctx, prefix, fmt.Sprintf("CREATE_API_KEY(team=%s)", team.Name))
	return rawKey, key, nil
}

// Regenerate replaces the key's secret while preserving its identity and
// team memberships. Returns the new raw key, shown once.
func (s *APIKeyService) Regenerate(ctx context.Context, id string) (string, *domain.APIKey, error) {
	if _, err := s.keys.GetByID(ctx, id); err != nil {
		return "", nil, err
	}

	rawKey, prefix, hash, err := generateKey()
	if err != nil {
		return "", nil, err
	}
	if err := s.keys.UpdateSecret(ctx, id, prefix, hash); err != nil {
		return "", nil, err
	}

	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	s.logAudit(ctx, prefix, "REGENERATE_API_KEY")
	return rawKey, key, nil
}

// Authenticate resolves a raw key to its stored record by hash and records
// the use. Returns NotFound when no key matches.
func (s *APIKeyService) Authenticate(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	hash := sha256.Sum256([]byte(rawKey))
	key, err := s.keys.GetByHash(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		return nil, err
	}
	_ = s.keys.TouchLastUsed(ctx, key.ID)
	return key, nil
}

// GetByID returns an API key by ID (without its raw value).
func (s *APIKeyService) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	return s.keys.GetByID(ctx, id)
}

// List returns a paginated list of API keys (without raw values).
func (s *APIKeyService) List(ctx context.Context, page domain.PageRequest) ([]domain.APIKey, int64, error) {
	return s.keys.List(ctx, page)
}

// Delete removes an API key.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.keys.Delete(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, key.KeyPrefix, "DELETE_API_KEY")
	return nil
}

// Teams returns the teams the key belongs to, in membership order.
func (s *APIKeyService) Teams(ctx context.Context, id string) ([]domain.Team, error) {
	if _, err := s.keys.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.keys.Teams(ctx, id)
}

// AddToTeam adds the key to a team. Returns false if already a member.
func (s *APIKeyService) AddToTeam(ctx context.Context, id, teamID string) (bool, error) {
	if _, err := s.keys.GetByID(ctx, id); err != nil {
		return false, err
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return false, err
	}
	return s.keys.AddToTeam(ctx, id, teamID)
}

// RemoveFromTeam removes the key from a team. Returns false if it was not a
// member.
func (s *APIKeyService) RemoveFromTeam(ctx context.Context, id, teamID string) (bool, error) {
	if _, err := s.keys.GetByID(ctx, id); err != nil {
		return false, err
	}
	return s.keys.RemoveFromTeam(ctx, id, teamID)
}

// generateKey produces a cryptographically random key and its stored form.
func generateKey() (rawKey, prefix, hash string, err error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", "", "", fmt.Errorf("generate key: %w", err)
	}
	rawKey = hex.EncodeToString(rawBytes)
	sum := sha256.Sum256([]byte(rawKey))
	return rawKey, rawKey[:8], hex.EncodeToString(sum[:]), nil
}

func (s *APIKeyService) logAudit(ctx context.Context, keyPrefix, action string) {
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: keyPrefix,
		Action:        action,
		Status:        "ALLOWED",
	})
}
