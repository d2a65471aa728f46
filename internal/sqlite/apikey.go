package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/foreman/internal/repository"
)

// APIKeyRepository stores hashed bearer tokens
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// HashToken returns the stored form of a bearer token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Add registers token for a player
func (r *APIKeyRepository) Add(ctx context.Context, playerID, token, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, player_id, created_at, description) VALUES (?, ?, ?, ?)`,
		HashToken(token), playerID, time.Now(), description,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return repository.ErrForeignKeyViolation
	}
	if err != nil {
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolvePlayer returns the player owning token and records its use
func (r *APIKeyRepository) ResolvePlayer(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)

	var playerID string
	err := r.db.QueryRowContext(ctx, `SELECT player_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return playerID, nil
}
