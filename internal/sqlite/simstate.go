package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SimStateRepository persists the simulation tick
type SimStateRepository struct {
	db *DB
}

// NewSimStateRepository creates a new SimStateRepository
func NewSimStateRepository(db *DB) *SimStateRepository {
	return &SimStateRepository{db: db}
}

// LoadTick returns the last saved tick, or 0 on a fresh database
func (r *SimStateRepository) LoadTick(ctx context.Context) (int64, error) {
	var tick int64
	err := r.db.QueryRowContext(ctx, `SELECT tick FROM sim_state WHERE id = 1`).Scan(&tick)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load tick: %w", err)
	}
	return tick, nil
}

// SaveTick stores tick
func (r *SimStateRepository) SaveTick(ctx context.Context, tick int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sim_state (id, tick) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET tick = excluded.tick`,
		tick)
	if err != nil {
		return fmt.Errorf("failed to save tick: %w", err)
	}
	return nil
}
