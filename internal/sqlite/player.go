package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/repository"
)

// PlayerRepository implements player.Repository for SQLite
type PlayerRepository struct {
	db *DB
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(db *DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, name, money, construction_workers, levels, installed, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*player.Player, error) {
	var (
		p                 player.Player
		levels, installed string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Money, &p.ConstructionWorkers, &levels, &installed, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(levels), &p.Levels); err != nil {
		return nil, fmt.Errorf("failed to decode levels of player %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(installed), &p.Installed); err != nil {
		return nil, fmt.Errorf("failed to decode installed facilities of player %s: %w", p.ID, err)
	}
	return &p, nil
}

func encodeCounters(m map[string]int) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Create inserts a new player
func (r *PlayerRepository) Create(ctx context.Context, p *player.Player) error {
	levels, err := encodeCounters(p.Levels)
	if err != nil {
		return fmt.Errorf("failed to encode levels: %w", err)
	}
	installed, err := encodeCounters(p.Installed)
	if err != nil {
		return fmt.Errorf("failed to encode installed facilities: %w", err)
	}

	query := `
		INSERT INTO players (` + playerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Money,
		p.ConstructionWorkers,
		levels,
		installed,
		p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// Get retrieves a player by ID
func (r *PlayerRepository) Get(ctx context.Context, id string) (*player.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// List returns all players, oldest first
func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []player.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

// IDs returns the IDs of all players
func (r *PlayerRepository) IDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list player ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan player id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player ids: %w", err)
	}
	return ids, nil
}

func updatePlayer(ctx context.Context, tx *sql.Tx, p *player.Player) error {
	levels, err := encodeCounters(p.Levels)
	if err != nil {
		return fmt.Errorf("failed to encode levels: %w", err)
	}
	installed, err := encodeCounters(p.Installed)
	if err != nil {
		return fmt.Errorf("failed to encode installed facilities: %w", err)
	}

	query := `
		UPDATE players
		SET money = ?, construction_workers = ?, levels = ?, installed = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, p.Money, p.ConstructionWorkers, levels, installed, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
