package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/foreman/internal/domain/project"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, player_id, facility, family, track, seq,
	start_tick, duration_ticks, suspension_tick,
	cost, power, pollution,
	price_multiplier, power_multiplier, capacity_multiplier, efficiency_multiplier,
	created_at`

// ListByPlayer returns every queued project of a player
func (r *ProjectRepository) ListByPlayer(ctx context.Context, playerID string) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE player_id = ? ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var (
			p          project.Project
			suspension sql.NullInt64
		)
		if err := rows.Scan(
			&p.ID,
			&p.PlayerID,
			&p.Facility,
			&p.Family,
			&p.Track,
			&p.Seq,
			&p.StartTick,
			&p.DurationTicks,
			&suspension,
			&p.Cost,
			&p.Power,
			&p.Pollution,
			&p.Multipliers.Price,
			&p.Multipliers.Power,
			&p.Multipliers.Capacity,
			&p.Multipliers.Efficiency,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if suspension.Valid {
			tick := suspension.Int64
			p.SuspensionTick = &tick
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// Order returns the priority list of a track, highest priority first
func (r *ProjectRepository) Order(ctx context.Context, playerID string, track project.Track) ([]string, error) {
	query := `
		SELECT project_id
		FROM project_order
		WHERE player_id = ? AND track = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playerID, track)
	if err != nil {
		return nil, fmt.Errorf("failed to load priority list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan priority entry: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating priority rows: %w", err)
	}
	return ids, nil
}

func upsertProject(ctx context.Context, tx *sql.Tx, p project.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_tick = excluded.start_tick,
			duration_ticks = excluded.duration_ticks,
			suspension_tick = excluded.suspension_tick
	`

	var suspension sql.NullInt64
	if p.SuspensionTick != nil {
		suspension = sql.NullInt64{Int64: *p.SuspensionTick, Valid: true}
	}

	_, err := tx.ExecContext(ctx, query,
		p.ID,
		p.PlayerID,
		p.Facility,
		p.Family,
		p.Track,
		p.Seq,
		p.StartTick,
		p.DurationTicks,
		suspension,
		p.Cost,
		p.Power,
		p.Pollution,
		p.Multipliers.Price,
		p.Multipliers.Power,
		p.Multipliers.Capacity,
		p.Multipliers.Efficiency,
		p.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("project %s references unknown player %s: %w", p.ID, p.PlayerID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func deleteProject(ctx context.Context, tx *sql.Tx, playerID, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND player_id = ?`, id, playerID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func replaceOrder(ctx context.Context, tx *sql.Tx, playerID string, track project.Track, ids []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_order WHERE player_id = ? AND track = ?`, playerID, track); err != nil {
		return fmt.Errorf("failed to clear priority list: %w", err)
	}
	for pos, id := range ids {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_order (player_id, track, position, project_id) VALUES (?, ?, ?, ?)`,
			playerID, track, pos, id)
		if err != nil {
			return fmt.Errorf("failed to write priority entry: %w", err)
		}
	}
	return nil
}
