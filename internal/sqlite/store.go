package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/scheduler"
)

// ScheduleStore persists the scheduler's per-player state
type ScheduleStore struct {
	*ProjectRepository
	players *PlayerRepository
	db      *DB
}

// NewScheduleStore creates a new ScheduleStore
func NewScheduleStore(db *DB) *ScheduleStore {
	return &ScheduleStore{
		ProjectRepository: NewProjectRepository(db),
		players:           NewPlayerRepository(db),
		db:                db,
	}
}

// Player loads a player
func (s *ScheduleStore) Player(ctx context.Context, id string) (*player.Player, error) {
	return s.players.Get(ctx, id)
}

// PlayerIDs lists every player
func (s *ScheduleStore) PlayerIDs(ctx context.Context) ([]string, error) {
	return s.players.IDs(ctx)
}

// Apply writes a change set in one transaction
func (s *ScheduleStore) Apply(ctx context.Context, ch scheduler.Change) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ch.Player != nil {
		if err := updatePlayer(ctx, tx, ch.Player); err != nil {
			return err
		}
	}
	for _, p := range ch.Upserts {
		if err := upsertProject(ctx, tx, p); err != nil {
			return err
		}
	}
	for _, id := range ch.Deletes {
		if err := deleteProject(ctx, tx, ch.PlayerID, id); err != nil {
			return err
		}
	}

	tracks := make([]string, 0, len(ch.Orders))
	for track := range ch.Orders {
		tracks = append(tracks, string(track))
	}
	sort.Strings(tracks)
	for _, track := range tracks {
		t := project.Track(track)
		if err := replaceOrder(ctx, tx, ch.PlayerID, t, ch.Orders[t]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
