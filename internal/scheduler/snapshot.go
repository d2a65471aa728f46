package scheduler

import (
	"context"
	"fmt"

	"github.com/rpggio/foreman/internal/domain/project"
)

// Entry is one row of a priority list view.
type Entry struct {
	Position       int             `json:"position"`
	Project        project.Project `json:"project"`
	State          project.State   `json:"state"`
	ElapsedTicks   int64           `json:"elapsed_ticks"`
	RemainingTicks int64           `json:"remaining_ticks"`
}

// Snapshot is a read-only view of one track of one player.
type Snapshot struct {
	PlayerID string        `json:"player_id"`
	Track    project.Track `json:"track"`
	Tick     int64         `json:"tick"`
	Capacity int           `json:"capacity"`
	Active   int           `json:"active"`
	Entries  []Entry       `json:"entries"`
}

// Snapshot returns the ordered projects of a track with their states.
func (s *Scheduler) Snapshot(ctx context.Context, playerID string, track project.Track) (*Snapshot, error) {
	if !track.Valid() {
		return nil, fmt.Errorf("%w: track %q", ErrNotFound, track)
	}
	var snap *Snapshot
	err := s.read(ctx, playerID, func(l *ledger, now int64) error {
		snap = &Snapshot{
			PlayerID: playerID,
			Track:    track,
			Tick:     now,
			Capacity: s.alloc.Capacity(l.player, track),
			Active:   s.alloc.ActiveCount(l, track),
			Entries:  make([]Entry, 0, l.list(track).Len()),
		}
		for i := 0; i < l.list(track).Len(); i++ {
			rec, err := l.at(track, i)
			if err != nil {
				return err
			}
			snap.Entries = append(snap.Entries, Entry{
				Position:       i,
				Project:        *rec.Clone(),
				State:          rec.State(),
				ElapsedTicks:   rec.Elapsed(now),
				RemainingTicks: rec.Remaining(now),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
