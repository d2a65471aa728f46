package scheduler

import (
	"context"
	"fmt"

	"github.com/rpggio/foreman/internal/domain/project"
)

// PauseResume toggles a project. An active project steps down through the
// active set and is suspended at its end, handing its slot to the next
// eligible suspended project. A suspended project jumps to the front of the
// active set, displacing the lowest active project when every slot is taken.
// Resuming fails with ErrParallelizationDenied while another level of the
// same facility must go first, and with ErrNoWorkers when the track has no
// workers at all.
func (s *Scheduler) PauseResume(ctx context.Context, playerID, projectID string) (*project.Project, error) {
	var result *project.Project
	err := s.mutate(ctx, playerID, func(l *ledger, now int64) error {
		rec, err := l.get(projectID)
		if err != nil {
			return err
		}
		if rec.Active() {
			s.pause(l, rec, now)
		} else if err := s.resume(l, rec, now); err != nil {
			return err
		}
		result = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("project toggled", "player_id", playerID, "project_id", projectID, "state", result.State())
	return result, nil
}

func (s *Scheduler) pause(l *ledger, rec *project.Project, now int64) {
	list := l.list(rec.Track)
	last := s.alloc.ActiveCount(l, rec.Track) - 1
	for i := list.Index(rec.ID); i < last; i++ {
		list.Swap(i, i+1)
		l.reorder(rec.Track)
	}
	s.suspend(l, rec, now)
	l.emitFor(EventPaused, rec, now, "")
	s.fill(l, rec.Track, now, rec.ID)
}

func (s *Scheduler) resume(l *ledger, rec *project.Project, now int64) error {
	if !s.gate.CanActivate(l, rec) {
		return fmt.Errorf("%w: another %s level must progress first", ErrParallelizationDenied, rec.Facility)
	}
	capacity := s.alloc.Capacity(l.player, rec.Track)
	if capacity == 0 {
		return fmt.Errorf("%w: %s track", ErrNoWorkers, rec.Track)
	}

	for s.alloc.ActiveCount(l, rec.Track) >= capacity {
		active := l.active(rec.Track)
		lowest := active[len(active)-1]
		s.suspend(l, lowest, now)
		l.emitFor(EventDemoted, lowest, now, "displaced by "+rec.ID)
	}

	s.activate(l, rec, now)
	l.list(rec.Track).Move(rec.ID, 0)
	l.reorder(rec.Track)
	l.emitFor(EventResumed, rec, now, "")
	return nil
}
