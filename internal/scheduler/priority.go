package scheduler

import (
	"context"
	"fmt"

	"github.com/rpggio/foreman/internal/domain/project"
)

// DecreasePriority swaps a project with its lower-priority neighbour. When
// the swap crosses the end of the active set the project is suspended and
// the neighbour promoted, unless the neighbour is blocked by another level
// of its facility, in which case nothing changes.
func (s *Scheduler) DecreasePriority(ctx context.Context, playerID, projectID string) error {
	return s.mutate(ctx, playerID, func(l *ledger, now int64) error {
		rec, err := l.get(projectID)
		if err != nil {
			return err
		}
		return s.decrease(l, rec, now)
	})
}

// IncreasePriority swaps a project with its higher-priority neighbour,
// following the same activation rules as DecreasePriority.
func (s *Scheduler) IncreasePriority(ctx context.Context, playerID, projectID string) error {
	return s.mutate(ctx, playerID, func(l *ledger, now int64) error {
		rec, err := l.get(projectID)
		if err != nil {
			return err
		}
		i := l.list(rec.Track).Index(rec.ID)
		if i <= 0 {
			return nil
		}
		prev, err := l.at(rec.Track, i-1)
		if err != nil {
			return err
		}
		return s.decrease(l, prev, now)
	})
}

func (s *Scheduler) decrease(l *ledger, rec *project.Project, now int64) error {
	list := l.list(rec.Track)
	i := list.Index(rec.ID)
	if i < 0 {
		return fmt.Errorf("%w: project %s missing from %s list", ErrInternalInconsistency, rec.ID, rec.Track)
	}
	if i == list.Len()-1 {
		return nil
	}
	next, err := l.at(rec.Track, i+1)
	if err != nil {
		return err
	}

	switch {
	case rec.Active() && !next.Active() && s.alloc.Available(l, rec.Track) > 0:
		if !s.gate.CanActivate(l, next) {
			return fmt.Errorf("%w: %s cannot start before another %s level", ErrParallelizationDenied, next.ID, next.Facility)
		}
		s.activate(l, next, now)
		l.emitFor(EventPromoted, next, now, "")
	case rec.Active() && !next.Active():
		if !s.gate.CanReplace(l, next, rec) {
			return fmt.Errorf("%w: %s cannot start before another %s level", ErrParallelizationDenied, next.ID, next.Facility)
		}
		s.suspend(l, rec, now)
		s.activate(l, next, now)
		l.emitFor(EventDemoted, rec, now, "")
		l.emitFor(EventPromoted, next, now, "")
	case !rec.Active() && next.Active():
		return fmt.Errorf("%w: active project %s below suspended %s", ErrInternalInconsistency, next.ID, rec.ID)
	}

	list.Swap(i, i+1)
	l.reorder(rec.Track)
	l.emitFor(EventReordered, rec, now, fmt.Sprintf("position %d", i+1))
	return nil
}
