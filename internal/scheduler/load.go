package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/repository"
)

// load builds a player's ledger from the store and repairs whatever breaks
// the scheduling invariants. Repairs are recorded as changes and
// inconsistency events.
func (s *Scheduler) load(ctx context.Context, playerID string) (*ledger, error) {
	p, err := s.store.Player(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading player: %w", err)
	}
	recs, err := s.store.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	l := newLedger(p)
	now := s.clock.Now()

	quarantined := make(map[string]bool)
	for i := range recs {
		rec := recs[i]
		if err := rec.Validate(); err != nil {
			// Malformed rows stay in storage untouched but never schedule.
			quarantined[rec.ID] = true
			s.inconsistent(l, now, "skipping malformed project", rec.ID, err)
			continue
		}
		l.records[rec.ID] = &rec
	}

	for _, track := range project.Tracks {
		ids, err := s.store.Order(ctx, playerID, track)
		if err != nil {
			return nil, fmt.Errorf("loading %s priority list: %w", track, err)
		}
		list := l.list(track)
		for _, id := range ids {
			rec, ok := l.records[id]
			switch {
			case !ok:
				l.reorder(track)
				if !quarantined[id] {
					s.inconsistent(l, now, "dropping dangling priority entry", id, nil)
				}
			case rec.Track != track:
				l.reorder(track)
				s.inconsistent(l, now, "dropping entry listed on the wrong track", id, nil)
			case !list.Append(id):
				l.reorder(track)
				s.inconsistent(l, now, "dropping duplicate priority entry", id, nil)
			}
		}
	}

	// Records missing from their list join it at the tail.
	for _, rec := range l.records {
		if !l.list(rec.Track).Contains(rec.ID) {
			s.inconsistent(l, now, "appending unlisted project", rec.ID, nil)
			l.list(rec.Track).Append(rec.ID)
			l.reorder(rec.Track)
		}
	}

	for _, track := range project.Tracks {
		s.normalize(l, track, now)
	}
	return l, nil
}

// normalize restores the active-prefix, capacity and single-level invariants
// by suspending offending records. Once one record is suspended every later
// active record is suspended too, so actives stay a prefix.
func (s *Scheduler) normalize(l *ledger, track project.Track, now int64) {
	list := l.list(track)
	capacity := s.alloc.Capacity(l.player, track)
	activeSeen := 0
	suspendedSeen := false
	activeFacility := make(map[string]bool)

	for i := 0; i < list.Len(); i++ {
		rec := l.records[list.At(i)]
		if !rec.Active() {
			suspendedSeen = true
			continue
		}
		reason := ""
		switch {
		case suspendedSeen:
			reason = "active project below a suspended one"
		case activeSeen >= capacity:
			reason = "active projects exceed capacity"
		case rec.Family.Leveled() && activeFacility[rec.Facility]:
			reason = "several levels active at once"
		}
		if reason != "" {
			s.suspend(l, rec, now)
			s.inconsistent(l, now, reason, rec.ID, nil)
			suspendedSeen = true
			continue
		}
		activeSeen++
		activeFacility[rec.Facility] = true
	}
}

func (s *Scheduler) inconsistent(l *ledger, now int64, msg, projectID string, err error) {
	attrs := []any{"player_id", l.player.ID, "project_id", projectID}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	s.logger.Warn(msg, attrs...)
	l.emit(Event{Type: EventInconsistency, ProjectID: projectID, Tick: now, Detail: msg})
}
