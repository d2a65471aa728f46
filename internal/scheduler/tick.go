package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rpggio/foreman/internal/domain/project"
	"golang.org/x/sync/errgroup"
)

// TickAdvance completes every due project of every player and promotes
// suspended projects into the freed slots. Players are processed in
// parallel; a failure for one player is reported without affecting others.
// Calling it again at the same tick changes nothing.
func (s *Scheduler) TickAdvance(ctx context.Context) error {
	start := time.Now()

	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		s.metrics.observeTick(start, true)
		return fmt.Errorf("listing players: %w", err)
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, id := range ids {
		g.Go(func() error {
			if err := s.advance(gctx, id); err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("player %s: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	err = result.ErrorOrNil()
	s.metrics.observeTick(start, err != nil)
	return err
}

func (s *Scheduler) advance(ctx context.Context, playerID string) error {
	var skipped *multierror.Error
	err := s.mutate(ctx, playerID, func(l *ledger, now int64) error {
		failed := make(map[string]bool)
		for {
			completed := 0
			for _, track := range project.Tracks {
				for _, rec := range l.active(track) {
					if !rec.Due(now) || failed[rec.ID] {
						continue
					}
					if err := s.complete(ctx, l, rec, now); err != nil {
						failed[rec.ID] = true
						skipped = multierror.Append(skipped, err)
						s.logger.Warn("skipping project completion", "player_id", playerID, "project_id", rec.ID, "error", err)
						continue
					}
					completed++
				}
			}
			if completed == 0 {
				return nil
			}
			// Completions may raise capacity on either track.
			for _, track := range project.Tracks {
				s.fill(l, track, now, "")
			}
		}
	})
	if err != nil {
		return err
	}
	return skipped.ErrorOrNil()
}

func (s *Scheduler) complete(ctx context.Context, l *ledger, rec *project.Project, now int64) error {
	if s.hook != nil {
		if err := s.hook.OnComplete(ctx, l.player, *rec); err != nil {
			return fmt.Errorf("completion effects for %s: %w", rec.ID, err)
		}
		l.playerDirty = true
	}
	l.remove(rec)
	l.emitFor(EventCompleted, rec, now, "")
	s.logger.Debug("project completed", "player_id", l.player.ID, "project_id", rec.ID, "facility", rec.Facility, "tick", now)
	return nil
}
