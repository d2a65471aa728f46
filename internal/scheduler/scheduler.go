// Package scheduler decides which of a player's queued projects progress on
// each tick, and applies player-issued reorderings to the priority lists.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

const (
	defaultRefundFraction = 0.8
	defaultParallelism    = 4
)

// Config wires a Scheduler to its collaborators.
type Config struct {
	Store    Store
	Pricer   Pricer
	Clock    Clock
	Hook     CompletionHook
	Notifier Notifier
	Metrics  *Metrics
	Logger   *slog.Logger

	// RefundFraction is the share of the cost returned when a project is
	// cancelled before any progress.
	RefundFraction float64
	// Parallelism bounds how many players TickAdvance processes at once.
	Parallelism int
}

// Scheduler orchestrates enqueue, cancel, pause/resume, reorder and tick
// advance for every player. Operations on one player are serialized; distinct
// players proceed in parallel.
type Scheduler struct {
	store    Store
	pricer   Pricer
	clock    Clock
	hook     CompletionHook
	notifier Notifier
	metrics  *Metrics
	logger   *slog.Logger

	refundFraction float64
	parallelism    int

	alloc WorkerAllocator
	gate  MultiLevelGate

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	mu    sync.Mutex
	state *ledger
}

// New creates a scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Store == nil || cfg.Pricer == nil || cfg.Clock == nil {
		return nil, errors.New("scheduler: store, pricer and clock are required")
	}
	if cfg.RefundFraction < 0 || cfg.RefundFraction > 1 {
		return nil, fmt.Errorf("scheduler: refund fraction %v outside [0, 1]", cfg.RefundFraction)
	}
	s := &Scheduler{
		store:          cfg.Store,
		pricer:         cfg.Pricer,
		clock:          cfg.Clock,
		hook:           cfg.Hook,
		notifier:       cfg.Notifier,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		refundFraction: cfg.RefundFraction,
		parallelism:    cfg.Parallelism,
		slots:          make(map[string]*slot),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.refundFraction == 0 {
		s.refundFraction = defaultRefundFraction
	}
	if s.parallelism <= 0 {
		s.parallelism = defaultParallelism
	}
	return s, nil
}

// Metrics returns the scheduler's metric set.
func (s *Scheduler) Metrics() *Metrics {
	return s.metrics
}

// Enqueue funds a new project for facility. The record starts active at the
// front of the active set when a slot is free and no other level of the
// facility blocks it; otherwise it is queued suspended at the tail.
func (s *Scheduler) Enqueue(ctx context.Context, playerID, facility string) (*project.Project, error) {
	var created *project.Project
	err := s.mutate(ctx, playerID, func(l *ledger, now int64) error {
		q, err := s.pricer.Quote(l.player, facility, l.pending(facility))
		if err != nil {
			return fmt.Errorf("pricing %s: %w", facility, err)
		}
		if q.Locked {
			return fmt.Errorf("%w: %s", ErrLocked, facility)
		}
		if l.player.Money < q.Price {
			return fmt.Errorf("%w: %s costs %.2f, balance %.2f", ErrInsufficientFunds, facility, q.Price, l.player.Money)
		}

		rec := &project.Project{
			ID:            uuid.NewString(),
			PlayerID:      l.player.ID,
			Facility:      facility,
			Family:        q.Family,
			Track:         q.Track,
			Seq:           l.nextSeq(),
			StartTick:     now,
			DurationTicks: q.DurationTicks,
			Cost:          q.Price,
			Power:         q.Power,
			Pollution:     q.Pollution,
			Multipliers:   q.Multipliers,
			CreatedAt:     time.Now(),
		}
		if err := rec.Validate(); err != nil {
			return err
		}

		l.player.Money -= q.Price
		l.playerDirty = true
		free := s.alloc.Available(l, rec.Track)
		l.add(rec)

		if free > 0 && s.gate.CanActivate(l, rec) {
			l.list(rec.Track).Move(rec.ID, 0)
		} else {
			rec.Suspend(now)
		}
		l.emitFor(EventEnqueued, rec, now, string(rec.State()))
		created = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("project enqueued", "player_id", playerID, "project_id", created.ID, "facility", facility, "state", created.State())
	return created, nil
}

// Refund describes the money returned by cancelling a project.
type Refund struct {
	ProjectID       string  `json:"project_id"`
	Amount          float64 `json:"amount"`
	Percent         int     `json:"percent"`
	ElapsedFraction float64 `json:"elapsed_fraction"`
}

// QuoteCancel reports what Cancel would refund without changing anything.
func (s *Scheduler) QuoteCancel(ctx context.Context, playerID, projectID string) (Refund, error) {
	var refund Refund
	err := s.read(ctx, playerID, func(l *ledger, now int64) error {
		rec, err := l.get(projectID)
		if err != nil {
			return err
		}
		refund = s.refund(rec, now)
		return nil
	})
	return refund, err
}

// Cancel removes a project and refunds part of its cost. Free slots of its
// track are then handed to eligible suspended projects, which also covers a
// suspended level whose removal unblocks the next level of its facility.
func (s *Scheduler) Cancel(ctx context.Context, playerID, projectID string) (Refund, error) {
	var refund Refund
	err := s.mutate(ctx, playerID, func(l *ledger, now int64) error {
		rec, err := l.get(projectID)
		if err != nil {
			return err
		}
		refund = s.refund(rec, now)
		l.player.Money += refund.Amount
		l.playerDirty = true

		l.remove(rec)
		l.emitFor(EventCancelled, rec, now, fmt.Sprintf("refund %.2f", refund.Amount))
		s.fill(l, rec.Track, now, "")
		return nil
	})
	return refund, err
}

func (s *Scheduler) refund(rec *project.Project, now int64) Refund {
	frac := rec.ElapsedFraction(now)
	share := s.refundFraction * (1 - frac)
	return Refund{
		ProjectID:       rec.ID,
		Amount:          rec.Cost * share,
		Percent:         int(math.Round(share * 100)),
		ElapsedFraction: frac,
	}
}

// Player returns the scheduler's view of a player.
func (s *Scheduler) Player(ctx context.Context, playerID string) (*player.Player, error) {
	var p *player.Player
	err := s.read(ctx, playerID, func(l *ledger, _ int64) error {
		p = l.player.Clone()
		return nil
	})
	return p, err
}

// activate resumes rec and applies the time-accounting shift.
func (s *Scheduler) activate(l *ledger, rec *project.Project, now int64) {
	rec.Resume(now)
	l.touch(rec)
}

func (s *Scheduler) suspend(l *ledger, rec *project.Project, now int64) {
	rec.Suspend(now)
	l.touch(rec)
}

// promoteNext activates the highest-priority eligible suspended record of
// track, other than skip, and moves it to the end of the active set.
func (s *Scheduler) promoteNext(l *ledger, track project.Track, now int64, skip string) *project.Project {
	if s.alloc.Available(l, track) <= 0 {
		return nil
	}
	list := l.list(track)
	boundary := s.alloc.ActiveCount(l, track)
	for i := boundary; i < list.Len(); i++ {
		rec, err := l.at(track, i)
		if err != nil {
			s.logger.Warn("skipping promotion candidate", "player_id", l.player.ID, "error", err)
			continue
		}
		if rec.ID == skip || rec.Active() || !s.gate.CanActivate(l, rec) {
			continue
		}
		s.activate(l, rec, now)
		list.Move(rec.ID, boundary)
		l.reorder(track)
		l.emitFor(EventPromoted, rec, now, "")
		return rec
	}
	return nil
}

// fill promotes until track has no free slot or no eligible candidate.
func (s *Scheduler) fill(l *ledger, track project.Track, now int64, skip string) int {
	n := 0
	for s.promoteNext(l, track, now, skip) != nil {
		n++
	}
	return n
}

// mutate runs fn against a copy of the player's ledger, persists the
// resulting change set and only then makes the copy current.
func (s *Scheduler) mutate(ctx context.Context, playerID string, fn func(l *ledger, now int64) error) error {
	sl := s.slot(playerID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	base, err := s.ensureLoaded(ctx, sl, playerID)
	if err != nil {
		return err
	}

	tx := base.clone()
	if err := fn(tx, s.clock.Now()); err != nil {
		if errors.Is(err, ErrParallelizationDenied) {
			s.metrics.denied.Inc()
		}
		return err
	}
	if !tx.dirty() {
		return nil
	}
	if err := s.store.Apply(ctx, tx.change()); err != nil {
		return fmt.Errorf("persisting schedule: %w", err)
	}
	sl.state = tx
	s.publish(ctx, tx.commit())
	return nil
}

// read runs fn against the committed ledger.
func (s *Scheduler) read(ctx context.Context, playerID string, fn func(l *ledger, now int64) error) error {
	sl := s.slot(playerID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	state, err := s.ensureLoaded(ctx, sl, playerID)
	if err != nil {
		return err
	}
	return fn(state, s.clock.Now())
}

func (s *Scheduler) publish(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}
	s.metrics.observe(events)
	if s.notifier != nil {
		s.notifier.Notify(ctx, events)
	}
}

func (s *Scheduler) slot(playerID string) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[playerID]
	if !ok {
		sl = &slot{}
		s.slots[playerID] = sl
	}
	return sl
}

// Forget drops the cached ledger of a player so the next operation reloads
// it from the store.
func (s *Scheduler) Forget(playerID string) {
	sl := s.slot(playerID)
	sl.mu.Lock()
	sl.state = nil
	sl.mu.Unlock()
}

func (s *Scheduler) ensureLoaded(ctx context.Context, sl *slot, playerID string) (*ledger, error) {
	if sl.state != nil {
		return sl.state, nil
	}
	l, err := s.load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if l.dirty() {
		if err := s.store.Apply(ctx, l.change()); err != nil {
			return nil, fmt.Errorf("persisting repaired schedule: %w", err)
		}
	}
	s.publish(ctx, l.commit())
	sl.state = l
	return l, nil
}
