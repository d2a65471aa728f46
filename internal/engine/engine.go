// Package engine drives the simulation clock and triggers scheduler ticks.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/tevino/abool"
)

// ErrAlreadyRunning is returned by Run when the loop is already started.
var ErrAlreadyRunning = errors.New("engine already running")

// Advancer processes one tick for every player.
type Advancer interface {
	TickAdvance(ctx context.Context) error
}

// TickStore persists the tick counter across restarts.
type TickStore interface {
	LoadTick(ctx context.Context) (int64, error)
	SaveTick(ctx context.Context, tick int64) error
}

// Engine advances the clock on a fixed interval.
type Engine struct {
	clock    *Clock
	advancer Advancer
	store    TickStore
	interval time.Duration
	logger   *slog.Logger
	running  *abool.AtomicBool
}

// New creates an engine. A nil store keeps the tick in memory only.
func New(clock *Clock, advancer Advancer, store TickStore, interval time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		clock:    clock,
		advancer: advancer,
		store:    store,
		interval: interval,
		logger:   logger,
		running:  abool.New(),
	}
}

// Restore sets the clock from the persisted tick.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	tick, err := e.store.LoadTick(ctx)
	if err != nil {
		return fmt.Errorf("loading tick: %w", err)
	}
	e.clock.Set(tick)
	e.logger.Info("simulation clock restored", "tick", tick)
	return nil
}

// Step advances the clock by one tick and runs the scheduler for it. Player
// failures are logged and returned; they never stop the clock.
func (e *Engine) Step(ctx context.Context) error {
	tick := e.clock.Now() + 1
	if e.store != nil {
		if err := e.store.SaveTick(ctx, tick); err != nil {
			return fmt.Errorf("saving tick %d: %w", tick, err)
		}
	}
	e.clock.Set(tick)

	err := e.advancer.TickAdvance(ctx)
	if err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, perr := range merr.Errors {
				e.logger.Warn("tick failed for player", "tick", tick, "error", perr)
			}
		} else {
			e.logger.Error("tick failed", "tick", tick, "error", err)
		}
	}
	return err
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.IsSet()
}

// Run steps the simulation every interval until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.SetToIf(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.UnSet()

	e.logger.Info("simulation engine started", "tick", e.clock.Now(), "interval", e.interval)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("simulation engine stopped", "tick", e.clock.Now())
			return nil
		case <-ticker.C:
			_ = e.Step(ctx)
		}
	}
}
