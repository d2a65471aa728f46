package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/scheduler"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeSchedulingScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type schedulingContext struct {
	store  *memStore
	clock  *fakeClock
	pricer *stubPricer
	sched  *scheduler.Scheduler
	labels map[string]string
	done   map[string]bool
	refund scheduler.Refund
	err    error
}

func (sc *schedulingContext) reset() {
	sc.store = newMemStore()
	sc.clock = &fakeClock{}
	sc.pricer = newStubPricer()
	sc.sched = nil
	sc.labels = make(map[string]string)
	sc.done = make(map[string]bool)
	sc.refund = scheduler.Refund{}
	sc.err = nil
}

func (sc *schedulingContext) ensure() (*scheduler.Scheduler, error) {
	if sc.sched != nil {
		return sc.sched, nil
	}
	sched, err := scheduler.New(scheduler.Config{
		Store:    sc.store,
		Pricer:   sc.pricer,
		Clock:    sc.clock,
		Hook:     &levelHook{failFor: map[string]bool{}},
		Notifier: notifierFunc(sc.observe),
	})
	sc.sched = sched
	return sched, err
}

type notifierFunc func(ctx context.Context, events []scheduler.Event)

func (f notifierFunc) Notify(ctx context.Context, events []scheduler.Event) { f(ctx, events) }

func (sc *schedulingContext) observe(_ context.Context, events []scheduler.Event) {
	for _, ev := range events {
		if ev.Type == scheduler.EventCompleted {
			sc.done[ev.ProjectID] = true
		}
	}
}

func (sc *schedulingContext) aPlayerWith(workers, lab int) error {
	sc.store.addPlayer(&player.Player{
		ID:                  testPlayer,
		Name:                testPlayer,
		Money:               10000,
		ConstructionWorkers: workers,
		Levels:              map[string]int{player.Laboratory: lab},
	})
	if sc.sched != nil {
		sc.sched.Forget(testPlayer)
	}
	return nil
}

func (sc *schedulingContext) facilityTakes(name string, ticks int) error {
	sc.pricer.define(name, project.FamilyPowerFacility, int64(ticks), 100)
	return nil
}

func (sc *schedulingContext) leveledFacilityTakes(name string, ticks int) error {
	sc.pricer.define(name, project.FamilyFunctionalFacility, int64(ticks), 100)
	return nil
}

func (sc *schedulingContext) technologyTakes(name string, ticks int) error {
	sc.pricer.define(name, project.FamilyTechnology, int64(ticks), 100)
	return nil
}

func (sc *schedulingContext) enqueues(facility, label string, tick int) error {
	sched, err := sc.ensure()
	if err != nil {
		return err
	}
	sc.clock.Set(int64(tick))
	rec, err := sched.Enqueue(context.Background(), testPlayer, facility)
	if err != nil {
		return err
	}
	sc.labels[label] = rec.ID
	return nil
}

func (sc *schedulingContext) toggles(label string, tick int) error {
	sched, err := sc.ensure()
	if err != nil {
		return err
	}
	sc.clock.Set(int64(tick))
	_, sc.err = sched.PauseResume(context.Background(), testPlayer, sc.labels[label])
	if sc.err != nil && !errors.Is(sc.err, scheduler.ErrParallelizationDenied) {
		return sc.err
	}
	return nil
}

func (sc *schedulingContext) cancels(label string, tick int) error {
	sched, err := sc.ensure()
	if err != nil {
		return err
	}
	sc.clock.Set(int64(tick))
	sc.refund, err = sched.Cancel(context.Background(), testPlayer, sc.labels[label])
	return err
}

func (sc *schedulingContext) reaches(tick int) error {
	sched, err := sc.ensure()
	if err != nil {
		return err
	}
	sc.clock.Set(int64(tick))
	return sched.TickAdvance(context.Background())
}

func (sc *schedulingContext) find(label string) (*scheduler.Entry, error) {
	id, ok := sc.labels[label]
	if !ok {
		return nil, fmt.Errorf("no project labelled %s", label)
	}
	for _, track := range project.Tracks {
		snap, err := sc.sched.Snapshot(context.Background(), testPlayer, track)
		if err != nil {
			return nil, err
		}
		for _, entry := range snap.Entries {
			if entry.Project.ID == id {
				return &entry, nil
			}
		}
	}
	return nil, fmt.Errorf("%s is not queued", label)
}

func (sc *schedulingContext) hasState(label, state string) error {
	entry, err := sc.find(label)
	if err != nil {
		return err
	}
	if string(entry.State) != state {
		return fmt.Errorf("%s is %s, want %s", label, entry.State, state)
	}
	return nil
}

func (sc *schedulingContext) activeSince(label string, tick int) error {
	entry, err := sc.find(label)
	if err != nil {
		return err
	}
	if entry.State != project.StateActive || entry.Project.StartTick != int64(tick) {
		return fmt.Errorf("%s is %s from tick %d, want active from %d", label, entry.State, entry.Project.StartTick, tick)
	}
	return nil
}

func (sc *schedulingContext) isCompleted(label string) error {
	if !sc.done[sc.labels[label]] {
		return fmt.Errorf("%s has not completed", label)
	}
	return nil
}

func (sc *schedulingContext) refundPercent(pct int) error {
	if sc.refund.Percent != pct {
		return fmt.Errorf("refund is %d percent, want %d", sc.refund.Percent, pct)
	}
	return nil
}

func (sc *schedulingContext) hasMoney(amount float64) error {
	p, err := sc.sched.Player(context.Background(), testPlayer)
	if err != nil {
		return err
	}
	if math.Abs(p.Money-amount) > 1e-6 {
		return fmt.Errorf("player has %.2f, want %.2f", p.Money, amount)
	}
	return nil
}

func (sc *schedulingContext) denied(reason string) error {
	if sc.err == nil || !strings.Contains(sc.err.Error(), reason) {
		return fmt.Errorf("expected denial %q, got %v", reason, sc.err)
	}
	return nil
}

func initializeSchedulingScenario(ctx *godog.ScenarioContext) {
	sc := &schedulingContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	ctx.Step(`^a player with (\d+) construction workers? and a level (\d+) laboratory$`, sc.aPlayerWith)
	ctx.Step(`^"([^"]*)" takes (\d+) ticks$`, sc.facilityTakes)
	ctx.Step(`^"([^"]*)" is a leveled facility taking (\d+) ticks$`, sc.leveledFacilityTakes)
	ctx.Step(`^"([^"]*)" is a technology taking (\d+) ticks$`, sc.technologyTakes)
	ctx.Step(`^the player enqueues "([^"]*)" as "([^"]*)" at tick (\d+)$`, sc.enqueues)
	ctx.Step(`^the player toggles "([^"]*)" at tick (\d+)$`, sc.toggles)
	ctx.Step(`^the player cancels "([^"]*)" at tick (\d+)$`, sc.cancels)
	ctx.Step(`^the simulation reaches tick (\d+)$`, sc.reaches)
	ctx.Step(`^"([^"]*)" is (active|suspended)$`, sc.hasState)
	ctx.Step(`^"([^"]*)" is active since tick (\d+)$`, sc.activeSince)
	ctx.Step(`^"([^"]*)" is completed$`, sc.isCompleted)
	ctx.Step(`^the refund is (\d+) percent$`, sc.refundPercent)
	ctx.Step(`^the player has (\d+) money$`, sc.hasMoney)
	ctx.Step(`^the request is denied with "([^"]*)"$`, sc.denied)
}
