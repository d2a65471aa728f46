package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/repository"
	"github.com/rpggio/foreman/internal/scheduler"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	players  map[string]*player.Player
	projects map[string]project.Project
	orders   map[string]map[project.Track][]string
	applyErr error
	applied  int
}

func newMemStore() *memStore {
	return &memStore{
		players:  make(map[string]*player.Player),
		projects: make(map[string]project.Project),
		orders:   make(map[string]map[project.Track][]string),
	}
}

func (m *memStore) addPlayer(p *player.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p.Clone()
	m.orders[p.ID] = make(map[project.Track][]string)
}

func (m *memStore) seed(rec project.Project, order ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[rec.ID] = rec
	if order != nil {
		m.orders[rec.PlayerID][rec.Track] = order
	}
}

func (m *memStore) setApplyErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyErr = err
}

func (m *memStore) ListByPlayer(_ context.Context, playerID string) ([]project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []project.Project
	for _, rec := range m.projects {
		if rec.PlayerID == playerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) Order(_ context.Context, playerID string, track project.Track) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.orders[playerID][track]...), nil
}

func (m *memStore) Player(_ context.Context, id string) (*player.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *memStore) PlayerIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) Apply(_ context.Context, ch scheduler.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	if ch.Player != nil {
		m.players[ch.PlayerID] = ch.Player.Clone()
	}
	for _, rec := range ch.Upserts {
		m.projects[rec.ID] = rec
	}
	for _, id := range ch.Deletes {
		delete(m.projects, id)
	}
	for track, ids := range ch.Orders {
		m.orders[ch.PlayerID][track] = ids
	}
	m.applied++
	return nil
}

type fakeClock struct {
	tick atomic.Int64
}

func (c *fakeClock) Now() int64  { return c.tick.Load() }
func (c *fakeClock) Set(t int64) { c.tick.Store(t) }

type stubPricer struct {
	mu     sync.Mutex
	quotes map[string]project.Quote
}

func newStubPricer() *stubPricer {
	p := &stubPricer{quotes: make(map[string]project.Quote)}
	p.define("windmill", project.FamilyPowerFacility, 10, 100)
	p.define("pump", project.FamilyStorageFacility, 5, 100)
	p.define("mine", project.FamilyExtractionFacility, 8, 100)
	p.define("industry", project.FamilyFunctionalFacility, 20, 100)
	p.define("laboratory", project.FamilyFunctionalFacility, 6, 100)
	p.define("mathematics", project.FamilyTechnology, 12, 100)
	p.define("physics", project.FamilyTechnology, 4, 100)
	return p
}

func (p *stubPricer) define(name string, family project.Family, duration int64, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[name] = project.Quote{
		Facility:      name,
		Family:        family,
		Track:         family.Track(),
		Price:         price,
		DurationTicks: duration,
		Multipliers:   project.Multipliers{Price: 1, Power: 1, Capacity: 1, Efficiency: 1},
	}
}

func (p *stubPricer) lock(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := p.quotes[name]
	q.Locked = true
	p.quotes[name] = q
}

func (p *stubPricer) Quote(_ *player.Player, facility string, _ int) (project.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q, ok := p.quotes[facility]
	if !ok {
		return project.Quote{}, fmt.Errorf("%w: %s", project.ErrUnknownFacility, facility)
	}
	return q, nil
}

// levelHook upgrades leveled facilities and fails for facilities in failFor.
type levelHook struct {
	mu        sync.Mutex
	completed []string
	failFor   map[string]bool
}

func (h *levelHook) OnComplete(_ context.Context, p *player.Player, rec project.Project) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failFor[rec.Facility] {
		return errors.New("effect failed")
	}
	if rec.Family.Leveled() {
		p.Upgrade(rec.Facility)
	} else {
		p.Install(rec.Facility)
	}
	h.completed = append(h.completed, rec.ID)
	return nil
}

func (h *levelHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.completed)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []scheduler.Event
}

func (n *recordingNotifier) Notify(_ context.Context, events []scheduler.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func (n *recordingNotifier) types() []scheduler.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]scheduler.EventType, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	t        *testing.T
	ctx      context.Context
	store    *memStore
	clock    *fakeClock
	pricer   *stubPricer
	hook     *levelHook
	notifier *recordingNotifier
	sched    *scheduler.Scheduler
}

const testPlayer = "p1"

// newEnv creates a scheduler with one player owning construction workers and
// a laboratory at labLevel.
func newEnv(t *testing.T, workers, labLevel int) *env {
	t.Helper()
	e := &env{
		t:        t,
		ctx:      context.Background(),
		store:    newMemStore(),
		clock:    &fakeClock{},
		pricer:   newStubPricer(),
		hook:     &levelHook{failFor: map[string]bool{}},
		notifier: &recordingNotifier{},
	}
	e.addPlayer(testPlayer, workers, labLevel)

	sched, err := scheduler.New(scheduler.Config{
		Store:    e.store,
		Pricer:   e.pricer,
		Clock:    e.clock,
		Hook:     e.hook,
		Notifier: e.notifier,
	})
	require.NoError(t, err)
	e.sched = sched
	return e
}

func (e *env) addPlayer(id string, workers, labLevel int) {
	e.store.addPlayer(&player.Player{
		ID:                  id,
		Name:                id,
		Money:               10000,
		ConstructionWorkers: workers,
		Levels:              map[string]int{player.Laboratory: labLevel},
	})
}

func (e *env) enqueue(facility string) *project.Project {
	e.t.Helper()
	rec, err := e.sched.Enqueue(e.ctx, testPlayer, facility)
	require.NoError(e.t, err)
	return rec
}

func (e *env) snapshot(track project.Track) *scheduler.Snapshot {
	e.t.Helper()
	snap, err := e.sched.Snapshot(e.ctx, testPlayer, track)
	require.NoError(e.t, err)
	return snap
}

func (e *env) order(track project.Track) []string {
	e.t.Helper()
	var ids []string
	for _, entry := range e.snapshot(track).Entries {
		ids = append(ids, entry.Project.ID)
	}
	return ids
}

func (e *env) entry(track project.Track, id string) scheduler.Entry {
	e.t.Helper()
	for _, entry := range e.snapshot(track).Entries {
		if entry.Project.ID == id {
			return entry
		}
	}
	e.t.Fatalf("project %s not in %s list", id, track)
	return scheduler.Entry{}
}

func (e *env) money() float64 {
	e.t.Helper()
	p, err := e.sched.Player(e.ctx, testPlayer)
	require.NoError(e.t, err)
	return p.Money
}

func (e *env) tick(t int64) {
	e.t.Helper()
	e.clock.Set(t)
	require.NoError(e.t, e.sched.TickAdvance(e.ctx))
}

// requireInvariants checks capacity, the active prefix and the single
// active level per facility on every track of playerID.
func requireInvariants(t *testing.T, sched *scheduler.Scheduler, playerID string) {
	t.Helper()
	for _, track := range project.Tracks {
		snap, err := sched.Snapshot(context.Background(), playerID, track)
		require.NoError(t, err)
		require.LessOrEqual(t, snap.Active, snap.Capacity, "%s: active exceeds capacity", track)

		suspendedSeen := false
		activeLevels := map[string]int{}
		for _, entry := range snap.Entries {
			if entry.State == project.StateSuspended {
				suspendedSeen = true
				require.NotNil(t, entry.Project.SuspensionTick)
				continue
			}
			require.False(t, suspendedSeen, "%s: active %s below a suspended project", track, entry.Project.ID)
			if entry.Project.Family.Leveled() {
				activeLevels[entry.Project.Facility]++
				require.LessOrEqual(t, activeLevels[entry.Project.Facility], 1, "%s has several active levels", entry.Project.Facility)
			}
		}
	}
}
