package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/repository"
	"github.com/rpggio/foreman/internal/scheduler"
	"github.com/stretchr/testify/require"
)

func testProject(id, playerID string, seq int64) project.Project {
	return project.Project{
		ID:            id,
		PlayerID:      playerID,
		Facility:      "windmill",
		Family:        project.FamilyPowerFacility,
		Track:         project.TrackConstruction,
		Seq:           seq,
		StartTick:     5,
		DurationTicks: 10,
		Cost:          100,
		Power:         12.5,
		Multipliers:   project.Multipliers{Price: 1, Power: 1.2, Capacity: 1, Efficiency: 1},
		CreatedAt:     time.Now(),
	}
}

func TestScheduleStore_ApplyRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	store := NewScheduleStore(db)
	ctx := context.Background()
	p := insertPlayer(t, db, "p1")

	a := testProject("a", "p1", 1)
	b := testProject("b", "p1", 2)
	susp := int64(7)
	b.SuspensionTick = &susp
	p.Money = 800
	p.Upgrade("laboratory")

	err := store.Apply(ctx, scheduler.Change{
		PlayerID: "p1",
		Player:   p,
		Upserts:  []project.Project{a, b},
		Orders:   map[project.Track][]string{project.TrackConstruction: {"a", "b"}},
	})
	require.NoError(t, err)

	got, err := store.Player(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 800.0, got.Money)
	require.Equal(t, 1, got.Level("laboratory"))

	recs, err := store.ListByPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "a", recs[0].ID)
	require.Nil(t, recs[0].SuspensionTick)
	require.Equal(t, 1.2, recs[0].Multipliers.Power)
	require.Equal(t, int64(7), *recs[1].SuspensionTick)

	order, err := store.Order(ctx, "p1", project.TrackConstruction)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)

	// resume a, drop b
	b.SuspensionTick = nil
	b.StartTick = 9
	err = store.Apply(ctx, scheduler.Change{
		PlayerID: "p1",
		Upserts:  []project.Project{b},
		Deletes:  []string{"a"},
		Orders:   map[project.Track][]string{project.TrackConstruction: {"b"}},
	})
	require.NoError(t, err)

	recs, err = store.ListByPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, int64(9), recs[0].StartTick)
	require.Nil(t, recs[0].SuspensionTick)

	order, err = store.Order(ctx, "p1", project.TrackConstruction)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, order)
}

func TestScheduleStore_ApplyIsAtomic(t *testing.T) {
	db := NewTestDB(t)
	store := NewScheduleStore(db)
	ctx := context.Background()
	insertPlayer(t, db, "p1")

	err := store.Apply(ctx, scheduler.Change{
		PlayerID: "p1",
		Upserts:  []project.Project{testProject("a", "p1", 1), testProject("x", "nobody", 2)},
		Orders:   map[project.Track][]string{project.TrackConstruction: {"a"}},
	})
	require.Error(t, err)

	recs, err := store.ListByPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, recs)
	order, err := store.Order(ctx, "p1", project.TrackConstruction)
	require.NoError(t, err)
	require.Empty(t, order)
}

func TestScheduleStore_UnknownPlayer(t *testing.T) {
	db := NewTestDB(t)
	store := NewScheduleStore(db)

	_, err := store.Player(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleStore_DrivesScheduler(t *testing.T) {
	db := NewTestDB(t)
	store := NewScheduleStore(db)
	ctx := context.Background()
	insertPlayer(t, db, "p1")

	var tick int64
	sched, err := scheduler.New(scheduler.Config{
		Store:  store,
		Pricer: fixedPricer{},
		Clock:  clockFunc(func() int64 { return tick }),
	})
	require.NoError(t, err)

	a, err := sched.Enqueue(ctx, "p1", "windmill")
	require.NoError(t, err)
	b, err := sched.Enqueue(ctx, "p1", "windmill")
	require.NoError(t, err)

	tick = 10
	require.NoError(t, sched.TickAdvance(ctx))

	// a fresh scheduler sees what the first one committed
	reloaded, err := scheduler.New(scheduler.Config{Store: store, Pricer: fixedPricer{}, Clock: clockFunc(func() int64 { return tick })})
	require.NoError(t, err)
	snap, err := reloaded.Snapshot(ctx, "p1", project.TrackConstruction)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)
	require.Equal(t, b.ID, snap.Entries[0].Project.ID)
	require.Equal(t, project.StateActive, snap.Entries[0].State)
	require.Equal(t, int64(10), snap.Entries[0].Project.StartTick)
	require.NotEqual(t, a.ID, b.ID)
}
