package scheduler_test

import (
	"testing"

	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/rpggio/foreman/internal/scheduler"
	"github.com/stretchr/testify/require"
)

func stored(id, facility string, family project.Family, seq int64, suspendedAt *int64) project.Project {
	return project.Project{
		ID:             id,
		PlayerID:       testPlayer,
		Facility:       facility,
		Family:         family,
		Track:          family.Track(),
		Seq:            seq,
		DurationTicks:  10,
		SuspensionTick: suspendedAt,
		Cost:           100,
	}
}

func at(t int64) *int64 { return &t }

func countEvents(types []scheduler.EventType, want scheduler.EventType) int {
	n := 0
	for _, typ := range types {
		if typ == want {
			n++
		}
	}
	return n
}

func TestLoad_DropsDanglingAndDuplicateEntries(t *testing.T) {
	e := newEnv(t, 1, 0)
	e.store.seed(stored("a", "windmill", project.FamilyPowerFacility, 1, nil), "ghost", "a", "a")

	require.Equal(t, []string{"a"}, e.order(construction))
	require.Equal(t, 2, countEvents(e.notifier.types(), scheduler.EventInconsistency))

	// repairs are persisted
	order, err := e.store.Order(e.ctx, testPlayer, construction)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, order)
}

func TestLoad_AppendsUnlistedProjects(t *testing.T) {
	e := newEnv(t, 1, 0)
	e.store.seed(stored("a", "windmill", project.FamilyPowerFacility, 1, nil), "a")
	e.store.seed(stored("b", "pump", project.FamilyStorageFacility, 2, at(0)))

	require.Equal(t, []string{"a", "b"}, e.order(construction))
	require.Equal(t, 1, countEvents(e.notifier.types(), scheduler.EventInconsistency))
}

func TestLoad_MovesWrongTrackEntries(t *testing.T) {
	e := newEnv(t, 1, 3)
	e.store.seed(stored("m", "mathematics", project.FamilyTechnology, 1, nil), "m")
	e.store.orders[testPlayer][construction] = []string{"m"}
	e.store.orders[testPlayer][research] = nil

	require.Empty(t, e.order(construction))
	require.Equal(t, []string{"m"}, e.order(research))
}

func TestLoad_SuspendsOverCapacity(t *testing.T) {
	e := newEnv(t, 1, 0)
	e.clock.Set(7)
	e.store.seed(stored("a", "windmill", project.FamilyPowerFacility, 1, nil))
	e.store.seed(stored("b", "pump", project.FamilyStorageFacility, 2, nil), "a", "b")

	snap := e.snapshot(construction)
	require.Equal(t, 1, snap.Active)
	require.Equal(t, project.StateSuspended, snap.Entries[1].State)
	require.Equal(t, int64(7), *snap.Entries[1].Project.SuspensionTick)
	requireInvariants(t, e.sched, testPlayer)
}

func TestLoad_SuspendsActiveBelowSuspended(t *testing.T) {
	e := newEnv(t, 2, 0)
	e.store.seed(stored("a", "windmill", project.FamilyPowerFacility, 1, at(0)))
	e.store.seed(stored("b", "pump", project.FamilyStorageFacility, 2, nil), "a", "b")

	snap := e.snapshot(construction)
	require.Equal(t, 0, snap.Active)
	requireInvariants(t, e.sched, testPlayer)
}

func TestLoad_SuspendsSecondActiveLevel(t *testing.T) {
	e := newEnv(t, 2, 0)
	e.store.seed(stored("l1", "industry", project.FamilyFunctionalFacility, 1, nil))
	e.store.seed(stored("l2", "industry", project.FamilyFunctionalFacility, 2, nil), "l1", "l2")

	require.Equal(t, project.StateActive, e.entry(construction, "l1").State)
	require.Equal(t, project.StateSuspended, e.entry(construction, "l2").State)
}

func TestLoad_QuarantinesMalformedProjects(t *testing.T) {
	e := newEnv(t, 1, 0)
	bad := stored("bad", "windmill", project.FamilyPowerFacility, 1, nil)
	bad.DurationTicks = 0
	e.store.seed(bad)
	e.store.seed(stored("a", "pump", project.FamilyStorageFacility, 2, nil), "bad", "a")

	require.Equal(t, []string{"a"}, e.order(construction))

	// the row itself is left for inspection
	recs, err := e.store.ListByPlayer(e.ctx, testPlayer)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestForgetReloadsFromStore(t *testing.T) {
	e := newEnv(t, 1, 0)
	a := e.enqueue("windmill")

	e.sched.Forget(testPlayer)
	require.Equal(t, []string{a.ID}, e.order(construction))
	require.Equal(t, 9900.0, e.money())
}
