package project_test

import (
	"testing"

	"github.com/rpggio/foreman/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestProject_ResumePreservesElapsed(t *testing.T) {
	p := &project.Project{ID: "p1", StartTick: 3, DurationTicks: 20}

	p.Suspend(10)
	require.False(t, p.Active())
	require.Equal(t, int64(7), p.Elapsed(10))
	require.Equal(t, int64(7), p.Elapsed(40), "elapsed is frozen while suspended")

	p.Resume(40)
	require.True(t, p.Active())
	require.Equal(t, int64(33), p.StartTick)
	require.Equal(t, int64(7), p.Elapsed(40))
	require.Equal(t, int64(13), p.Remaining(40))
}

func TestProject_SuspendTwiceKeepsFirstTick(t *testing.T) {
	p := &project.Project{ID: "p1", DurationTicks: 5}
	p.Suspend(2)
	p.Suspend(4)
	require.Equal(t, int64(2), *p.SuspensionTick)
}

func TestProject_ElapsedFraction(t *testing.T) {
	tests := []struct {
		name string
		p    project.Project
		now  int64
		want float64
	}{
		{name: "fresh", p: project.Project{StartTick: 10, DurationTicks: 10}, now: 10, want: 0},
		{name: "half", p: project.Project{StartTick: 0, DurationTicks: 10}, now: 5, want: 0.5},
		{name: "overdue clamps", p: project.Project{StartTick: 0, DurationTicks: 10}, now: 30, want: 1},
		{name: "start in future clamps", p: project.Project{StartTick: 8, DurationTicks: 10}, now: 4, want: 0},
		{name: "frozen at suspension", p: project.Project{StartTick: 0, DurationTicks: 10, SuspensionTick: ptr(2)}, now: 9, want: 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, tt.p.ElapsedFraction(tt.now), 1e-9)
		})
	}
}

func TestProject_Due(t *testing.T) {
	p := &project.Project{StartTick: 0, DurationTicks: 10}
	require.False(t, p.Due(9))
	require.True(t, p.Due(10))

	p.Suspend(5)
	require.False(t, p.Due(100))
}

func TestProject_CloneIsDeep(t *testing.T) {
	p := &project.Project{ID: "p1", SuspensionTick: ptr(4)}
	c := p.Clone()
	*c.SuspensionTick = 9
	require.Equal(t, int64(4), *p.SuspensionTick)
}

func TestProject_Validate(t *testing.T) {
	valid := project.Project{
		ID:            "p1",
		Facility:      "laboratory",
		Family:        project.FamilyFunctionalFacility,
		Track:         project.TrackConstruction,
		DurationTicks: 3,
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.DurationTicks = 0
	require.ErrorIs(t, bad.Validate(), project.ErrInvalidProject)

	bad = valid
	bad.Track = "mining"
	require.ErrorIs(t, bad.Validate(), project.ErrInvalidProject)
}

func TestFamily_TrackAndLeveled(t *testing.T) {
	require.Equal(t, project.TrackResearch, project.FamilyTechnology.Track())
	require.Equal(t, project.TrackConstruction, project.FamilyPowerFacility.Track())
	require.True(t, project.FamilyTechnology.Leveled())
	require.True(t, project.FamilyFunctionalFacility.Leveled())
	require.False(t, project.FamilyStorageFacility.Leveled())
}

func ptr(v int64) *int64 { return &v }
