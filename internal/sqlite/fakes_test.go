package sqlite

import (
	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

type clockFunc func() int64

func (f clockFunc) Now() int64 { return f() }

type fixedPricer struct{}

func (fixedPricer) Quote(_ *player.Player, facility string, _ int) (project.Quote, error) {
	return project.Quote{
		Facility:      facility,
		Family:        project.FamilyPowerFacility,
		Track:         project.TrackConstruction,
		Price:         100,
		DurationTicks: 10,
		Multipliers:   project.Multipliers{Price: 1, Power: 1, Capacity: 1, Efficiency: 1},
	}, nil
}
