package player

import (
	"time"

	"github.com/rpggio/foreman/internal/domain/project"
)

// Laboratory is the functional facility whose level sets research capacity.
const Laboratory = "laboratory"

// Player owns funds, worker pools and facility counters.
type Player struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Money               float64        `json:"money"`
	ConstructionWorkers int            `json:"construction_workers"`
	Levels              map[string]int `json:"levels,omitempty"`
	Installed           map[string]int `json:"installed,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// Level returns the completed level of a leveled facility or technology.
func (p *Player) Level(facility string) int {
	return p.Levels[facility]
}

// LabWorkers is the research capacity granted by the laboratory:
// one worker per three levels, starting with the first.
func (p *Player) LabWorkers() int {
	return (p.Level(Laboratory) + 2) / 3
}

// Workers returns the worker count for a track.
func (p *Player) Workers(track project.Track) int {
	switch track {
	case project.TrackConstruction:
		return p.ConstructionWorkers
	case project.TrackResearch:
		return p.LabWorkers()
	}
	return 0
}

// Upgrade increments the level counter of a facility.
func (p *Player) Upgrade(facility string) int {
	if p.Levels == nil {
		p.Levels = make(map[string]int)
	}
	p.Levels[facility]++
	return p.Levels[facility]
}

// Install increments the built-copies counter of a facility.
func (p *Player) Install(facility string) int {
	if p.Installed == nil {
		p.Installed = make(map[string]int)
	}
	p.Installed[facility]++
	return p.Installed[facility]
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	c := *p
	c.Levels = make(map[string]int, len(p.Levels))
	for k, v := range p.Levels {
		c.Levels[k] = v
	}
	c.Installed = make(map[string]int, len(p.Installed))
	for k, v := range p.Installed {
		c.Installed[k] = v
	}
	return &c
}
