package project

import (
	"fmt"
	"time"
)

// Track selects the worker pool and priority list a project belongs to.
type Track string

const (
	TrackConstruction Track = "construction"
	TrackResearch     Track = "research"
)

// Tracks lists every track in scheduling order.
var Tracks = []Track{TrackConstruction, TrackResearch}

// Valid reports whether t is a known track.
func (t Track) Valid() bool {
	return t == TrackConstruction || t == TrackResearch
}

// Family classifies a facility for completion effects and level gating.
type Family string

const (
	FamilyPowerFacility      Family = "power_facility"
	FamilyStorageFacility    Family = "storage_facility"
	FamilyExtractionFacility Family = "extraction_facility"
	FamilyFunctionalFacility Family = "functional_facility"
	FamilyTechnology         Family = "technology"
)

// Leveled reports whether each completion upgrades a single counter, so
// that only one level may progress at a time.
func (f Family) Leveled() bool {
	return f == FamilyFunctionalFacility || f == FamilyTechnology
}

// Track returns the track projects of this family are scheduled on.
func (f Family) Track() Track {
	if f == FamilyTechnology {
		return TrackResearch
	}
	return TrackConstruction
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	switch f {
	case FamilyPowerFacility, FamilyStorageFacility, FamilyExtractionFacility, FamilyFunctionalFacility, FamilyTechnology:
		return true
	}
	return false
}

// State is the scheduling state of a project.
type State string

const (
	StateActive    State = "active"
	StateSuspended State = "suspended"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Multipliers are technology factors captured when the project was funded.
type Multipliers struct {
	Price      float64 `json:"price"`
	Power      float64 `json:"power"`
	Capacity   float64 `json:"capacity"`
	Efficiency float64 `json:"efficiency"`
}

// Project is one unit of queued construction or research work.
type Project struct {
	ID             string      `json:"id"`
	PlayerID       string      `json:"player_id"`
	Facility       string      `json:"facility"`
	Family         Family      `json:"family"`
	Track          Track       `json:"track"`
	Seq            int64       `json:"seq"`
	StartTick      int64       `json:"start_tick"`
	DurationTicks  int64       `json:"duration_ticks"`
	SuspensionTick *int64      `json:"suspension_tick,omitempty"`
	Cost           float64     `json:"cost"`
	Power          float64     `json:"power"`
	Pollution      float64     `json:"pollution"`
	Multipliers    Multipliers `json:"multipliers"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Active reports whether the project is currently progressing.
func (p *Project) Active() bool {
	return p.SuspensionTick == nil
}

// State returns Active or Suspended.
func (p *Project) State() State {
	if p.Active() {
		return StateActive
	}
	return StateSuspended
}

// Elapsed returns the ticks of active progress accumulated at now. The value
// is frozen while the project is suspended.
func (p *Project) Elapsed(now int64) int64 {
	end := now
	if p.SuspensionTick != nil {
		end = *p.SuspensionTick
	}
	if end < p.StartTick {
		return 0
	}
	return end - p.StartTick
}

// Remaining returns the ticks of active progress still required.
func (p *Project) Remaining(now int64) int64 {
	left := p.DurationTicks - p.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

// ElapsedFraction returns Elapsed/DurationTicks clamped to [0, 1].
func (p *Project) ElapsedFraction(now int64) float64 {
	if p.DurationTicks <= 0 {
		return 1
	}
	frac := float64(p.Elapsed(now)) / float64(p.DurationTicks)
	switch {
	case frac < 0:
		return 0
	case frac > 1:
		return 1
	}
	return frac
}

// Due reports whether an active project has accumulated its full duration.
func (p *Project) Due(now int64) bool {
	return p.Active() && now-p.StartTick >= p.DurationTicks
}

// Suspend stops progress at now. Suspending a suspended project is a no-op.
func (p *Project) Suspend(now int64) {
	if p.SuspensionTick != nil {
		return
	}
	tick := now
	p.SuspensionTick = &tick
}

// Resume restarts progress at now, shifting StartTick by the suspended span
// so that suspended ticks never count toward completion.
func (p *Project) Resume(now int64) {
	if p.SuspensionTick == nil {
		return
	}
	p.StartTick += now - *p.SuspensionTick
	p.SuspensionTick = nil
}

// Validate checks the fields scheduling depends on.
func (p *Project) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidProject)
	case p.Facility == "":
		return fmt.Errorf("%w: %s has no facility", ErrInvalidProject, p.ID)
	case !p.Track.Valid():
		return fmt.Errorf("%w: %s has track %q", ErrInvalidProject, p.ID, p.Track)
	case !p.Family.Valid():
		return fmt.Errorf("%w: %s has family %q", ErrInvalidProject, p.ID, p.Family)
	case p.DurationTicks <= 0:
		return fmt.Errorf("%w: %s has duration %d", ErrInvalidProject, p.ID, p.DurationTicks)
	}
	return nil
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	c := *p
	if p.SuspensionTick != nil {
		tick := *p.SuspensionTick
		c.SuspensionTick = &tick
	}
	return &c
}
