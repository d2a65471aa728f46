package catalog

import (
	"fmt"
	"math"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/domain/project"
)

const (
	// leveled construction time grows with price_multiplier^(0.6*level)
	levelTimeExponent = 0.6
	// leveled construction power grows with price_multiplier^(1.2*level)
	levelPowerExponent = 1.2

	buildingTechnology = "building_technology"
)

// Pricer evaluates technology effects for a player against a catalog.
type Pricer struct {
	catalog        *Catalog
	secondsPerTick float64
}

// NewPricer creates a pricer. secondsPerTick converts in-game seconds into ticks.
func NewPricer(c *Catalog, secondsPerTick float64) (*Pricer, error) {
	if secondsPerTick <= 0 {
		return nil, fmt.Errorf("seconds per tick must be positive, got %v", secondsPerTick)
	}
	return &Pricer{catalog: c, secondsPerTick: secondsPerTick}, nil
}

// Catalog returns the underlying catalog.
func (p *Pricer) Catalog() *Catalog {
	return p.catalog
}

// Quote prices facility for pl. pending is the number of levels of the same
// facility already queued; leveled facilities are priced as if those had
// completed.
func (p *Pricer) Quote(pl *player.Player, facility string, pending int) (project.Quote, error) {
	f, err := p.catalog.Get(facility)
	if err != nil {
		return project.Quote{}, err
	}

	level := 0
	if f.Family.Leveled() {
		level = pl.Level(facility) + pending
	}

	q := project.Quote{
		Facility: facility,
		Family:   f.Family,
		Track:    f.Family.Track(),
		Multipliers: project.Multipliers{
			Price:      p.priceMultiplier(pl, f, level),
			Power:      p.effectMultiplier(pl, facility, func(t Facility) float64 { return t.ProdFactor }),
			Capacity:   p.effectMultiplier(pl, facility, func(t Facility) float64 { return t.CapacityFactor }),
			Efficiency: p.effectMultiplier(pl, facility, func(t Facility) float64 { return t.EfficiencyFactor }),
		},
	}
	q.Price = f.BasePrice * q.Multipliers.Price
	q.DurationTicks = p.durationTicks(pl, f, level)
	q.Power = p.constructionPower(f, level, q.DurationTicks)
	q.Pollution = p.constructionPollution(f, level, q.DurationTicks)
	q.Requirements, q.Locked = p.requirements(pl, f)
	return q, nil
}

func (p *Pricer) priceMultiplier(pl *player.Player, f Facility, level int) float64 {
	mlt := p.effectMultiplier(pl, f.Key, func(t Facility) float64 { return t.PriceFactor })
	if f.Family.Leveled() {
		mlt *= math.Pow(f.PriceMultiplier, float64(level))
	}
	return mlt
}

// effectMultiplier multiplies factor(tech)^level over every technology that
// lists facility as affected.
func (p *Pricer) effectMultiplier(pl *player.Player, facility string, factor func(Facility) float64) float64 {
	mlt := 1.0
	for _, tech := range p.catalog.ByFamily(project.FamilyTechnology) {
		fac := factor(tech)
		if fac == 0 || !affects(tech, facility) {
			continue
		}
		mlt *= math.Pow(fac, float64(pl.Level(tech.Key)))
	}
	return mlt
}

func affects(tech Facility, facility string) bool {
	for _, key := range tech.AffectedFacilities {
		if key == facility {
			return true
		}
	}
	return false
}

func (p *Pricer) durationTicks(pl *player.Player, f Facility, level int) int64 {
	duration := f.BaseConstructionTime / p.secondsPerTick
	if f.Family.Leveled() {
		duration *= math.Pow(f.PriceMultiplier, levelTimeExponent*float64(level))
	}
	if f.Family == project.FamilyTechnology {
		if lab, err := p.catalog.Get(player.Laboratory); err == nil && lab.TimeFactor > 0 {
			duration *= math.Pow(lab.TimeFactor, float64(pl.Level(player.Laboratory)))
		}
	} else if bt, err := p.catalog.Get(buildingTechnology); err == nil && bt.TimeFactor > 0 {
		duration *= math.Pow(bt.TimeFactor, float64(pl.Level(buildingTechnology)))
	}
	ticks := int64(math.Ceil(duration))
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// constructionPower is the power drawn per tick while the project is active, in W.
func (p *Pricer) constructionPower(f Facility, level int, ticks int64) float64 {
	power := f.BaseConstructionEnergy / float64(ticks) / p.secondsPerTick * 3600
	if f.Family.Leveled() {
		power *= math.Pow(f.PriceMultiplier, levelPowerExponent*float64(level))
	}
	return power
}

func (p *Pricer) constructionPollution(f Facility, level int, ticks int64) float64 {
	if f.Family == project.FamilyTechnology {
		return 0
	}
	pollution := f.BaseConstructionPollution / float64(ticks)
	if f.Family == project.FamilyFunctionalFacility {
		pollution *= math.Pow(f.PriceMultiplier, float64(level))
	}
	return pollution
}

// requirements evaluates unlock conditions. Technology requirements scale
// with the technology's current level; offsets that fall below one are dropped.
func (p *Pricer) requirements(pl *player.Player, f Facility) ([]project.Requirement, bool) {
	locked := false
	var out []project.Requirement
	for _, req := range f.Requirements {
		level := req.Level
		if f.Family == project.FamilyTechnology {
			level += pl.Level(f.Key)
			if level < 1 {
				continue
			}
		}
		met := pl.Level(req.Facility) >= level
		if !met {
			locked = true
		}
		out = append(out, project.Requirement{Facility: req.Facility, Level: level, Fulfilled: met})
	}
	return out, locked
}
