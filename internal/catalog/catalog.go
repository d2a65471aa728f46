// Package catalog holds facility definitions and the technology effect
// calculator that prices, times and unlocks projects.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/rpggio/foreman/internal/domain/project"
	"gopkg.in/yaml.v3"
)

//go:embed assets.yaml
var defaultAssets []byte

// Requirement is a minimum level of another facility or technology.
type Requirement struct {
	Facility string `yaml:"facility" json:"facility"`
	Level    int    `yaml:"level" json:"level"`
}

// Facility is the static definition of something that can be built or researched.
type Facility struct {
	Key                       string         `yaml:"-" json:"key"`
	Name                      string         `yaml:"name" json:"name"`
	Family                    project.Family `yaml:"family" json:"family"`
	BasePrice                 float64        `yaml:"base_price" json:"base_price"`
	BaseConstructionTime      float64        `yaml:"base_construction_time" json:"base_construction_time"`
	PriceMultiplier           float64        `yaml:"price_multiplier" json:"price_multiplier,omitempty"`
	BaseConstructionEnergy    float64        `yaml:"base_construction_energy" json:"base_construction_energy"`
	BaseConstructionPollution float64        `yaml:"base_construction_pollution" json:"base_construction_pollution"`
	Requirements              []Requirement  `yaml:"requirements" json:"requirements,omitempty"`

	// Technology effects on other facilities, applied once per level.
	TimeFactor         float64  `yaml:"time_factor" json:"time_factor,omitempty"`
	PriceFactor        float64  `yaml:"price_factor" json:"price_factor,omitempty"`
	ProdFactor         float64  `yaml:"prod_factor" json:"prod_factor,omitempty"`
	CapacityFactor     float64  `yaml:"capacity_factor" json:"capacity_factor,omitempty"`
	EfficiencyFactor   float64  `yaml:"efficiency_factor" json:"efficiency_factor,omitempty"`
	AffectedFacilities []string `yaml:"affected_facilities" json:"affected_facilities,omitempty"`
}

type assetsFile struct {
	Facilities map[string]Facility `yaml:"facilities"`
}

// Catalog is the closed set of facility identifiers known to the game.
type Catalog struct {
	facilities map[string]Facility
	keys       []string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultAssets)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var file assetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Facilities) == 0 {
		return nil, fmt.Errorf("parse catalog: no facilities defined")
	}

	c := &Catalog{facilities: make(map[string]Facility, len(file.Facilities))}
	for key, f := range file.Facilities {
		f.Key = key
		if !f.Family.Valid() {
			return nil, fmt.Errorf("facility %s: unknown family %q", key, f.Family)
		}
		if f.BaseConstructionTime <= 0 {
			return nil, fmt.Errorf("facility %s: base_construction_time must be positive", key)
		}
		if f.Family.Leveled() && f.PriceMultiplier <= 0 {
			return nil, fmt.Errorf("facility %s: leveled facilities need a price_multiplier", key)
		}
		c.facilities[key] = f
		c.keys = append(c.keys, key)
	}
	for key, f := range c.facilities {
		for _, req := range f.Requirements {
			if _, ok := c.facilities[req.Facility]; !ok {
				return nil, fmt.Errorf("facility %s: requirement on unknown facility %q", key, req.Facility)
			}
		}
		for _, affected := range f.AffectedFacilities {
			if _, ok := c.facilities[affected]; !ok {
				return nil, fmt.Errorf("facility %s: affects unknown facility %q", key, affected)
			}
		}
	}
	sort.Strings(c.keys)
	return c, nil
}

// Get returns the facility definition for key.
func (c *Catalog) Get(key string) (Facility, error) {
	f, ok := c.facilities[key]
	if !ok {
		return Facility{}, fmt.Errorf("%w: %s", project.ErrUnknownFacility, key)
	}
	return f, nil
}

// Keys returns every facility identifier in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// ByFamily returns the facilities of a family in sorted order.
func (c *Catalog) ByFamily(family project.Family) []Facility {
	var out []Facility
	for _, key := range c.keys {
		if f := c.facilities[key]; f.Family == family {
			out = append(out, f)
		}
	}
	return out
}
