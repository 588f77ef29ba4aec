package machine

import (
	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/sensor"
)

// FleetConfig describes how to build the fleet at startup.
type FleetConfig struct {
	// Counts maps machine type to instance count. Missing types get zero
	// instances; negative counts are a configuration error.
	Counts map[Type]int
	// Filter restricts the fleet to the listed types when non-empty.
	Filter []Type
	// Seed drives all sensor randomness; fleets with the same seed and
	// configuration produce identical reading sequences.
	Seed int64
	// Overrides carries per-sensor-type noise/anomaly overrides.
	Overrides sensor.Overrides
}

// Fleet is the ordered collection of all machine instances for one run.
// It is built once at startup and read-only afterwards; each contained
// Instance still has exclusive ownership of its own sensor state.
type Fleet struct {
	Machines []*Instance
}

// NewFleet instantiates machines type by type in canonical order, numbering
// instances of each type from 001.
func NewFleet(cfg FleetConfig) (*Fleet, error) {
	errFactory := errors.New()

	for typ := range cfg.Counts {
		if _, ok := typeSensors[typ]; !ok {
			return nil, errFactory.WithData(errors.ErrInvalidMachineType, string(typ))
		}
		if cfg.Counts[typ] < 0 {
			return nil, errFactory.WithData(errors.ErrInvalidConfig, "negative machine count for "+string(typ))
		}
	}

	included := make(map[Type]bool, len(Types))
	if len(cfg.Filter) == 0 {
		for _, typ := range Types {
			included[typ] = true
		}
	} else {
		for _, typ := range cfg.Filter {
			if _, ok := typeSensors[typ]; !ok {
				return nil, errFactory.WithData(errors.ErrInvalidMachineType, string(typ))
			}
			included[typ] = true
		}
	}

	fleet := &Fleet{}
	for _, typ := range Types {
		if !included[typ] {
			continue
		}
		for i := 1; i <= cfg.Counts[typ]; i++ {
			m, err := NewInstance(typ, i, cfg.Seed, cfg.Overrides)
			if err != nil {
				return nil, err
			}
			fleet.Machines = append(fleet.Machines, m)
		}
	}

	return fleet, nil
}

// Size returns the number of machines in the fleet.
func (f *Fleet) Size() int {
	return len(f.Machines)
}

// DeviceIDs returns all machine identifiers in fleet order.
func (f *Fleet) DeviceIDs() []string {
	ids := make([]string, 0, len(f.Machines))
	for _, m := range f.Machines {
		ids = append(ids, m.ID)
	}

	return ids
}
