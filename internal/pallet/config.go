package pallet

import (
	"errors"
	"fmt"
)

// Preset names for common pallet types.
const (
	PresetPBR    = "pbr"
	PresetEuro   = "euro"
	PresetCustom = "custom"
)

// ErrUnknownPreset is returned when a preset name is not recognised.
var ErrUnknownPreset = errors.New("unknown pallet preset")

// Config describes the pallet fleet one solve runs against: how many
// pallets are available and the per-pallet capacity limits in integer
// units. Capacities are fixed for the duration of a solve; comparing two
// configurations requires two independent solves.
type Config struct {
	Count          int    `json:"count" yaml:"count"`
	CapacityMass   int64  `json:"capacity_mass" yaml:"capacity_mass"`
	CapacityVolume int64  `json:"capacity_volume" yaml:"capacity_volume"`
	Kind           string `json:"kind" yaml:"kind"`
}

// presetShape holds a preset's real-world capacity before unit scaling.
type presetShape struct {
	massKg    float64
	l, w      float64
	maxHeight float64
}

var presets = map[string]presetShape{
	// PBR pallet, 1.00 x 1.20 m footprint, 1000 kg, stacked to 1.8 m.
	PresetPBR: {massKg: 1000, l: 1.0, w: 1.2, maxHeight: 1.8},
	// Euro pallet, 0.80 x 1.20 m footprint, 800 kg, stacked to 1.8 m.
	PresetEuro: {massKg: 800, l: 0.8, w: 1.2, maxHeight: 1.8},
}

// PresetNames lists the supported preset identifiers.
func PresetNames() []string {
	return []string{PresetPBR, PresetEuro}
}

// NewPresetConfig builds a Config for a named preset with the given
// pallet count, scaling capacities through the supplied units.
func NewPresetConfig(name string, count int, units Units) (Config, error) {
	shape, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	return Config{
		Count:          count,
		CapacityMass:   units.MassUnits(shape.massKg),
		CapacityVolume: units.VolumeUnits(shape.l, shape.w, shape.maxHeight),
		Kind:           name,
	}, nil
}

// NewCustomConfig builds a Config from caller-supplied real-world
// capacities.
func NewCustomConfig(count int, massKg, volumeM3 float64, units Units) Config {
	return Config{
		Count:          count,
		CapacityMass:   units.MassUnits(massKg),
		CapacityVolume: units.ScaleVolume(volumeM3),
		Kind:           PresetCustom,
	}
}
