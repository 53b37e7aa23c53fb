// Package metrics derives utilization statistics from one solved
// Solution and the pallet configuration it was solved against.
package metrics

import (
	"github.com/loadwise/palletizer/internal/optimizer"
	"github.com/loadwise/palletizer/internal/pallet"
)

// Report is a read-only utilization snapshot. Quantities are reported in
// real-world units for human consumption; all capacity arithmetic is
// done on the integer units before conversion.
type Report struct {
	UsedPallets  int `json:"used_pallets"`
	TotalPallets int `json:"total_pallets"`

	ItemsLoaded     int     `json:"items_loaded"`
	ItemsTotal      int     `json:"items_total"`
	ItemUtilization float64 `json:"item_utilization"`

	VolumeLoadedM3    float64 `json:"volume_loaded_m3"`
	VolumeAvailableM3 float64 `json:"volume_available_m3"`
	VolumeUtilization float64 `json:"volume_utilization"`

	MassLoadedKg    float64 `json:"mass_loaded_kg"`
	MassAvailableKg float64 `json:"mass_available_kg"`
	MassUtilization float64 `json:"mass_utilization"`
}

// Compute aggregates the solution over pallets holding at least one
// item. Utilization rates are zero when no pallet is used.
func Compute(items []pallet.Item, sol *optimizer.Solution, cfg pallet.Config, units pallet.Units) Report {
	palletVolume := make([]int64, cfg.Count)
	palletMass := make([]int64, cfg.Count)
	palletItems := make([]int, cfg.Count)

	for _, item := range items {
		a, ok := sol.Assignment(item.ID)
		if !ok {
			continue
		}
		palletVolume[a.Pallet] += item.Volume
		palletMass[a.Pallet] += item.Mass
		palletItems[a.Pallet]++
	}

	var usedPallets, itemsLoaded int
	var volumeLoaded, massLoaded int64
	for k := 0; k < cfg.Count; k++ {
		if palletItems[k] == 0 {
			continue
		}
		usedPallets++
		itemsLoaded += palletItems[k]
		volumeLoaded += palletVolume[k]
		massLoaded += palletMass[k]
	}

	volumeAvailable := cfg.CapacityVolume * int64(usedPallets)
	massAvailable := cfg.CapacityMass * int64(usedPallets)

	report := Report{
		UsedPallets:       usedPallets,
		TotalPallets:      cfg.Count,
		ItemsLoaded:       itemsLoaded,
		ItemsTotal:        len(items),
		VolumeLoadedM3:    units.CubicMetres(volumeLoaded),
		VolumeAvailableM3: units.CubicMetres(volumeAvailable),
		MassLoadedKg:      units.Kilograms(massLoaded),
		MassAvailableKg:   units.Kilograms(massAvailable),
	}

	if len(items) > 0 {
		report.ItemUtilization = float64(itemsLoaded) / float64(len(items)) * 100
	}
	if volumeAvailable > 0 {
		report.VolumeUtilization = float64(volumeLoaded) / float64(volumeAvailable) * 100
	}
	if massAvailable > 0 {
		report.MassUtilization = float64(massLoaded) / float64(massAvailable) * 100
	}

	return report
}
