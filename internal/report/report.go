// Package report derives logistics cost estimates and performance
// indicators from a utilization report. It consumes the metrics
// snapshot only; it never influences the optimization itself.
package report

import (
	"github.com/loadwise/palletizer/internal/metrics"
	"github.com/loadwise/palletizer/internal/pallet"
)

// CostRates are the caller-supplied unit costs for a cost estimate.
type CostRates struct {
	PalletCost      float64 `json:"pallet_cost"`
	TransportPerKm  float64 `json:"transport_per_km"`
	DistanceKm      float64 `json:"distance_km"`
	LabourPerPallet float64 `json:"labour_per_pallet"`
	StoragePerM3Day float64 `json:"storage_per_m3_day"`
	StorageDays     int     `json:"storage_days"`
}

// CostBreakdown itemises the estimated cost of one optimized load.
type CostBreakdown struct {
	Pallets   float64 `json:"pallets"`
	Transport float64 `json:"transport"`
	Labour    float64 `json:"labour"`
	Storage   float64 `json:"storage"`
	Total     float64 `json:"total"`
}

// Costs estimates the load cost: pallet, transport, and labour costs
// scale with used pallets; storage scales with loaded volume over the
// storage period.
func Costs(m metrics.Report, rates CostRates) CostBreakdown {
	pallets := float64(m.UsedPallets) * rates.PalletCost
	transport := float64(m.UsedPallets) * rates.TransportPerKm * rates.DistanceKm
	labour := float64(m.UsedPallets) * rates.LabourPerPallet
	storage := m.VolumeLoadedM3 * rates.StoragePerM3Day * float64(rates.StorageDays)

	return CostBreakdown{
		Pallets:   pallets,
		Transport: transport,
		Labour:    labour,
		Storage:   storage,
		Total:     pallets + transport + labour + storage,
	}
}

// KPIs are derived performance indicators for dashboards.
type KPIs struct {
	LoadDensityKgM3     float64 `json:"load_density_kg_m3"`
	SpatialEfficiency   float64 `json:"spatial_efficiency"`
	LoadingRate         float64 `json:"loading_rate"`
	ResourceUtilization float64 `json:"resource_utilization"`
	FragilityIndex      float64 `json:"fragility_index"`
	UniqueDestinations  int     `json:"unique_destinations"`
}

// ComputeKPIs derives indicators from the item batch and the metrics
// snapshot.
func ComputeKPIs(items []pallet.Item, m metrics.Report) KPIs {
	kpis := KPIs{
		SpatialEfficiency: m.VolumeUtilization,
		LoadingRate:       m.ItemUtilization,
	}

	if m.VolumeLoadedM3 > 0 {
		kpis.LoadDensityKgM3 = m.MassLoadedKg / m.VolumeLoadedM3
	}
	if m.TotalPallets > 0 {
		kpis.ResourceUtilization = float64(m.UsedPallets) / float64(m.TotalPallets) * 100
	}

	fragile := 0
	seen := make(map[string]struct{})
	for _, item := range items {
		if item.Fragile {
			fragile++
		}
		seen[item.Destination] = struct{}{}
	}
	if len(items) > 0 {
		kpis.FragilityIndex = float64(fragile) / float64(len(items)) * 100
	}
	kpis.UniqueDestinations = len(seen)

	return kpis
}
