package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/loadwise/palletizer/internal/optimizer"
	"github.com/loadwise/palletizer/internal/pallet"
)

func solve(t *testing.T, specs []pallet.ItemSpec, cfg pallet.Config) ([]pallet.Item, *optimizer.Solution) {
	t.Helper()
	items, err := pallet.NewBatch(specs, pallet.DefaultUnits())
	if err != nil {
		t.Fatalf("building batch: %v", err)
	}
	sol, err := optimizer.New().Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("optimizing: %v", err)
	}
	return items, sol
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestComputeUtilization(t *testing.T) {
	t.Parallel()

	units := pallet.DefaultUnits()
	cfg := pallet.NewCustomConfig(2, 1000, 1.0, units)
	items, sol := solve(t, []pallet.ItemSpec{
		{Name: "a", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 100, Priority: 1},
		{Name: "b", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 100, Priority: 1},
	}, cfg)

	report := Compute(items, sol, cfg, units)

	if report.UsedPallets != 1 {
		t.Fatalf("expected 1 used pallet, got %d", report.UsedPallets)
	}
	if report.TotalPallets != 2 {
		t.Fatalf("expected 2 total pallets, got %d", report.TotalPallets)
	}
	if report.ItemsLoaded != 2 || report.ItemsTotal != 2 {
		t.Fatalf("expected 2/2 items, got %d/%d", report.ItemsLoaded, report.ItemsTotal)
	}
	if !approx(report.ItemUtilization, 100) {
		t.Fatalf("expected 100%% item utilization, got %v", report.ItemUtilization)
	}
	if !approx(report.VolumeLoadedM3, 0.25) {
		t.Fatalf("expected 0.25 m3 loaded, got %v", report.VolumeLoadedM3)
	}
	// Availability counts only the pallets actually holding items.
	if !approx(report.VolumeAvailableM3, 1.0) {
		t.Fatalf("expected 1.0 m3 available, got %v", report.VolumeAvailableM3)
	}
	if !approx(report.VolumeUtilization, 25) {
		t.Fatalf("expected 25%% volume utilization, got %v", report.VolumeUtilization)
	}
	if !approx(report.MassLoadedKg, 200) {
		t.Fatalf("expected 200 kg loaded, got %v", report.MassLoadedKg)
	}
	if !approx(report.MassAvailableKg, 1000) {
		t.Fatalf("expected 1000 kg available, got %v", report.MassAvailableKg)
	}
	if !approx(report.MassUtilization, 20) {
		t.Fatalf("expected 20%% mass utilization, got %v", report.MassUtilization)
	}
}

func TestComputeNothingLoaded(t *testing.T) {
	t.Parallel()

	units := pallet.DefaultUnits()
	cfg := pallet.NewCustomConfig(1, 100, 1.0, units)
	// The only item exceeds the mass capacity, so it stays behind.
	items, sol := solve(t, []pallet.ItemSpec{
		{Name: "heavy", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 500, Priority: 1},
	}, cfg)

	report := Compute(items, sol, cfg, units)

	if report.UsedPallets != 0 {
		t.Fatalf("expected 0 used pallets, got %d", report.UsedPallets)
	}
	if report.ItemsLoaded != 0 {
		t.Fatalf("expected 0 items loaded, got %d", report.ItemsLoaded)
	}
	if report.VolumeUtilization != 0 || report.MassUtilization != 0 {
		t.Fatalf("expected zero utilization, got %v/%v",
			report.VolumeUtilization, report.MassUtilization)
	}
}
