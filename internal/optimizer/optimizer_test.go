package optimizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loadwise/palletizer/internal/generator"
	"github.com/loadwise/palletizer/internal/pallet"
	"github.com/loadwise/palletizer/internal/solver"
)

func mustBatch(t *testing.T, specs []pallet.ItemSpec) []pallet.Item {
	t.Helper()
	items, err := pallet.NewBatch(specs, pallet.DefaultUnits())
	if err != nil {
		t.Fatalf("building batch: %v", err)
	}
	return items
}

func TestOptimizePrefersHighPriority(t *testing.T) {
	t.Parallel()

	// Three identical 1 m3 crates against a 2 m3 pallet: the two with
	// the highest priority win.
	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "a", Length: 1, Width: 1, Height: 1, MassKg: 100, Priority: 3},
		{Name: "b", Length: 1, Width: 1, Height: 1, MassKg: 100, Priority: 2},
		{Name: "c", Length: 1, Width: 1, Height: 1, MassKg: 100, Priority: 1},
	})
	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())

	sol, err := New().Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sol.Status() != StatusOptimal {
		t.Fatalf("expected optimal, got %s", sol.Status())
	}
	if sol.Loaded() != 2 {
		t.Fatalf("expected 2 items loaded, got %d", sol.Loaded())
	}
	if want := int64(5_000_000); sol.Objective() != want {
		t.Fatalf("expected objective %d, got %d", want, sol.Objective())
	}
	if _, ok := sol.Assignment(items[0].ID); !ok {
		t.Fatalf("expected the priority-3 item to be loaded")
	}
	if _, ok := sol.Assignment(items[1].ID); !ok {
		t.Fatalf("expected the priority-2 item to be loaded")
	}
	if _, ok := sol.Assignment(items[2].ID); ok {
		t.Fatalf("expected the priority-1 item to be left behind")
	}
}

func TestOptimizeRespectsMassCapacity(t *testing.T) {
	t.Parallel()

	// Four 600 kg items over two 1000 kg pallets: one item per pallet.
	specs := make([]pallet.ItemSpec, 4)
	for i := range specs {
		specs[i] = pallet.ItemSpec{Name: "drum", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 600, Priority: 1}
	}
	items := mustBatch(t, specs)
	cfg := pallet.NewCustomConfig(2, 1000, 10, pallet.DefaultUnits())

	sol, err := New().Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sol.Loaded() != 2 {
		t.Fatalf("expected 2 items loaded, got %d", sol.Loaded())
	}
	massByPallet := make(map[int]int64)
	for _, item := range items {
		if a, ok := sol.Assignment(item.ID); ok {
			massByPallet[a.Pallet] += item.Mass
		}
	}
	for k, mass := range massByPallet {
		if mass > cfg.CapacityMass {
			t.Fatalf("pallet %d overloaded: %d > %d", k, mass, cfg.CapacityMass)
		}
	}
}

func TestOptimizeNonRotatableUsesOriginalOrientation(t *testing.T) {
	t.Parallel()

	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "box", Length: 0.5, Width: 0.4, Height: 0.3, MassKg: 10, Priority: 1, Rotatable: false},
	})
	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())

	sol, err := New().Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := sol.Assignment(items[0].ID)
	if !ok {
		t.Fatalf("expected the item to be loaded")
	}
	if a.Orientation != 0 {
		t.Fatalf("expected orientation 0 for a non-rotatable item, got %d", a.Orientation)
	}
}

func TestOptimizeRotatableOrientationIsExclusive(t *testing.T) {
	t.Parallel()

	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "box", Length: 0.5, Width: 0.4, Height: 0.3, MassKg: 10, Priority: 1, Rotatable: true},
	})
	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())

	sol, err := New().Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := sol.Assignment(items[0].ID)
	if !ok {
		t.Fatalf("expected the item to be loaded")
	}
	if a.Orientation < 0 || a.Orientation >= pallet.OrientationCount {
		t.Fatalf("orientation %d out of range", a.Orientation)
	}
}

func TestOptimizeStackingExclusions(t *testing.T) {
	t.Parallel()

	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "glass", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 20, Priority: 1, Fragile: true},
		{Name: "anvil", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 200, Priority: 1},
	})
	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())

	sol, err := New().Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range sol.RestsOn() {
		if p.Bottom == items[0].ID {
			t.Fatalf("item %d rests on a fragile item", p.Top)
		}
		if p.Top == items[1].ID && p.Bottom == items[0].ID {
			t.Fatalf("heavier item rests on a lighter one")
		}
	}
}

func TestOptimizeInvalidConfiguration(t *testing.T) {
	t.Parallel()

	units := pallet.DefaultUnits()
	valid := mustBatch(t, []pallet.ItemSpec{
		{Name: "a", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 10, Priority: 1},
	})

	tests := []struct {
		name  string
		items []pallet.Item
		cfg   pallet.Config
	}{
		{
			name:  "ZeroPallets",
			items: valid,
			cfg:   pallet.NewCustomConfig(0, 1000, 2.0, units),
		},
		{
			name:  "ZeroCapacity",
			items: valid,
			cfg:   pallet.NewCustomConfig(1, 0, 0, units),
		},
		{
			name:  "EmptyBatch",
			items: nil,
			cfg:   pallet.NewCustomConfig(1, 1000, 2.0, units),
		},
		{
			name:  "CorruptItem",
			items: []pallet.Item{{ID: 0, Length: 0.5, Width: 0.5, Height: 0.5}},
			cfg:   pallet.NewCustomConfig(1, 1000, 2.0, units),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New().Optimize(context.Background(), tc.items, tc.cfg)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestOptimizeLargeBatchWithinBudget(t *testing.T) {
	t.Parallel()

	// A batch far too large to solve to optimality: the budget must
	// still yield a feasible plan rather than an error.
	units := pallet.DefaultUnits()
	items, err := generator.Generate(7, "standard", 300, units)
	if err != nil {
		t.Fatalf("generating items: %v", err)
	}
	cfg, err := pallet.NewPresetConfig(pallet.PresetPBR, 2, units)
	if err != nil {
		t.Fatalf("building config: %v", err)
	}

	sol, err := New(WithTimeLimit(time.Second)).Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("expected a solution within the budget, got %v", err)
	}

	if st := sol.Status(); st != StatusFeasible && st != StatusOptimal {
		t.Fatalf("unexpected status %s", st)
	}
	for _, item := range items {
		if a, ok := sol.Assignment(item.ID); ok && (a.Pallet < 0 || a.Pallet >= cfg.Count) {
			t.Fatalf("item %d assigned to pallet %d of %d", item.ID, a.Pallet, cfg.Count)
		}
	}
}

// stubBackend reports a fixed status without searching.
type stubBackend struct {
	status solver.Status
}

func (b stubBackend) Solve(_ context.Context, _ *solver.Model, _ time.Duration) *solver.Result {
	return &solver.Result{Status: b.status}
}

func TestOptimizeBackendStatusMapping(t *testing.T) {
	t.Parallel()

	items := []pallet.ItemSpec{
		{Name: "a", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 10, Priority: 1},
	}
	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())

	tests := []struct {
		name    string
		status  solver.Status
		wantErr error
	}{
		{name: "Infeasible", status: solver.StatusInfeasible, wantErr: ErrInfeasible},
		{name: "Unknown", status: solver.StatusUnknown, wantErr: ErrSolverInvalid},
		{name: "Invalid", status: solver.StatusInvalid, wantErr: ErrSolverInvalid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opt := New(WithBackend(stubBackend{status: tc.status}))
			_, err := opt.Optimize(context.Background(), mustBatch(t, items), cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestOptimizeFeasibleStatusSurvivesExtraction(t *testing.T) {
	t.Parallel()

	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "a", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 10, Priority: 1},
	})
	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())

	opt := New(WithBackend(stubBackend{status: solver.StatusFeasible}))
	sol, err := opt.Optimize(context.Background(), items, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Status() != StatusFeasible {
		t.Fatalf("expected feasible, got %s", sol.Status())
	}
}
