package optimizer

import (
	"context"
	"testing"

	"github.com/loadwise/palletizer/internal/pallet"
	"github.com/loadwise/palletizer/internal/solver"
)

// forceStack pins one rests-on variable to 1 and reports whether the
// model still admits a solution.
func forceStack(t *testing.T, items []pallet.Item, cfg pallet.Config, top, bottom int) bool {
	t.Helper()

	built, err := buildModel(items, cfg)
	if err != nil {
		t.Fatalf("building model: %v", err)
	}
	built.model.AddEquality(1, solver.Term{Var: built.s[[2]int{top, bottom}], Coeff: 1})

	res := solver.NewBranchAndBound().Solve(context.Background(), built.model, 0)
	switch res.Status {
	case solver.StatusOptimal, solver.StatusFeasible:
		return true
	case solver.StatusInfeasible:
		return false
	default:
		t.Fatalf("unexpected solver status %s", res.Status)
		return false
	}
}

func TestBuildModelFragilityForcesStackingZero(t *testing.T) {
	t.Parallel()

	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())
	specs := []pallet.ItemSpec{
		{Name: "light", Length: 0.4, Width: 0.4, Height: 0.4, MassKg: 10, Priority: 1},
		{Name: "bottom", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 20, Priority: 1},
	}

	// The lighter item may rest on the heavier one.
	items := mustBatch(t, specs)
	if !forceStack(t, items, cfg, 0, 1) {
		t.Fatalf("expected the weight rule to permit a lighter item on top")
	}

	// Marking the bottom item fragile must exclude the pair even though
	// the weight rule alone would allow it.
	specs[1].Fragile = true
	items = mustBatch(t, specs)
	if forceStack(t, items, cfg, 0, 1) {
		t.Fatalf("expected fragility to force the rests-on variable to zero")
	}
}

func TestBuildModelWeightRule(t *testing.T) {
	t.Parallel()

	cfg := pallet.NewCustomConfig(1, 1000, 2.0, pallet.DefaultUnits())
	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "heavy", Length: 0.5, Width: 0.5, Height: 0.5, MassKg: 30, Priority: 1},
		{Name: "light", Length: 0.4, Width: 0.4, Height: 0.4, MassKg: 10, Priority: 1},
	})

	if forceStack(t, items, cfg, 0, 1) {
		t.Fatalf("expected a heavier item to be excluded from resting on a lighter one")
	}
	if !forceStack(t, items, cfg, 1, 0) {
		t.Fatalf("expected a lighter item to be allowed on a heavier one")
	}
}

func TestBuildModelVariableCounts(t *testing.T) {
	t.Parallel()

	cfg := pallet.NewCustomConfig(3, 1000, 2.0, pallet.DefaultUnits())
	items := mustBatch(t, []pallet.ItemSpec{
		{Name: "a", Length: 0.4, Width: 0.4, Height: 0.4, MassKg: 10, Priority: 1},
		{Name: "b", Length: 0.4, Width: 0.4, Height: 0.4, MassKg: 10, Priority: 1},
	})

	built, err := buildModel(items, cfg)
	if err != nil {
		t.Fatalf("building model: %v", err)
	}

	// n*count assignment, n*6 orientation, n*(n-1) stacking variables.
	want := 2*3 + 2*pallet.OrientationCount + 2*1
	if got := built.model.NumVars(); got != want {
		t.Fatalf("expected %d variables, got %d", want, got)
	}
}
