package optimizer

import (
	"fmt"

	"github.com/loadwise/palletizer/internal/pallet"
	"github.com/loadwise/palletizer/internal/solver"
)

// builtModel pairs a constraint model with the variable handles needed
// to read a solution back out.
type builtModel struct {
	model *solver.Model
	// x[i][k]: item i placed on pallet k.
	x [][]solver.BoolVar
	// r[i][m]: item i uses orientation m.
	r [][]solver.BoolVar
	// s[i][j]: item i rests on item j (i != j).
	s map[[2]int]solver.BoolVar
}

// buildModel formulates the assignment problem: at most one pallet per
// item, exactly one orientation, fragility and weight stacking
// exclusions, aggregate mass/volume capacity per pallet, and an
// objective maximizing priority-weighted loaded volume. The stacking
// relation participates in no other constraint; it is deliberately
// decoupled from capacity and geometry.
func buildModel(items []pallet.Item, cfg pallet.Config) (*builtModel, error) {
	if err := validateInput(items, cfg); err != nil {
		return nil, err
	}

	n := len(items)
	m := solver.NewModel()
	b := &builtModel{
		model: m,
		x:     make([][]solver.BoolVar, n),
		r:     make([][]solver.BoolVar, n),
		s:     make(map[[2]int]solver.BoolVar, n*(n-1)),
	}

	for i := 0; i < n; i++ {
		b.x[i] = make([]solver.BoolVar, cfg.Count)
		for k := 0; k < cfg.Count; k++ {
			b.x[i][k] = m.NewBoolVar(fmt.Sprintf("x_%d_%d", i, k))
		}
		b.r[i] = make([]solver.BoolVar, pallet.OrientationCount)
		for o := 0; o < pallet.OrientationCount; o++ {
			b.r[i][o] = m.NewBoolVar(fmt.Sprintf("r_%d_%d", i, o))
		}
		for j := 0; j < n; j++ {
			if i != j {
				b.s[[2]int{i, j}] = m.NewBoolVar(fmt.Sprintf("s_%d_%d", i, j))
			}
		}
	}

	for i := 0; i < n; i++ {
		// Each item on at most one pallet; leaving an item unloaded is
		// always permitted.
		m.AddAtMost(1, unitTerms(b.x[i])...)

		if items[i].Rotatable {
			m.AddEquality(1, unitTerms(b.r[i])...)
		} else {
			m.AddEquality(1, solver.Term{Var: b.r[i][0], Coeff: 1})
			for o := 1; o < pallet.OrientationCount; o++ {
				m.AddEquality(0, solver.Term{Var: b.r[i][o], Coeff: 1})
			}
		}
	}

	// Nothing rests on a fragile item, and a heavier item never rests on
	// a lighter one.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if items[j].Fragile || items[i].Mass > items[j].Mass {
				m.AddEquality(0, solver.Term{Var: b.s[[2]int{i, j}], Coeff: 1})
			}
		}
	}

	// Aggregate capacity ledger per pallet: two running totals, not a
	// footprint constraint.
	for k := 0; k < cfg.Count; k++ {
		massTerms := make([]solver.Term, n)
		volumeTerms := make([]solver.Term, n)
		for i := 0; i < n; i++ {
			massTerms[i] = solver.Term{Var: b.x[i][k], Coeff: items[i].Mass}
			volumeTerms[i] = solver.Term{Var: b.x[i][k], Coeff: items[i].Volume}
		}
		m.AddAtMost(cfg.CapacityMass, massTerms...)
		m.AddAtMost(cfg.CapacityVolume, volumeTerms...)
	}

	objective := make([]solver.Term, 0, n*cfg.Count)
	for i := 0; i < n; i++ {
		value := items[i].Volume * int64(items[i].Priority)
		for k := 0; k < cfg.Count; k++ {
			objective = append(objective, solver.Term{Var: b.x[i][k], Coeff: value})
		}
	}
	m.Maximize(objective)

	// Warm start: leaving every item unloaded in its first orientation
	// satisfies every constraint, so a solve that exhausts its budget
	// still yields a feasible plan instead of an inconclusive search.
	for i := 0; i < n; i++ {
		m.AddHint(b.r[i][0], true)
	}

	return b, nil
}

func validateInput(items []pallet.Item, cfg pallet.Config) error {
	if cfg.Count < 1 {
		return fmt.Errorf("%w: pallet count %d", ErrInvalidConfiguration, cfg.Count)
	}
	if cfg.CapacityMass <= 0 || cfg.CapacityVolume <= 0 {
		return fmt.Errorf("%w: capacities must be positive", ErrInvalidConfiguration)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: empty item batch", ErrInvalidConfiguration)
	}
	for _, it := range items {
		if it.Length <= 0 || it.Width <= 0 || it.Height <= 0 || it.Mass <= 0 || it.Volume <= 0 {
			return fmt.Errorf("%w: item %d has non-positive dimension or mass", ErrInvalidConfiguration, it.ID)
		}
	}
	return nil
}

func unitTerms(vars []solver.BoolVar) []solver.Term {
	terms := make([]solver.Term, len(vars))
	for i, v := range vars {
		terms[i] = solver.Term{Var: v, Coeff: 1}
	}
	return terms
}
