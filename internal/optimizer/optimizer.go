package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/loadwise/palletizer/internal/pallet"
	"github.com/loadwise/palletizer/internal/solver"
)

// DefaultTimeLimit is the wall-clock budget for one solve.
const DefaultTimeLimit = 30 * time.Second

// Optimizer runs the build/solve/extract cycle for one item batch
// against one pallet configuration.
type Optimizer interface {
	Optimize(ctx context.Context, items []pallet.Item, cfg pallet.Config) (*Solution, error)
}

type cpOptimizer struct {
	backend   solver.Backend
	timeLimit time.Duration
}

// Option configures the optimizer.
type Option func(*cpOptimizer)

// WithBackend substitutes the solving backend.
func WithBackend(backend solver.Backend) Option {
	return func(o *cpOptimizer) {
		o.backend = backend
	}
}

// WithTimeLimit overrides the wall-clock budget for one solve.
func WithTimeLimit(limit time.Duration) Option {
	return func(o *cpOptimizer) {
		if limit > 0 {
			o.timeLimit = limit
		}
	}
}

// New creates an Optimizer backed by the default branch-and-bound
// solver with a 30 second budget.
func New(opts ...Option) Optimizer {
	o := &cpOptimizer{
		backend:   solver.NewBranchAndBound(),
		timeLimit: DefaultTimeLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize builds the model, solves it within the time budget, and
// extracts an immutable Solution. Infeasible and invalid outcomes are
// surfaced as errors; a time-limited feasible result is not an error.
func (o *cpOptimizer) Optimize(ctx context.Context, items []pallet.Item, cfg pallet.Config) (*Solution, error) {
	built, err := buildModel(items, cfg)
	if err != nil {
		return nil, err
	}

	result := o.backend.Solve(ctx, built.model, o.timeLimit)
	switch result.Status {
	case solver.StatusOptimal, solver.StatusFeasible:
		return extract(built, result, items, cfg), nil
	case solver.StatusInfeasible:
		return nil, ErrInfeasible
	case solver.StatusUnknown:
		return nil, fmt.Errorf("%w: search inconclusive within %s", ErrSolverInvalid, o.timeLimit)
	default:
		return nil, ErrSolverInvalid
	}
}

// extract reads the solved variables into a Solution. An item with no
// true assignment variable was left unloaded, which is not an error.
func extract(built *builtModel, result *solver.Result, items []pallet.Item, cfg pallet.Config) *Solution {
	status := StatusFeasible
	if result.Status == solver.StatusOptimal {
		status = StatusOptimal
	}

	sol := &Solution{
		status:      status,
		objective:   result.Objective,
		assignments: make(map[int]Assignment, len(items)),
	}

	for i, item := range items {
		assigned := -1
		for k := 0; k < cfg.Count; k++ {
			if result.BoolValue(built.x[i][k]) {
				assigned = k
				break
			}
		}
		if assigned < 0 {
			continue
		}
		orientation := 0
		for m := 0; m < pallet.OrientationCount; m++ {
			if result.BoolValue(built.r[i][m]) {
				orientation = m
				break
			}
		}
		sol.assignments[item.ID] = Assignment{Pallet: assigned, Orientation: orientation}
	}

	for i := range items {
		for j := range items {
			if i == j {
				continue
			}
			if result.BoolValue(built.s[[2]int{i, j}]) {
				sol.restsOn = append(sol.restsOn, StackPair{Top: items[i].ID, Bottom: items[j].ID})
			}
		}
	}

	return sol
}
