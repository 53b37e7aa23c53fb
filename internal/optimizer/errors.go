package optimizer

import "errors"

var (
	// ErrInvalidConfiguration is returned when the pallet configuration or
	// item batch cannot produce a well-formed model: no items, fewer than
	// one pallet, non-positive capacities, or items with non-positive
	// dimensions or mass. The caller must fix the input before retrying.
	ErrInvalidConfiguration = errors.New("invalid optimization configuration")
	// ErrInfeasible is returned when no assignment satisfies the capacity
	// and stacking constraints. Recoverable by loosening the input; never
	// retried automatically.
	ErrInfeasible = errors.New("no feasible assignment exists")
	// ErrSolverInvalid is returned when the solving backend rejected the
	// model or ended inconclusively. This indicates an internal
	// consistency problem rather than an unsatisfiable request.
	ErrSolverInvalid = errors.New("solver rejected the model")
)
