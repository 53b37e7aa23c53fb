package optimizer

import "fmt"

// SolveStatus classifies the outcome of one solve call. It is produced
// once per call and never mutated.
type SolveStatus int

const (
	// StatusOptimal means no better objective exists.
	StatusOptimal SolveStatus = iota
	// StatusFeasible means a valid assignment was found within the time
	// bound but optimality is unproven.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusInvalid means the solver rejected the model itself.
	StatusInvalid
)

func (s SolveStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "invalid"
	}
}

// MarshalText encodes the status as its lower-case name.
func (s SolveStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a lower-case status name.
func (s *SolveStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "optimal":
		*s = StatusOptimal
	case "feasible":
		*s = StatusFeasible
	case "infeasible":
		*s = StatusInfeasible
	case "invalid":
		*s = StatusInvalid
	default:
		return fmt.Errorf("unknown solve status %q", text)
	}
	return nil
}

// Assignment places one item on one pallet in one orientation.
type Assignment struct {
	Pallet      int
	Orientation int
}

// StackPair records that the top item rests on the bottom item, both
// identified by item ID.
type StackPair struct {
	Top    int
	Bottom int
}

// Solution is the immutable result of one solve: an optional
// (pallet, orientation) assignment per item plus the pairwise rests-on
// relation between loaded items. An item without an assignment was
// legitimately left unloaded.
type Solution struct {
	status      SolveStatus
	objective   int64
	assignments map[int]Assignment
	restsOn     []StackPair
}

// Status reports how the solve concluded.
func (s *Solution) Status() SolveStatus {
	return s.status
}

// Objective reports the achieved objective value in integer units.
func (s *Solution) Objective() int64 {
	return s.objective
}

// Assignment returns the placement for the given item ID, if the item
// was loaded.
func (s *Solution) Assignment(itemID int) (Assignment, bool) {
	a, ok := s.assignments[itemID]
	return a, ok
}

// Loaded reports how many items received an assignment.
func (s *Solution) Loaded() int {
	return len(s.assignments)
}

// RestsOn returns a copy of the rests-on relation.
func (s *Solution) RestsOn() []StackPair {
	out := make([]StackPair, len(s.restsOn))
	copy(out, s.restsOn)
	return out
}
