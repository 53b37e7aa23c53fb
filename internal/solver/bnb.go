package solver

import (
	"context"
	"sort"
	"time"
)

// deadlineCheckInterval controls how often the search polls the clock
// and the context, in visited nodes.
const deadlineCheckInterval = 1024

// BranchAndBound is the default Backend: an exhaustive depth-first
// search over the boolean variables with unit propagation and an
// optimistic objective bound for pruning. Variable and value ordering
// are fixed, so repeated solves of the same model produce the same
// result.
type BranchAndBound struct{}

// NewBranchAndBound returns the default solving backend.
func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{}
}

// Solve runs the search until the model is proven optimal or infeasible,
// or until the wall-clock limit or the context expires. A limit <= 0
// means no time bound.
func (b *BranchAndBound) Solve(ctx context.Context, m *Model, limit time.Duration) *Result {
	if err := m.validate(); err != nil {
		return &Result{Status: StatusInvalid}
	}

	deadline := time.Time{}
	if limit > 0 {
		deadline = time.Now().Add(limit)
	}

	s := newSearch(ctx, m, deadline)
	if !s.presolve() {
		return &Result{Status: StatusInfeasible}
	}
	s.seedHint(m)
	s.dfs()

	switch {
	case s.hasIncumbent && !s.aborted:
		return &Result{Status: StatusOptimal, Objective: s.best, values: s.bestValues}
	case s.hasIncumbent:
		return &Result{Status: StatusFeasible, Objective: s.best, values: s.bestValues}
	case s.aborted:
		return &Result{Status: StatusUnknown}
	default:
		return &Result{Status: StatusInfeasible}
	}
}

// varRef locates one variable's coefficient within one constraint.
type varRef struct {
	constraint int
	coeff      int64
}

type search struct {
	ctx      context.Context
	deadline time.Time
	aborted  bool
	nodes    uint64

	cons     []constraint
	varRefs  [][]varRef
	objCoeff []int64

	values []int8 // -1 unfixed, otherwise 0 or 1
	trail  []int

	// Per-constraint running aggregates over the current partial
	// assignment: the fixed contribution plus the positive/negative
	// residual still reachable through unfixed variables.
	fixedSum []int64
	posResid []int64
	negResid []int64

	objFixed    int64
	objPosResid int64

	order []int

	hasIncumbent bool
	best         int64
	bestValues   []bool
}

func newSearch(ctx context.Context, m *Model, deadline time.Time) *search {
	n := m.NumVars()
	s := &search{
		ctx:      ctx,
		deadline: deadline,
		varRefs:  make([][]varRef, n),
		objCoeff: make([]int64, n),
		values:   make([]int8, n),
		fixedSum: make([]int64, len(m.constraints)),
		posResid: make([]int64, len(m.constraints)),
		negResid: make([]int64, len(m.constraints)),
	}
	for i := range s.values {
		s.values[i] = -1
	}

	// Merge duplicate variables within each constraint so the residual
	// bookkeeping sees one coefficient per variable.
	s.cons = make([]constraint, len(m.constraints))
	for ci, c := range m.constraints {
		merged := mergeTerms(c.terms)
		s.cons[ci] = constraint{kind: c.kind, terms: merged, bound: c.bound}
		for _, t := range merged {
			s.varRefs[t.Var] = append(s.varRefs[t.Var], varRef{constraint: ci, coeff: t.Coeff})
			if t.Coeff > 0 {
				s.posResid[ci] += t.Coeff
			} else {
				s.negResid[ci] += t.Coeff
			}
		}
	}

	for _, t := range m.objective {
		s.objCoeff[t.Var] += t.Coeff
	}
	for _, c := range s.objCoeff {
		if c > 0 {
			s.objPosResid += c
		}
	}

	// Branch on high-value variables first; ties resolved by index so
	// the search order is stable.
	s.order = make([]int, n)
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		return s.objCoeff[s.order[a]] > s.objCoeff[s.order[b]]
	})

	return s
}

func mergeTerms(terms []Term) []Term {
	seen := make(map[BoolVar]int, len(terms))
	merged := make([]Term, 0, len(terms))
	for _, t := range terms {
		if idx, ok := seen[t.Var]; ok {
			merged[idx].Coeff += t.Coeff
			continue
		}
		seen[t.Var] = len(merged)
		merged = append(merged, t)
	}
	return merged
}

// presolve runs one propagation pass at the root, pins every variable no
// constraint touches to its objective-preferred value, and drops
// constraints that are already fully decided so the search never rescans
// them. Reports false when the root propagation proves infeasibility.
// Models whose variables are dominated by unconstrained or singly
// constrained side variables would otherwise spend the entire time
// budget branching through them one node at a time.
func (s *search) presolve() bool {
	if !s.propagate() {
		return false
	}
	for v := range s.values {
		if s.values[v] != -1 || len(s.varRefs[v]) > 0 {
			continue
		}
		if s.objCoeff[v] > 0 {
			s.assign(v, 1)
		} else {
			s.assign(v, 0)
		}
	}
	s.compact()
	// Root fixings are permanent; nothing on the trail should be undone.
	s.trail = s.trail[:0]
	return true
}

// compact rebuilds the constraint store around the variables still
// unfixed after the root pass. Fully decided constraints were verified
// satisfied by propagate and carry no further information.
func (s *search) compact() {
	kept := make([]constraint, 0, len(s.cons))
	for ci := range s.cons {
		for _, t := range s.cons[ci].terms {
			if s.values[t.Var] == -1 {
				kept = append(kept, s.cons[ci])
				break
			}
		}
	}
	s.cons = kept
	s.varRefs = make([][]varRef, len(s.values))
	s.fixedSum = make([]int64, len(kept))
	s.posResid = make([]int64, len(kept))
	s.negResid = make([]int64, len(kept))
	for ci := range kept {
		for _, t := range kept[ci].terms {
			s.varRefs[t.Var] = append(s.varRefs[t.Var], varRef{constraint: ci, coeff: t.Coeff})
			switch {
			case s.values[t.Var] == 1:
				s.fixedSum[ci] += t.Coeff
			case s.values[t.Var] == 0:
			case t.Coeff > 0:
				s.posResid[ci] += t.Coeff
			default:
				s.negResid[ci] += t.Coeff
			}
		}
	}
}

// seedHint installs the model's warm-start assignment as the initial
// incumbent when it satisfies every constraint; a violating hint is
// silently dropped and the search starts cold.
func (s *search) seedHint(m *Model) {
	if len(m.hints) == 0 {
		return
	}
	values := make([]bool, len(s.values))
	for v, val := range m.hints {
		values[v] = val
	}
	for _, c := range m.constraints {
		var sum int64
		for _, t := range c.terms {
			if values[t.Var] {
				sum += t.Coeff
			}
		}
		if c.kind == atMost && sum > c.bound {
			return
		}
		if c.kind == equality && sum != c.bound {
			return
		}
	}
	var obj int64
	for _, t := range m.objective {
		if values[t.Var] {
			obj += t.Coeff
		}
	}
	s.hasIncumbent = true
	s.best = obj
	s.bestValues = values
}

func (s *search) assign(v int, val int8) {
	s.values[v] = val
	s.trail = append(s.trail, v)
	for _, ref := range s.varRefs[v] {
		if val == 1 {
			s.fixedSum[ref.constraint] += ref.coeff
		}
		if ref.coeff > 0 {
			s.posResid[ref.constraint] -= ref.coeff
		} else {
			s.negResid[ref.constraint] -= ref.coeff
		}
	}
	if val == 1 {
		s.objFixed += s.objCoeff[v]
	}
	if s.objCoeff[v] > 0 {
		s.objPosResid -= s.objCoeff[v]
	}
}

func (s *search) undoTo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		val := s.values[v]
		s.values[v] = -1
		for _, ref := range s.varRefs[v] {
			if val == 1 {
				s.fixedSum[ref.constraint] -= ref.coeff
			}
			if ref.coeff > 0 {
				s.posResid[ref.constraint] += ref.coeff
			} else {
				s.negResid[ref.constraint] += ref.coeff
			}
		}
		if val == 1 {
			s.objFixed -= s.objCoeff[v]
		}
		if s.objCoeff[v] > 0 {
			s.objPosResid += s.objCoeff[v]
		}
	}
}

// propagate fixes every variable whose value is forced by a constraint
// and reports whether the partial assignment is still consistent.
func (s *search) propagate() bool {
	for {
		changed := false
		for ci := range s.cons {
			c := &s.cons[ci]
			minSum := s.fixedSum[ci] + s.negResid[ci]
			maxSum := s.fixedSum[ci] + s.posResid[ci]
			if !satisfiable(c, minSum, maxSum) {
				return false
			}
			for _, t := range c.terms {
				if s.values[t.Var] != -1 {
					continue
				}
				minOthers := s.negResid[ci]
				maxOthers := s.posResid[ci]
				if t.Coeff > 0 {
					maxOthers -= t.Coeff
				} else {
					minOthers -= t.Coeff
				}
				base := s.fixedSum[ci]
				ok0 := satisfiable(c, base+minOthers, base+maxOthers)
				ok1 := satisfiable(c, base+t.Coeff+minOthers, base+t.Coeff+maxOthers)
				switch {
				case !ok0 && !ok1:
					return false
				case !ok0:
					s.assign(int(t.Var), 1)
					changed = true
				case !ok1:
					s.assign(int(t.Var), 0)
					changed = true
				}
			}
		}
		if !changed {
			return true
		}
	}
}

// satisfiable reports whether some completion of the partial assignment
// can place the constraint's sum within its bound, given the reachable
// [minSum, maxSum] range.
func satisfiable(c *constraint, minSum, maxSum int64) bool {
	if c.kind == atMost {
		return minSum <= c.bound
	}
	return minSum <= c.bound && maxSum >= c.bound
}

func (s *search) nextUnfixed() int {
	for _, v := range s.order {
		if s.values[v] == -1 {
			return v
		}
	}
	return -1
}

func (s *search) record() {
	if s.hasIncumbent && s.objFixed <= s.best {
		return
	}
	s.best = s.objFixed
	s.hasIncumbent = true
	if s.bestValues == nil {
		s.bestValues = make([]bool, len(s.values))
	}
	for i, v := range s.values {
		s.bestValues[i] = v == 1
	}
}

func (s *search) dfs() {
	if s.aborted {
		return
	}
	s.nodes++
	if s.nodes%deadlineCheckInterval == 0 {
		if s.ctx.Err() != nil || (!s.deadline.IsZero() && time.Now().After(s.deadline)) {
			s.aborted = true
			return
		}
	}

	mark := len(s.trail)
	if !s.propagate() {
		s.undoTo(mark)
		return
	}

	if s.hasIncumbent && s.objFixed+s.objPosResid <= s.best {
		s.undoTo(mark)
		return
	}

	v := s.nextUnfixed()
	if v < 0 {
		s.record()
		s.undoTo(mark)
		return
	}

	// For positive objective coefficients try 1 first so good incumbents
	// arrive early; everything else defaults to 0.
	first, second := int8(0), int8(1)
	if s.objCoeff[v] > 0 {
		first, second = 1, 0
	}
	for _, val := range [2]int8{first, second} {
		if s.aborted {
			break
		}
		branchMark := len(s.trail)
		s.assign(v, val)
		s.dfs()
		s.undoTo(branchMark)
	}
	s.undoTo(mark)
}
