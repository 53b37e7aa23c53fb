// Package solver provides a small constraint-programming capability over
// boolean decision variables: linear (in)equality constraints with
// integer coefficients and a linear maximize objective, solved within a
// wall-clock budget. Model building is separated from solving so a
// different backend can be substituted without touching callers.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status classifies the outcome of a solve.
type Status int

const (
	// StatusInvalid means the backend rejected the model itself.
	StatusInvalid Status = iota
	// StatusUnknown means the search ended inconclusively: the time
	// budget expired before a feasible assignment was found or
	// infeasibility was proven.
	StatusUnknown
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusFeasible means a valid assignment was found within the time
	// budget but optimality was not proven.
	StatusFeasible
	// StatusOptimal means the returned assignment maximizes the objective.
	StatusOptimal
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// ErrInvalidModel is returned when a model references unknown variables
// or is otherwise malformed.
var ErrInvalidModel = errors.New("model is malformed")

// BoolVar is a handle to a boolean decision variable within a Model.
type BoolVar int

// Term is a boolean variable scaled by an integer coefficient.
type Term struct {
	Var   BoolVar
	Coeff int64
}

type constraintKind int

const (
	atMost constraintKind = iota
	equality
)

type constraint struct {
	kind  constraintKind
	terms []Term
	bound int64
}

// Model accumulates boolean variables, linear constraints over them, and
// an optional maximize objective.
type Model struct {
	names       []string
	constraints []constraint
	objective   []Term
	hints       map[BoolVar]bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar registers a boolean variable and returns its handle. The
// name is only used for diagnostics.
func (m *Model) NewBoolVar(name string) BoolVar {
	m.names = append(m.names, name)
	return BoolVar(len(m.names) - 1)
}

// NumVars reports the number of registered variables.
func (m *Model) NumVars() int {
	return len(m.names)
}

// AddAtMost adds the constraint sum(terms) <= bound.
func (m *Model) AddAtMost(bound int64, terms ...Term) {
	m.constraints = append(m.constraints, constraint{kind: atMost, terms: terms, bound: bound})
}

// AddEquality adds the constraint sum(terms) == bound.
func (m *Model) AddEquality(bound int64, terms ...Term) {
	m.constraints = append(m.constraints, constraint{kind: equality, terms: terms, bound: bound})
}

// Maximize sets the objective to maximize sum(terms). A model without an
// objective is a pure satisfaction problem.
func (m *Model) Maximize(terms []Term) {
	m.objective = terms
}

// AddHint records one variable of a warm-start assignment; unhinted
// variables default to false. A backend evaluates the completed
// assignment before searching and, when it satisfies every constraint,
// keeps it as the initial incumbent, so a solve that exhausts its time
// budget still reports a feasible result. Hints that violate a
// constraint are discarded.
func (m *Model) AddHint(v BoolVar, value bool) {
	if m.hints == nil {
		m.hints = make(map[BoolVar]bool)
	}
	m.hints[v] = value
}

// validate checks that every referenced variable exists.
func (m *Model) validate() error {
	check := func(terms []Term) error {
		for _, t := range terms {
			if t.Var < 0 || int(t.Var) >= len(m.names) {
				return fmt.Errorf("%w: unknown variable %d", ErrInvalidModel, t.Var)
			}
		}
		return nil
	}
	for _, c := range m.constraints {
		if err := check(c.terms); err != nil {
			return err
		}
	}
	for v := range m.hints {
		if v < 0 || int(v) >= len(m.names) {
			return fmt.Errorf("%w: unknown variable %d", ErrInvalidModel, v)
		}
	}
	return check(m.objective)
}

// Result holds the outcome of a solve. Variable values are only
// meaningful when Status is StatusOptimal or StatusFeasible.
type Result struct {
	Status    Status
	Objective int64
	values    []bool
}

// BoolValue reads the solved value of a variable.
func (r *Result) BoolValue(v BoolVar) bool {
	if r == nil || int(v) < 0 || int(v) >= len(r.values) {
		return false
	}
	return r.values[v]
}

// Backend is a bounded-time solving capability over a built model.
type Backend interface {
	Solve(ctx context.Context, m *Model, limit time.Duration) *Result
}
