// Package solver defines the narrow CP adapter interface of spec.md §9 and
// two implementations: a CP-SAT backend wrapping google/or-tools, and a
// backtracking brute-force backend used by tests and CP-SAT-less
// environments. Any type satisfying Backend is substitutable everywhere
// else in the module — constraints, objective, and extraction never import
// a concrete solver package.
package solver

import (
	"context"
	"time"
)

// BoolVar is an opaque handle to a Boolean decision variable. Its zero
// value never designates a real variable; backends hand out values from
// NewBoolVar.
type BoolVar int

// Term is one (variable, coefficient) pair in a linear expression.
type Term struct {
	Var   BoolVar
	Coeff int64
}

// Backend is the hard architectural boundary named in spec.md §9: create a
// Boolean variable, add a linear constraint in any of the three
// directions, add a weighted objective term, solve with a time limit and
// seed, read back a variable's value, and report proved infeasibility.
type Backend interface {
	NewBoolVar(name string) BoolVar
	FixBoolVar(v BoolVar, value bool)

	AddLinearLE(terms []Term, limit int64)
	AddLinearEQ(terms []Term, value int64)
	AddLinearGE(terms []Term, value int64)

	AddObjectiveTerm(v BoolVar, weight float64)
	Maximize()

	Solve(ctx context.Context, timeLimit time.Duration, seed int64) (Outcome, error)
	Value(v BoolVar) bool
}

// Outcome carries the result of one Solve call, distinguishing timeout
// from proven infeasibility as required by spec.md §4.6 and §7.
type Outcome struct {
	Feasible       bool
	Infeasible     bool
	TimedOut       bool
	Cancelled      bool
	ObjectiveValue float64
	WallClock      time.Duration
}
