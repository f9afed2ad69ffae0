package solver

import (
	"context"
	"time"
)

// BruteForceBackend is a small backtracking search over the same adapter
// interface as CPSATBackend. It exists because the retrieval pack carries
// no second pure-Go constraint solver: DESIGN.md records this as a
// deliberate fallback rather than an invented dependency. It is exercised
// by tests and by callers with no CP-SAT runtime available, never by the
// default production path (solver.CPSATBackend is the default per
// pkg/config.SolverConfig.Backend).
type BruteForceBackend struct {
	names []string

	leConstraints []linearBound
	eqConstraints []linearBound
	geConstraints []linearBound
	fixed         map[BoolVar]bool

	objTerms map[BoolVar]float64
	values   []bool
}

type linearBound struct {
	terms []Term
	bound int64
}

// NewBruteForceBackend constructs an empty backend.
func NewBruteForceBackend() *BruteForceBackend {
	return &BruteForceBackend{fixed: make(map[BoolVar]bool), objTerms: make(map[BoolVar]float64)}
}

func (b *BruteForceBackend) NewBoolVar(name string) BoolVar {
	b.names = append(b.names, name)
	b.values = append(b.values, false)
	return BoolVar(len(b.names) - 1)
}

func (b *BruteForceBackend) FixBoolVar(v BoolVar, value bool) {
	b.fixed[v] = value
}

func (b *BruteForceBackend) AddLinearLE(terms []Term, limit int64) {
	b.leConstraints = append(b.leConstraints, linearBound{terms, limit})
}

func (b *BruteForceBackend) AddLinearEQ(terms []Term, value int64) {
	b.eqConstraints = append(b.eqConstraints, linearBound{terms, value})
}

func (b *BruteForceBackend) AddLinearGE(terms []Term, value int64) {
	b.geConstraints = append(b.geConstraints, linearBound{terms, value})
}

func (b *BruteForceBackend) AddObjectiveTerm(v BoolVar, weight float64) {
	b.objTerms[v] += weight
}

func (b *BruteForceBackend) Maximize() {}

// Solve performs deterministic chronological backtracking: variables are
// tried in creation order, true before false, so identical inputs always
// produce the same assignment (spec.md §4.6, §8 property 9). seed is
// accepted to satisfy the Backend interface but does not affect this
// backend's outcome — its search order has no randomness to seed; only
// CPSATBackend's underlying solver consumes it.
func (b *BruteForceBackend) Solve(ctx context.Context, timeLimit time.Duration, seed int64) (Outcome, error) {
	deadline := time.Now().Add(timeLimit)

	assignment := make([]bool, len(b.names))
	for v, val := range b.fixed {
		assignment[int(v)] = val
	}

	bestFound := false
	var bestAssignment []bool
	var bestObjective float64
	timedOut := false
	cancelled := false

	var backtrack func(idx int) bool
	backtrack = func(idx int) bool {
		select {
		case <-ctx.Done():
			cancelled = true
			return true
		default:
		}
		if time.Now().After(deadline) {
			timedOut = true
			return true
		}
		if idx == len(assignment) {
			if !b.satisfies(assignment) {
				return false
			}
			obj := b.objective(assignment)
			if !bestFound || obj > bestObjective {
				bestFound = true
				bestObjective = obj
				bestAssignment = append([]bool{}, assignment...)
			}
			return false
		}
		if fixedVal, isFixed := b.fixed[BoolVar(idx)]; isFixed {
			assignment[idx] = fixedVal
			return backtrack(idx + 1)
		}
		for _, candidate := range [2]bool{true, false} {
			assignment[idx] = candidate
			if stop := backtrack(idx + 1); stop {
				return true
			}
		}
		return false
	}

	select {
	case <-ctx.Done():
		return Outcome{Cancelled: true}, nil
	default:
	}

	backtrack(0)

	switch {
	case cancelled:
		return Outcome{Cancelled: true}, nil
	case bestFound:
		b.values = bestAssignment
		return Outcome{Feasible: true, ObjectiveValue: bestObjective}, nil
	case timedOut:
		return Outcome{TimedOut: true}, nil
	default:
		return Outcome{Infeasible: true}, nil
	}
}

func (b *BruteForceBackend) satisfies(assignment []bool) bool {
	sum := func(terms []Term) int64 {
		var total int64
		for _, t := range terms {
			if assignment[int(t.Var)] {
				total += t.Coeff
			}
		}
		return total
	}
	for _, c := range b.leConstraints {
		if sum(c.terms) > c.bound {
			return false
		}
	}
	for _, c := range b.eqConstraints {
		if sum(c.terms) != c.bound {
			return false
		}
	}
	for _, c := range b.geConstraints {
		if sum(c.terms) < c.bound {
			return false
		}
	}
	return true
}

func (b *BruteForceBackend) objective(assignment []bool) float64 {
	var total float64
	for v, weight := range b.objTerms {
		if assignment[int(v)] {
			total += weight
		}
	}
	return total
}

func (b *BruteForceBackend) Value(v BoolVar) bool {
	return b.values[int(v)]
}
