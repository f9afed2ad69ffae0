package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
)

// CPSATBackend wraps the google/or-tools CP-SAT Go bindings behind the
// Backend interface. Grounded on the pack's own sample
// (no_overlap_sample_sat.go): cpmodel.NewCpModelBuilder, NewBoolVar,
// AddLessOrEqual/AddGreaterOrEqual, Minimize/Maximize, model.Model(),
// cpmodel.SolveCpModel, cpmodel.SolutionIntegerValue. This is the
// production backend spec.md §2 and §9 describe ("CP-SAT-style backend").
type CPSATBackend struct {
	model    *cpmodel.CpModelBuilder
	vars     []cpmodel.BoolVar
	obj      *cpmodel.LinearExpr
	response *cmpb.CpSolverResponse
}

// NewCPSATBackend constructs an empty CP-SAT model builder.
func NewCPSATBackend() *CPSATBackend {
	return &CPSATBackend{
		model: cpmodel.NewCpModelBuilder(),
		obj:   cpmodel.NewLinearExpr(),
	}
}

// NewBoolVar creates a new Boolean decision variable.
func (b *CPSATBackend) NewBoolVar(name string) BoolVar {
	v := b.model.NewBoolVar(name)
	b.vars = append(b.vars, v)
	return BoolVar(len(b.vars) - 1)
}

// FixBoolVar pins a variable to a constant value, used for pinned/fixed
// assignments (spec.md §4.3, §4.4 item 11).
func (b *CPSATBackend) FixBoolVar(v BoolVar, value bool) {
	lit := b.resolve(v)
	if value {
		b.model.AddBoolOr(lit)
	} else {
		b.model.AddBoolOr(lit.Not())
	}
}

func (b *CPSATBackend) resolve(v BoolVar) cpmodel.BoolVar {
	return b.vars[int(v)]
}

func (b *CPSATBackend) expr(terms []Term) *cpmodel.LinearExpr {
	e := cpmodel.NewLinearExpr()
	for _, t := range terms {
		e = e.AddTerm(b.resolve(t.Var), t.Coeff)
	}
	return e
}

// AddLinearLE adds Σ coeff*var <= limit.
func (b *CPSATBackend) AddLinearLE(terms []Term, limit int64) {
	b.model.AddLessOrEqual(b.expr(terms), cpmodel.NewConstant(limit))
}

// AddLinearEQ adds Σ coeff*var == value.
func (b *CPSATBackend) AddLinearEQ(terms []Term, value int64) {
	b.model.AddEquality(b.expr(terms), cpmodel.NewConstant(value))
}

// AddLinearGE adds Σ coeff*var >= value.
func (b *CPSATBackend) AddLinearGE(terms []Term, value int64) {
	b.model.AddGreaterOrEqual(b.expr(terms), cpmodel.NewConstant(value))
}

// AddObjectiveTerm accumulates one weighted term into the maximized
// objective (spec.md §4.5). CP-SAT's objective takes integer coefficients,
// so weight is truncated to int64; the objective compiler's weights are
// already integers and are passed unscaled.
func (b *CPSATBackend) AddObjectiveTerm(v BoolVar, weight float64) {
	b.obj = b.obj.AddTerm(b.resolve(v), int64(weight))
}

// Maximize finalizes the objective built up by AddObjectiveTerm.
func (b *CPSATBackend) Maximize() {
	b.model.Maximize(b.obj)
}

// Solve runs CP-SAT with the given wall-clock budget and seed, polling ctx
// for cooperative cancellation between the model build (already done) and
// the backend call — the backend call itself is opaque to the Go
// scheduler, so cancellation is best-effort: a cancelled context recorded
// before Solve dispatches skips the call entirely and returns Cancelled.
func (b *CPSATBackend) Solve(ctx context.Context, timeLimit time.Duration, seed int64) (Outcome, error) {
	select {
	case <-ctx.Done():
		return Outcome{Cancelled: true}, nil
	default:
	}

	m, err := b.model.Model()
	if err != nil {
		return Outcome{}, fmt.Errorf("instantiate cp model: %w", err)
	}

	params := &sppb.SatParameters{
		MaxTimeInSeconds: proto64(timeLimit.Seconds()),
		RandomSeed:       proto32(int32(seed)),
	}

	start := time.Now()
	response, err := cpmodel.SolveCpModelWithParameters(m, params)
	elapsed := time.Since(start)
	if err != nil {
		return Outcome{}, fmt.Errorf("solve cp model: %w", err)
	}

	switch response.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL, cmpb.CpSolverStatus_FEASIBLE:
		b.response = response
		return Outcome{Feasible: true, ObjectiveValue: response.GetObjectiveValue(), WallClock: elapsed}, nil
	case cmpb.CpSolverStatus_INFEASIBLE:
		return Outcome{Infeasible: true, WallClock: elapsed}, nil
	default:
		return Outcome{TimedOut: elapsed >= timeLimit, WallClock: elapsed}, nil
	}
}

// Value reads back a variable's solved value. Only meaningful after a
// feasible Solve call.
func (b *CPSATBackend) Value(v BoolVar) bool {
	if b.response == nil {
		return false
	}
	return cpmodel.SolutionBooleanValue(b.response, b.resolve(v))
}

func proto64(v float64) *float64 { return &v }
func proto32(v int32) *int32     { return &v }
