package solver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/grundschule/timetabler-core/pkg/metrics"
)

// Driver wraps a Backend with the wall-clock budget, cooperative
// cancellation, and metrics emission of spec.md §4.6. It never partially
// commits anything itself — persistence happens downstream in generator.Service
// only when Driver.Solve returns a feasible Outcome.
type Driver struct {
	backend Backend
	logger  *zap.Logger
	metrics *metrics.SolveMetrics
}

// NewDriver builds a Driver around a concrete Backend.
func NewDriver(backend Backend, logger *zap.Logger, m *metrics.SolveMetrics) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{backend: backend, logger: logger, metrics: m}
}

// Solve runs the backend with the given time budget and seed, polling ctx
// for cancellation, and records the outcome to metrics.
func (d *Driver) Solve(ctx context.Context, operation string, timeLimit time.Duration, seed int64, variableCount int) (Outcome, error) {
	start := time.Now()
	outcome, err := d.backend.Solve(ctx, timeLimit, seed)
	elapsed := time.Since(start)
	if outcome.WallClock == 0 {
		outcome.WallClock = elapsed
	}

	label := outcomeLabel(outcome, err)
	d.metrics.ObserveSolve(operation, label, outcome.WallClock, variableCount)

	d.logger.Info("solve completed",
		zap.String("operation", operation),
		zap.String("outcome", label),
		zap.Duration("wall_clock", outcome.WallClock),
		zap.Float64("objective_value", outcome.ObjectiveValue),
		zap.Int("variable_count", variableCount),
	)

	return outcome, err
}

// Value reads back a variable's solved value from the underlying backend.
func (d *Driver) Value(v BoolVar) bool {
	return d.backend.Value(v)
}

func outcomeLabel(outcome Outcome, err error) string {
	switch {
	case err != nil:
		return "error"
	case outcome.Cancelled:
		return "cancelled"
	case outcome.Infeasible:
		return "infeasible"
	case outcome.TimedOut:
		return "timeout"
	case outcome.Feasible:
		return "feasible"
	default:
		return "unknown"
	}
}
