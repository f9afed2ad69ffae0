// Package metrics instruments the solver with Prometheus collectors.
// Adapted from the teacher's internal/service/metrics_service.go: the same
// private-registry-plus-typed-recorder shape, redirected from HTTP request
// metrics to solve-run metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SolveMetrics records solve outcomes and durations for the solver driver
// (spec.md §4.6's domain-stack wiring).
type SolveMetrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	solveDuration  *prometheus.HistogramVec
	solveTotal     *prometheus.CounterVec
	solveVariables prometheus.Gauge
}

// NewSolveMetrics registers the solve-run collectors on a private registry,
// the same isolation the teacher's NewMetricsService uses so solve metrics
// never collide with a host process's own registry.
func NewSolveMetrics() *SolveMetrics {
	registry := prometheus.NewRegistry()

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Duration of a generate/optimize solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_solve_total",
		Help: "Total solves by outcome",
	}, []string{"outcome"})

	solveVariables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_solve_variables",
		Help: "Number of Boolean decision variables in the most recent solve",
	})

	registry.MustRegister(solveDuration, solveTotal, solveVariables)

	return &SolveMetrics{
		registry:       registry,
		handler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		solveDuration:  solveDuration,
		solveTotal:     solveTotal,
		solveVariables: solveVariables,
	}
}

// Handler exposes the Prometheus HTTP handler for a host process to mount.
func (m *SolveMetrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveSolve records one solve's duration, outcome, and variable count.
func (m *SolveMetrics) ObserveSolve(operation, outcome string, duration time.Duration, variableCount int) {
	if m == nil {
		return
	}
	m.solveDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.solveTotal.WithLabelValues(outcome).Inc()
	m.solveVariables.Set(float64(variableCount))
}
