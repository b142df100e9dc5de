package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	SimulationsTotal *prometheus.CounterVec
	TasksSimulated   prometheus.Counter
	DeadlineMisses   *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		SimulationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsched_simulations_total",
				Help: "Simulation requests by policy and outcome",
			},
			[]string{"policy", "outcome"}, // outcome: ok, not_found, invalid, error
		),
		TasksSimulated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtsched_tasks_simulated_total",
				Help: "Total number of tasks scheduled across successful simulations",
			},
		),
		DeadlineMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtsched_deadline_misses_total",
				Help: "Tasks that missed their deadline, by policy and priority class",
			},
			[]string{"policy", "priority"},
		),
		// Buckets: 100µs to ~1.6s
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtsched_run_duration_seconds",
				Help:    "Wall-clock time spent executing one simulation",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
			[]string{"policy"},
		),
	}
}
