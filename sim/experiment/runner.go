// Package experiment runs every policy preset against every scenario and
// collects comparable metrics rows.
package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rtsched/rtsched/sim"
	"github.com/rtsched/rtsched/sim/scenario"
	"github.com/rtsched/rtsched/sim/trace"
)

// Row holds the metrics of one (scenario, policy) run.
type Row struct {
	Scenario         string
	Algorithm        string
	TotalTasks       int
	HighTasks        int
	LowTasks         int
	HighMet          int
	LowMet           int
	TotalMet         int
	HighSuccessRate  float64 // percent, 2dp
	LowSuccessRate   float64
	TotalSuccessRate float64
	Makespan         float64
	AvgResponseTime  float64
	AvgWaitingTime   float64
	SimulationTime   float64
	TotalTardiness   float64
}

// NewRow derives a metrics row from a run's results.
func NewRow(scenarioName, algorithm string, r *sim.Results) Row {
	return Row{
		Scenario:         scenarioName,
		Algorithm:        algorithm,
		TotalTasks:       r.TotalTasks,
		HighTasks:        r.HighPriority.Total,
		LowTasks:         r.LowPriority.Total,
		HighMet:          r.HighPriority.MetDeadline,
		LowMet:           r.LowPriority.MetDeadline,
		TotalMet:         r.MetDeadline(),
		HighSuccessRate:  round2(r.HighPriority.SuccessRate()),
		LowSuccessRate:   round2(r.LowPriority.SuccessRate()),
		TotalSuccessRate: round2(r.TotalSuccessRate()),
		Makespan:         round2(r.Makespan),
		AvgResponseTime:  round2(r.AvgResponseTime()),
		AvgWaitingTime:   round2(r.AvgWaitingTime()),
		SimulationTime:   round2(r.SimEndedTime),
		TotalTardiness:   round2(r.TotalTardiness()),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Runner fans runs out across a bounded number of goroutines.
// Each run builds its own Simulator from a cloned scenario, so runs share no
// mutable state.
type Runner struct {
	Workers int    // 0 means runtime.GOMAXPROCS(0)
	Layout  string // machine layout for every run; empty means alternating
}

// Run executes every preset against every scenario. Rows are returned in
// (scenario, preset) order regardless of completion order. The first failing
// run cancels the rest.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario, presets []sim.PolicyPreset) ([]Row, error) {
	if !sim.IsValidLayout(r.Layout) {
		return nil, fmt.Errorf("%w: unknown layout %q", sim.ErrInvalidMachineConfig, r.Layout)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	batchID := uuid.New().String()
	logrus.WithFields(logrus.Fields{
		"batch":     batchID,
		"scenarios": len(scenarios),
		"policies":  len(presets),
		"workers":   workers,
	}).Info("starting experiment batch")

	rows := make([]Row, len(scenarios)*len(presets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for si := range scenarios {
		for pi := range presets {
			slot := si*len(presets) + pi
			sc := scenarios[si].Clone()
			preset := presets[pi]
			g.Go(func() error {
				row, err := runOne(gctx, sc, preset, r.Layout)
				if err != nil {
					return fmt.Errorf("%s on %q: %w", preset.Name, sc.Name, err)
				}
				logrus.WithFields(logrus.Fields{
					"batch":    batchID,
					"scenario": sc.Name,
					"policy":   preset.Name,
					"success":  row.TotalSuccessRate,
				}).Debug("run complete")
				rows[slot] = row
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func runOne(ctx context.Context, sc scenario.Scenario, preset sim.PolicyPreset, layout string) (Row, error) {
	policy, err := preset.New()
	if err != nil {
		return Row{}, err
	}
	s, err := sim.NewSimulator(sc.Tasks, sc.MachineConfig(layout), policy, sim.WithTrace(trace.LevelNone))
	if err != nil {
		return Row{}, err
	}
	res, err := s.Run(ctx)
	if err != nil {
		return Row{}, err
	}
	return NewRow(sc.Name, preset.Name, res), nil
}
