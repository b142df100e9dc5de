package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsched/rtsched/sim"
	"github.com/rtsched/rtsched/sim/scenario"
	"github.com/rtsched/rtsched/sim/trace"
)

var (
	policyName   string  // Selection policy name or preset
	alpha        float64 // DPE elevation threshold
	scenarioName string  // Scenario to run
	scenarioFile string  // YAML scenario catalogue; empty means built-ins
	numMachines  int     // Overrides the scenario's machine count when > 0
	layout       string  // Machine layout
	traceLevel   string  // Event log level
	jsonOutput   bool    // Emit results as JSON
)

// runOptions is the resolved configuration of one `run` invocation.
type runOptions struct {
	Policy      string
	Alpha       float64
	Scenario    scenario.Scenario
	NumMachines int
	Layout      string
	Trace       trace.Level
	JSON        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scenario under one scheduling policy",
	Run: func(cmd *cobra.Command, args []string) {
		if !trace.IsValidLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, events)", traceLevel)
		}
		if !sim.IsValidLayout(layout) {
			logrus.Fatalf("Invalid layout: %s (valid: %s, %s)", layout, sim.LayoutAlternating, sim.LayoutUniform)
		}
		scenarios, err := loadScenarios(scenarioFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		sc, ok := scenario.Find(scenarios, scenarioName)
		if !ok {
			logrus.Fatalf("Unknown scenario %q; see `rtsched list scenarios`", scenarioName)
		}
		opts := runOptions{
			Policy:      policyName,
			Alpha:       alpha,
			Scenario:    sc,
			NumMachines: numMachines,
			Layout:      layout,
			Trace:       trace.Level(traceLevel),
			JSON:        jsonOutput,
		}
		if err := runScenario(cmd.Context(), os.Stdout, opts); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

// loadScenarios returns the built-in catalogue, or the catalogue in path if set.
func loadScenarios(path string) ([]scenario.Scenario, error) {
	if path == "" {
		return scenario.Builtin(), nil
	}
	scenarios, err := scenario.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading scenarios from %s: %w", path, err)
	}
	return scenarios, nil
}

// runScenario simulates one scenario and writes the report to w.
func runScenario(ctx context.Context, w io.Writer, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	policy, err := sim.NewPolicy(opts.Policy, opts.Alpha)
	if err != nil {
		return err
	}
	cfg := opts.Scenario.MachineConfig(opts.Layout)
	if opts.NumMachines > 0 {
		cfg.NumMachines = opts.NumMachines
	}
	s, err := sim.NewSimulator(opts.Scenario.Tasks, cfg, policy, sim.WithTrace(opts.Trace))
	if err != nil {
		return err
	}
	logrus.Infof("Running %q with %s on %d machines", opts.Scenario.Name, policy.Name(), cfg.NumMachines)
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printResults(w, opts.Scenario.Name, res, s.Machines())
}

// printResults writes a human-readable report of one run.
func printResults(w io.Writer, scenarioName string, res *sim.Results, machines []*sim.Machine) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "=== %s | %s ===\n", scenarioName, res.Policy)
	fmt.Fprintf(tw, "Makespan:\t%.2f\n", res.Makespan)
	fmt.Fprintf(tw, "Tasks:\t%d\n", res.TotalTasks)
	fmt.Fprintf(tw, "HIGH met deadline:\t%d/%d (%.1f%%)\n",
		res.HighPriority.MetDeadline, res.HighPriority.Total, res.HighPriority.SuccessRate())
	fmt.Fprintf(tw, "LOW met deadline:\t%d/%d (%.1f%%)\n",
		res.LowPriority.MetDeadline, res.LowPriority.Total, res.LowPriority.SuccessRate())
	fmt.Fprintf(tw, "Total tardiness:\t%.2f\n", res.TotalTardiness())
	fmt.Fprintf(tw, "Avg response time:\t%.2f\n", res.AvgResponseTime())
	fmt.Fprintf(tw, "Avg waiting time:\t%.2f\n", res.AvgWaitingTime())

	var summary *trace.TraceSummary
	if len(res.Log) > 0 {
		summary = trace.Summarize(&trace.SimulationTrace{Level: trace.LevelEvents, Records: res.Log})
		fmt.Fprintf(tw, "Mean dispatch wait:\t%.2f (max %.2f)\n", summary.MeanWait, summary.MaxWait)
	}
	for _, m := range machines {
		fmt.Fprintf(tw, "Machine %d:\t%dCPU/%dGB", m.ID, m.CPUCapacity, m.RAMCapacity)
		if summary != nil {
			fmt.Fprintf(tw, ", %d tasks, busy %.2f", summary.PerMachine[m.ID], summary.BusyTime[m.ID])
		}
		fmt.Fprintln(tw)
	}
	if len(res.Log) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TIME\tEVENT\tMESSAGE")
		for _, r := range res.Log {
			fmt.Fprintf(tw, "%.2f\t%s\t%s\n", r.Time, r.Kind, r.Message)
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tPRIORITY\tARRIVAL\tSTART\tEND\tDEADLINE\tMACHINE\tMET")
	for _, t := range res.Tasks {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%v\n",
			t.ID, t.Priority, t.ArrivalTime, t.StartTime, t.CompletionTime, t.Deadline, t.MachineID, t.MeetsDeadline())
	}
	return tw.Flush()
}

func init() {
	runCmd.Flags().StringVar(&policyName, "policy", "EDF", "Scheduling policy (see `rtsched list algorithms`)")
	runCmd.Flags().Float64Var(&alpha, "alpha", sim.DefaultDPEAlpha, "DPE elevation threshold in [0, 1]; preset names carry their own")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "Light Load", "Scenario name (see `rtsched list scenarios`)")
	runCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "YAML scenario catalogue (default: built-in scenarios)")
	runCmd.Flags().IntVar(&numMachines, "machines", 0, "Override the scenario's machine count")
	runCmd.Flags().StringVar(&layout, "layout", sim.LayoutAlternating, "Machine layout (alternating, uniform)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.LevelEvents), "Event log level (none, events)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(runCmd)
}
