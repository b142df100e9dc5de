package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsched/rtsched/sim"
	"github.com/rtsched/rtsched/sim/experiment"
	"github.com/rtsched/rtsched/sim/scenario"
)

var (
	policyConfigPath    string   // YAML policy bundle; empty means all presets
	experimentPolicies  []string // Restrict the run to these policies
	experimentScenarios []string // Restrict the run to these scenarios
	workers             int      // Concurrent runs
	outPath             string   // CSV output path
)

// experimentOptions is the resolved configuration of one `experiment` invocation.
type experimentOptions struct {
	Scenarios []scenario.Scenario
	Presets   []sim.PolicyPreset
	Workers   int
	Layout    string
	OutPath   string
}

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run every policy against every scenario and compare",
	Run: func(cmd *cobra.Command, args []string) {
		if !sim.IsValidLayout(layout) {
			logrus.Fatalf("Invalid layout: %s (valid: %s, %s)", layout, sim.LayoutAlternating, sim.LayoutUniform)
		}
		scenarios, err := loadScenarios(scenarioFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		scenarios, err = filterScenarios(scenarios, experimentScenarios)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		presets, err := loadPresets(policyConfigPath, experimentPolicies)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		opts := experimentOptions{
			Scenarios: scenarios,
			Presets:   presets,
			Workers:   workers,
			Layout:    layout,
			OutPath:   outPath,
		}
		if err := runExperiment(cmd.Context(), os.Stdout, opts); err != nil {
			logrus.Fatalf("Experiment failed: %v", err)
		}
	},
}

// runExperiment runs the batch, optionally writes the CSV, and prints the comparison to w.
func runExperiment(ctx context.Context, w io.Writer, opts experimentOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runner := &experiment.Runner{Workers: opts.Workers, Layout: opts.Layout}
	rows, err := runner.Run(ctx, opts.Scenarios, opts.Presets)
	if err != nil {
		return err
	}
	if opts.OutPath != "" {
		if err := writeRows(opts.OutPath, rows); err != nil {
			return err
		}
		logrus.Infof("Wrote %d rows to %s", len(rows), opts.OutPath)
	}
	return experiment.PrintComparison(w, experiment.Summarize(rows))
}

func writeRows(path string, rows []experiment.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := experiment.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// loadPresets returns the built-in presets, the policies listed in a bundle
// file, or the named policies. A bundle file and names are mutually exclusive.
func loadPresets(path string, names []string) ([]sim.PolicyPreset, error) {
	if path != "" && len(names) > 0 {
		return nil, errors.New("--policy-config and --policy cannot be combined")
	}
	if len(names) > 0 {
		return presetsByName(names)
	}
	if path == "" {
		return sim.PolicyPresets(), nil
	}
	bundle, err := sim.LoadPolicyBundle(path)
	if err != nil {
		return nil, err
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle.Presets()
}

// presetsByName keeps built-in presets under their display names and builds
// any other resolvable policy name with the default alpha.
func presetsByName(names []string) ([]sim.PolicyPreset, error) {
	builtin := sim.PolicyPresets()
	out := make([]sim.PolicyPreset, 0, len(names))
	for _, name := range names {
		if p, ok := findPreset(builtin, name); ok {
			out = append(out, p)
			continue
		}
		bundle := sim.PolicyBundle{Policies: []sim.PolicyEntry{{Name: name}}}
		if err := bundle.Validate(); err != nil {
			return nil, err
		}
		presets, err := bundle.Presets()
		if err != nil {
			return nil, err
		}
		out = append(out, presets...)
	}
	return out, nil
}

func findPreset(presets []sim.PolicyPreset, name string) (sim.PolicyPreset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return sim.PolicyPreset{}, false
}

// filterScenarios returns the named scenarios in the order given, or all of
// them when names is empty.
func filterScenarios(all []scenario.Scenario, names []string) ([]scenario.Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]scenario.Scenario, 0, len(names))
	for _, name := range names {
		sc, ok := scenario.Find(all, name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q; see `rtsched list scenarios`", name)
		}
		out = append(out, sc)
	}
	return out, nil
}

func init() {
	experimentCmd.Flags().StringVar(&policyConfigPath, "policy-config", "", "YAML policy bundle (default: all presets)")
	experimentCmd.Flags().StringArrayVar(&experimentPolicies, "policy", nil, "Only run this policy; repeatable (default: all presets)")
	experimentCmd.Flags().StringArrayVar(&experimentScenarios, "scenario", nil, "Only run this scenario; repeatable (default: all scenarios)")
	experimentCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "YAML scenario catalogue (default: built-in scenarios)")
	experimentCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent simulations (0 = GOMAXPROCS)")
	experimentCmd.Flags().StringVar(&outPath, "out", "", "Write per-run rows to this CSV file")
	experimentCmd.Flags().StringVar(&layout, "layout", sim.LayoutAlternating, "Machine layout (alternating, uniform)")

	rootCmd.AddCommand(experimentCmd)
}
