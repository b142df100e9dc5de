package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsched/rtsched/sim/experiment"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <results.csv>",
	Short: "Summarize an experiment CSV per algorithm",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := analyzeFile(os.Stdout, args[0]); err != nil {
			logrus.Fatalf("Analyze failed: %v", err)
		}
	},
}

// analyzeFile reads rows written by `experiment --out` and prints the
// per-algorithm comparison with the best and fastest algorithms.
func analyzeFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := experiment.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s has no result rows", path)
	}
	logrus.Debugf("Analyzing %d rows from %s", len(rows), path)
	return experiment.PrintAnalysis(w, experiment.Summarize(rows))
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
