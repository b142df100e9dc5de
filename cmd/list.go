package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsched/rtsched/sim"
	"github.com/rtsched/rtsched/sim/scenario"
)

var listCmd = &cobra.Command{
	Use:       "list {algorithms|scenarios}",
	Short:     "List available scheduling algorithms or scenarios",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"algorithms", "scenarios"},
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "algorithms":
			err = listAlgorithms(os.Stdout)
		case "scenarios":
			scenarios, loadErr := loadScenarios(scenarioFile)
			if loadErr != nil {
				logrus.Fatalf("%v", loadErr)
			}
			err = listScenarios(os.Stdout, scenarios)
		}
		if err != nil {
			logrus.Fatalf("list %s: %v", args[0], err)
		}
	},
}

func listAlgorithms(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, p := range sim.PolicyPresets() {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Description)
	}
	return tw.Flush()
}

// listScenarios prints scenarios grouped by category. INFEASIBLE counts tasks
// that miss their deadline even when started on arrival.
func listScenarios(w io.Writer, scenarios []scenario.Scenario) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tNAME\tMACHINES\tTASKS\tINFEASIBLE\tDESCRIPTION")
	groups := scenario.ByCategory(scenarios)
	for _, category := range scenario.CategoryOrder(scenarios) {
		label := category
		if label == "" {
			label = "-"
		}
		for _, s := range groups[category] {
			infeasible := 0
			for _, t := range s.Tasks {
				if !t.Feasible() {
					infeasible++
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
				label, s.Name, s.NumMachines, len(s.Tasks), infeasible, s.Description)
		}
	}
	return tw.Flush()
}

func init() {
	listCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "YAML scenario catalogue (default: built-in scenarios)")
	rootCmd.AddCommand(listCmd)
}
