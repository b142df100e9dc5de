package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsched/rtsched/server"
)

var (
	addr       string        // Listen address
	runTimeout time.Duration // Per-request simulation timeout
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulator over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		scenarios, err := loadScenarios(scenarioFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{RunTimeout: runTimeout, Scenarios: scenarios})
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	serveCmd.Flags().DurationVar(&runTimeout, "timeout", server.DefaultRunTimeout, "Per-request simulation timeout")
	serveCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "YAML scenario catalogue served by /api/scenarios (default: built-in scenarios)")

	rootCmd.AddCommand(serveCmd)
}
