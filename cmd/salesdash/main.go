package main

import (
	"os"

	"github.com/spf13/cobra"

	"salesdash/internal/config"
	"salesdash/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("command failed", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "salesdash",
		Short:         "Sales analytics dashboard",
		Long:          "salesdash serves an interactive sales dashboard backed by a metrics API and stores dashboard snapshots.",
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("mock", false, "Serve the metrics API from built-in sample data")
	root.PersistentFlags().String("mock-dir", "", "Directory of <endpoint>.json files to serve as the metrics API (implies --mock)")

	root.AddCommand(newServeCmd(), newSnapshotCmd())
	return root
}
