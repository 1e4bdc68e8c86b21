package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"salesdash/internal/dashboard"
	"salesdash/internal/format"
	"salesdash/internal/logger"
	"salesdash/internal/reports"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Load the dashboard once with the configured defaults and store a snapshot",
		RunE:  runSnapshot,
	}
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	from, err := format.ParseDate(a.cfg.DateOptionsFrom)
	if err != nil {
		return fmt.Errorf("invalid DATE_OPTIONS_FROM: %w", err)
	}
	to, err := format.ParseDate(a.cfg.DateOptionsTo)
	if err != nil {
		return fmt.Errorf("invalid DATE_OPTIONS_TO: %w", err)
	}

	d, err := dashboard.New(dashboard.Options{
		Client:      a.client,
		Factory:     a.factory,
		Defaults:    dashboard.FiltersFromConfig(a.cfg),
		DateOptions: format.MonthOptions(from, to),
		Layout:      a.layout,
		Metrics:     a.metrics,
	})
	if err != nil {
		return err
	}
	if err := d.LoadDashboard(ctx); err != nil {
		// failed charts are listed in the summary
		logger.Warn("dashboard loaded with failures", logger.Fields{"error": err.Error()})
	}

	folder, err := a.snapshots.Store(ctx, reports.Capture(d, time.Now()))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", a.store.Location(), folder)
	return nil
}
