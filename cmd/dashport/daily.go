package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/dashport/internal/app"

	"github.com/okian/dashport/internal/adapters/runlog"
	"github.com/okian/dashport/internal/domain/window"
)

var dailyDays int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Export each of the last N complete days and build per-user reports",
	Long: `Run the full pipeline day by day over the last N complete calendar
days: one CSV export and one per-user JSON report per day, plus an
aggregated full-period report. Today is never included; partial days
would understate usage.

A day that fails is skipped and the run continues; run history is kept
in a local database (see "dashport history").`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().IntVar(&dailyDays, "days", 28, "number of complete days to export")
}

func runDaily(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	if dailyDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	store, err := runlog.Open(cfg.RunLogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.New(
		service.WithFetcher(client),
		service.WithExportDir(cfg.ExportDir),
		service.WithEnterpriseID(cfg.EnterpriseID),
		service.WithRunRecorder(store),
	)

	win := window.LastComplete(dailyDays, time.Now())
	summary, err := svc.RunDaily(ctx, win)

	fmt.Printf("run %s: %s .. %s\n", summary.RunID, summary.StartDay, summary.EndDay)
	fmt.Printf("  days succeeded: %d\n", summary.DaysSucceeded)
	fmt.Printf("  days failed:    %d\n", summary.DaysFailed)
	for _, day := range summary.FailedDays {
		fmt.Printf("    failed: %s\n", day)
	}
	if summary.AggregatePath != "" {
		fmt.Printf("  aggregate: %s (%d users)\n", summary.AggregatePath, summary.Users)
	}
	return err
}
