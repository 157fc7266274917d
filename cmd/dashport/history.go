package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/dashport/internal/adapters/runlog"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent batch runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}

	store, err := runlog.Open(cfg.RunLogPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s .. %s  ok=%d failed=%d  started %s\n",
			run.ID, run.StartDay, run.EndDay,
			run.DaysSucceeded, run.DaysFailed,
			run.StartedAt.UTC().Format(time.RFC3339),
		)
		if run.DaysFailed > 0 {
			days, err := store.DayResults(ctx, run.ID)
			if err != nil {
				continue
			}
			for _, day := range days {
				if day.Status == runlog.DayStatusFailed {
					fmt.Printf("    %s failed: %s\n", day.Day, day.Error)
				}
			}
		}
	}
	return nil
}
