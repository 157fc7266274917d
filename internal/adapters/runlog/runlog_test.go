package runlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dashport/internal/adapters/runlog"
	"github.com/smartystreets/goconvey/convey"
)

func testRun(id string, startedAt time.Time) runlog.Run {
	return runlog.Run{
		ID:            id,
		StartDay:      "2025-10-01",
		EndDay:        "2025-10-03",
		StartedAt:     startedAt,
		FinishedAt:    startedAt.Add(time.Minute),
		DaysSucceeded: 2,
		DaysFailed:    1,
		AggregatePath: "data/user_reports_aggregated.json",
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a store in a fresh directory", t, func() {
		path := filepath.Join(t.TempDir(), "state", "runlog.db")
		store, err := runlog.Open(path)
		convey.So(err, convey.ShouldBeNil)
		defer store.Close()

		convey.Convey("When saving a run with day results", func() {
			started := time.Date(2025, 10, 4, 6, 0, 0, 0, time.UTC)
			run := testRun("run-1", started)
			days := []runlog.DayResult{
				{Day: "2025-10-01", Status: runlog.DayStatusOK, CSVPath: "data/metrics_20251001.csv", ReportPath: "data/user_reports_2025-10-01.json"},
				{Day: "2025-10-02", Status: runlog.DayStatusFailed, Error: "fetch failed: HTTP 500"},
				{Day: "2025-10-03", Status: runlog.DayStatusOK, CSVPath: "data/metrics_20251003.csv", ReportPath: "data/user_reports_2025-10-03.json"},
			}
			convey.So(store.SaveRun(ctx, run, days), convey.ShouldBeNil)

			convey.Convey("Then the run loads back intact", func() {
				runs, listErr := store.RecentRuns(ctx, 10)
				convey.So(listErr, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldHaveLength, 1)
				convey.So(runs[0].ID, convey.ShouldEqual, "run-1")
				convey.So(runs[0].StartDay, convey.ShouldEqual, "2025-10-01")
				convey.So(runs[0].DaysSucceeded, convey.ShouldEqual, 2)
				convey.So(runs[0].DaysFailed, convey.ShouldEqual, 1)
				convey.So(runs[0].StartedAt.Equal(started), convey.ShouldBeTrue)
			})

			convey.Convey("Then day results come back in insert order", func() {
				got, dayErr := store.DayResults(ctx, "run-1")
				convey.So(dayErr, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, days)
			})
		})

		convey.Convey("When multiple runs exist", func() {
			base := time.Date(2025, 10, 4, 6, 0, 0, 0, time.UTC)
			convey.So(store.SaveRun(ctx, testRun("run-old", base), nil), convey.ShouldBeNil)
			convey.So(store.SaveRun(ctx, testRun("run-new", base.Add(time.Hour)), nil), convey.ShouldBeNil)

			convey.Convey("Then recent runs list newest first", func() {
				runs, listErr := store.RecentRuns(ctx, 10)
				convey.So(listErr, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldHaveLength, 2)
				convey.So(runs[0].ID, convey.ShouldEqual, "run-new")
				convey.So(runs[1].ID, convey.ShouldEqual, "run-old")
			})

			convey.Convey("Then the limit is honored", func() {
				runs, listErr := store.RecentRuns(ctx, 1)
				convey.So(listErr, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When nothing has been recorded", func() {
			convey.Convey("Then listings are empty, not errors", func() {
				runs, listErr := store.RecentRuns(ctx, 10)
				convey.So(listErr, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldBeEmpty)

				days, dayErr := store.DayResults(ctx, "nope")
				convey.So(dayErr, convey.ShouldBeNil)
				convey.So(days, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given a database that was closed and reopened", t, func() {
		path := filepath.Join(t.TempDir(), "runlog.db")

		store, err := runlog.Open(path)
		convey.So(err, convey.ShouldBeNil)
		run := testRun("run-persist", time.Date(2025, 10, 4, 6, 0, 0, 0, time.UTC))
		convey.So(store.SaveRun(ctx, run, nil), convey.ShouldBeNil)
		convey.So(store.Close(), convey.ShouldBeNil)

		convey.Convey("When reopening it", func() {
			reopened, openErr := runlog.Open(path)
			convey.So(openErr, convey.ShouldBeNil)
			defer reopened.Close()

			convey.Convey("Then the recorded run is still there", func() {
				runs, listErr := reopened.RecentRuns(ctx, 10)
				convey.So(listErr, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldHaveLength, 1)
				convey.So(runs[0].ID, convey.ShouldEqual, "run-persist")
			})
		})
	})
}
