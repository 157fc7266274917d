package export_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dashport/internal/adapters/export"
	"github.com/okian/dashport/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCSVFilename(t *testing.T) {
	convey.Convey("Given a date range", t, func() {
		start := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 10, 22, 23, 59, 59, 0, time.UTC)

		convey.Convey("When start and end fall on different days", func() {
			convey.So(export.CSVFilename(start, end), convey.ShouldEqual, "metrics_20251020_to_20251022.csv")
		})

		convey.Convey("When start and end fall on the same day", func() {
			sameDayEnd := time.Date(2025, 10, 20, 23, 59, 59, 0, time.UTC)
			convey.So(export.CSVFilename(start, sameDayEnd), convey.ShouldEqual, "metrics_20251020.csv")
		})
	})
}

func TestWriteCSV(t *testing.T) {
	start := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 20, 23, 59, 59, 0, time.UTC)

	convey.Convey("Given canonical user records", t, func() {
		dir := t.TempDir()
		records := []model.Record{
			{Kind: model.KindUserStats, Fields: map[string]any{
				model.ColUser:       "alice@example.com",
				model.ColActiveDays: 14,
				model.ColAcceptRate: "75.00%",
			}},
			{Kind: model.KindUserStats, Fields: map[string]any{
				model.ColUser:       "bob@example.com",
				model.ColActiveDays: 3,
				model.ColAcceptRate: "50.00%",
			}},
		}

		convey.Convey("When writing and reading the export back", func() {
			path, err := export.WriteCSV(records, dir, "", start, end)
			convey.So(err, convey.ShouldBeNil)
			convey.So(filepath.Base(path), convey.ShouldEqual, "metrics_20251020.csv")

			rows, err := export.ReadCSV(path)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then every row survives the round trip", func() {
				convey.So(rows, convey.ShouldHaveLength, 2)
				convey.So(rows[0][model.ColUser], convey.ShouldEqual, "alice@example.com")
				convey.So(rows[0][model.ColActiveDays], convey.ShouldEqual, "14")
				convey.So(rows[1][model.ColAcceptRate], convey.ShouldEqual, "50.00%")
			})
		})
	})

	convey.Convey("Given records with differing field sets", t, func() {
		dir := t.TempDir()
		records := []model.Record{
			{Kind: model.KindUserStats, Fields: map[string]any{
				model.ColUser: "alice@example.com",
			}},
			{Kind: model.KindTenantMetric, Fields: map[string]any{
				model.ColMetricType: "Monthly Active Users",
				model.ColValue:      42,
			}},
		}

		convey.Convey("When writing the export", func() {
			path, err := export.WriteCSV(records, dir, "mixed.csv", start, end)
			convey.So(err, convey.ShouldBeNil)

			rows, err := export.ReadCSV(path)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then absent columns render as empty cells", func() {
				convey.So(rows, convey.ShouldHaveLength, 2)
				convey.So(rows[0][model.ColMetricType], convey.ShouldEqual, "")
				convey.So(rows[1][model.ColUser], convey.ShouldEqual, "")
				convey.So(rows[1][model.ColValue], convey.ShouldEqual, "42")
			})
		})
	})

	convey.Convey("Given a generic nested record", t, func() {
		dir := t.TempDir()
		records := []model.Record{
			{Kind: model.KindGeneric, Fields: map[string]any{
				"meta": map[string]any{"region": "eu"},
				"tags": []any{"x", "y"},
			}},
		}

		convey.Convey("When writing the export", func() {
			path, err := export.WriteCSV(records, dir, "generic.csv", start, end)
			convey.So(err, convey.ShouldBeNil)

			rows, err := export.ReadCSV(path)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then nested fields are flattened into columns", func() {
				convey.So(rows[0]["meta.region"], convey.ShouldEqual, "eu")
				convey.So(rows[0]["tags"], convey.ShouldEqual, `["x","y"]`)
			})
		})
	})

	convey.Convey("Given no records at all", t, func() {
		dir := t.TempDir()

		convey.Convey("When writing the export", func() {
			path, err := export.WriteCSV(nil, dir, "", start, end)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then an empty file still exists", func() {
				info, statErr := os.Stat(path)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(info.Size(), convey.ShouldEqual, 0)
			})

			convey.Convey("Then reading it back yields zero rows", func() {
				rows, readErr := export.ReadCSV(path)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestReportRoundTrip(t *testing.T) {
	convey.Convey("Given per-user reports", t, func() {
		dir := t.TempDir()
		reports := []model.UserReport{
			{
				ReportStartDay: "2025-10-20",
				ReportEndDay:   "2025-10-20",
				Day:            "2025-10-20",
				EnterpriseID:   "283613",
				UserID:         123456,
				UserLogin:      "alice@example.com",
				UsedChat:       true,
				TotalsByFeature: []model.FeatureTotals{
					{Feature: model.FeatureChatPanel, UserInitiatedInteractionCount: 4},
				},
			},
		}

		convey.Convey("When writing and reading a report file", func() {
			path := filepath.Join(dir, export.ReportFilename("2025-10-20"))
			convey.So(export.WriteReport(path, reports), convey.ShouldBeNil)

			back, err := export.ReadReport(path)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the records survive intact", func() {
				convey.So(back, convey.ShouldResemble, reports)
			})
		})

		convey.Convey("When writing an empty report", func() {
			path := filepath.Join(dir, export.AggregateFilename)
			convey.So(export.WriteReport(path, nil), convey.ShouldBeNil)

			convey.Convey("Then the file holds a valid empty array", func() {
				back, err := export.ReadReport(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(back, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given a corrupt report file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.json")
		convey.So(os.WriteFile(path, []byte("{not json"), 0o644), convey.ShouldBeNil)

		convey.Convey("When reading it", func() {
			_, err := export.ReadReport(path)

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
