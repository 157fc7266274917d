// Package service provides the orchestrator that drives the export
// pipeline across a date window.
package service

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dashport/internal/adapters/dashboard"
	"github.com/okian/dashport/internal/adapters/export"
	"github.com/okian/dashport/internal/adapters/runlog"
	"github.com/okian/dashport/internal/domain/aggregate"
	"github.com/okian/dashport/internal/domain/convert"
	"github.com/okian/dashport/internal/domain/model"
	"github.com/okian/dashport/internal/domain/window"
	"github.com/okian/dashport/pkg/logger"
	"github.com/okian/dashport/pkg/metrics"
)

// Fetcher supplies canonical records for a date range. Implemented by
// the dashboard client; stubbed in tests.
type Fetcher interface {
	Records(ctx context.Context, start, end time.Time) ([]model.Record, error)
}

// RunRecorder persists run history. Implemented by the runlog store.
type RunRecorder interface {
	SaveRun(ctx context.Context, run runlog.Run, days []runlog.DayResult) error
}

// Service sequences the pipeline: fetch, normalize, CSV export, schema
// conversion and aggregation. Execution is strictly sequential; each
// day completes before the next begins.
type Service struct {
	fetcher      Fetcher
	exportDir    string
	enterpriseID string
	recorder     RunRecorder
	log          logger.Logger
	now          func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the record source.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithExportDir sets the directory receiving CSV and report artifacts.
func WithExportDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.exportDir = dir
		}
	}
}

// WithEnterpriseID sets the enterprise id stamped on converted reports.
func WithEnterpriseID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.enterpriseID = id
		}
	}
}

// WithRunRecorder sets the run-history sink.
func WithRunRecorder(r RunRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		exportDir:    "data",
		enterpriseID: "283613",
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.Get()
	}

	return s
}

// Export fetches records for the window and writes one CSV file,
// returning its path. When filename is empty it is derived from the
// window's dates.
func (s *Service) Export(ctx context.Context, win window.Window, filename string) (string, error) {
	records, err := s.fetcher.Records(ctx, win.Start, win.End)
	if err != nil {
		return "", err
	}

	path, err := export.WriteCSV(records, s.exportDir, filename, win.Start, win.End)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "metrics exported",
		logger.String("path", path),
		logger.Int("rows", len(records)),
	)
	return path, nil
}

// Summary reports the outcome of one batch run.
type Summary struct {
	RunID         string
	StartDay      string
	EndDay        string
	DaysSucceeded int
	DaysFailed    int
	FailedDays    []string
	CSVFiles      []string
	ReportFiles   []string
	AggregatePath string
	Users         int
}

// RunDaily drives the full pipeline across every calendar day in the
// window: per day, fetch + normalize + CSV + schema conversion into a
// daily report file; then all produced daily reports are aggregated into
// one full-period file. A failing day is recorded and skipped; only an
// expired session aborts the run, since every later fetch would fail the
// same way.
func (s *Service) RunDaily(ctx context.Context, win window.Window) (Summary, error) {
	startedAt := s.now().UTC()
	summary := Summary{
		RunID:    uuid.NewString(),
		StartDay: win.StartDay(),
		EndDay:   win.EndDay(),
	}
	var dayResults []runlog.DayResult

	days := window.EnumerateDays(win.Start, win.End)
	s.log.Info(ctx, "starting batch run",
		logger.String("run_id", summary.RunID),
		logger.String("start", summary.StartDay),
		logger.String("end", summary.EndDay),
		logger.Int("days", len(days)),
	)

	for _, day := range days {
		dayWin := window.SingleDay(day, s.now())
		result, err := s.processDay(ctx, dayWin)
		dayResults = append(dayResults, result)

		if err != nil {
			summary.DaysFailed++
			summary.FailedDays = append(summary.FailedDays, result.Day)
			metrics.RecordDayFailed()

			if errors.Is(err, dashboard.ErrAuthExpired) || ctx.Err() != nil {
				s.finishRun(ctx, &summary, startedAt, dayResults)
				return summary, err
			}
			s.log.Error(ctx, "day failed; continuing with remaining days",
				logger.String("day", result.Day),
				logger.Error(err),
			)
			continue
		}

		summary.DaysSucceeded++
		summary.CSVFiles = append(summary.CSVFiles, result.CSVPath)
		summary.ReportFiles = append(summary.ReportFiles, result.ReportPath)
		metrics.RecordDaySucceeded()
	}

	// Aggregate whatever daily reports exist; failed days simply do not
	// contribute.
	merged := aggregate.Files(ctx, summary.ReportFiles, win, export.ReadReport, s.log)
	aggregatePath := filepath.Join(s.exportDir, export.AggregateFilename)
	if err := export.WriteReport(aggregatePath, merged); err != nil {
		s.finishRun(ctx, &summary, startedAt, dayResults)
		return summary, err
	}
	summary.AggregatePath = aggregatePath
	summary.Users = len(merged)

	s.finishRun(ctx, &summary, startedAt, dayResults)
	s.log.Info(ctx, "batch run finished",
		logger.String("run_id", summary.RunID),
		logger.Int("days_succeeded", summary.DaysSucceeded),
		logger.Int("days_failed", summary.DaysFailed),
		logger.Int("users", summary.Users),
	)
	return summary, nil
}

// processDay runs fetch -> CSV -> conversion for one calendar day.
func (s *Service) processDay(ctx context.Context, dayWin window.Window) (runlog.DayResult, error) {
	day := dayWin.StartDay()
	result := runlog.DayResult{Day: day, Status: runlog.DayStatusFailed}

	records, err := s.fetcher.Records(ctx, dayWin.Start, dayWin.End)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	csvPath, err := export.WriteCSV(records, s.exportDir, "", dayWin.Start, dayWin.End)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.CSVPath = csvPath

	// Convert through the CSV so the report reflects exactly what was
	// exported.
	rows, err := export.ReadCSV(csvPath)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	reports := convert.Rows(rows, dayWin, s.enterpriseID)

	reportPath := filepath.Join(s.exportDir, export.ReportFilename(day))
	if err := export.WriteReport(reportPath, reports); err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.ReportPath = reportPath
	result.Status = runlog.DayStatusOK

	s.log.Info(ctx, "day exported",
		logger.String("day", day),
		logger.Int("rows", len(rows)),
		logger.Int("reports", len(reports)),
	)
	return result, nil
}

// finishRun persists run history when a recorder is configured.
func (s *Service) finishRun(ctx context.Context, summary *Summary, startedAt time.Time, days []runlog.DayResult) {
	if s.recorder == nil {
		return
	}
	run := runlog.Run{
		ID:            summary.RunID,
		StartDay:      summary.StartDay,
		EndDay:        summary.EndDay,
		StartedAt:     startedAt,
		FinishedAt:    s.now().UTC(),
		DaysSucceeded: summary.DaysSucceeded,
		DaysFailed:    summary.DaysFailed,
		AggregatePath: summary.AggregatePath,
	}
	if err := s.recorder.SaveRun(ctx, run, days); err != nil {
		s.log.Warn(ctx, "failed to record run history", logger.Error(err))
	}
}
