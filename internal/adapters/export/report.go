package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/dashport/internal/domain/model"
	"github.com/okian/dashport/pkg/metrics"
)

// AggregateFilename is the merged full-period report file.
const AggregateFilename = "user_reports_aggregated.json"

// ReportFilename names the daily per-user report file for a calendar day
// (YYYY-MM-DD).
func ReportFilename(day string) string {
	return fmt.Sprintf("user_reports_%s.json", day)
}

// WriteReport writes the records as a pretty-printed JSON array,
// creating parent directories as needed.
func WriteReport(path string, records []model.UserReport) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	// An empty day still produces a valid JSON array.
	if records == nil {
		records = []model.UserReport{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // report files are shareable artifacts
		return fmt.Errorf("write report file: %w", err)
	}

	metrics.RecordReportWritten()
	return nil
}

// ReadReport loads a report file written by WriteReport.
func ReadReport(path string) ([]model.UserReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}

	var records []model.UserReport
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}
	return records, nil
}
