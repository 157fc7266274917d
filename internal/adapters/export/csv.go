// Package export persists pipeline artifacts: CSV exports and per-user
// report JSON files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/dashport/internal/domain/flatten"
	"github.com/okian/dashport/internal/domain/model"
	"github.com/okian/dashport/pkg/metrics"
)

const csvDateLayout = "20060102"

// CSVFilename derives the export filename from the date range:
// metrics_YYYYMMDD.csv for a single day, metrics_YYYYMMDD_to_YYYYMMDD.csv
// for a range.
func CSVFilename(start, end time.Time) string {
	startStr := start.UTC().Format(csvDateLayout)
	endStr := end.UTC().Format(csvDateLayout)
	if startStr == endStr {
		return fmt.Sprintf("metrics_%s.csv", startStr)
	}
	return fmt.Sprintf("metrics_%s_to_%s.csv", startStr, endStr)
}

// WriteCSV writes the records to a UTF-8 comma-delimited file under dir
// and returns the file path. Canonical records are written as-is; generic
// records are flattened first. An empty record set still produces the
// (zero-byte) file, so a data-free day never fails downstream steps.
// When filename is empty it is derived from the date range.
func WriteCSV(records []model.Record, dir, filename string, start, end time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if filename == "" {
		filename = CSVFilename(start, end)
	}
	path := filepath.Join(dir, filename)

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if rec.Kind == model.KindGeneric {
			rows = append(rows, flatten.Flatten(rec.Fields))
			continue
		}
		rows = append(rows, rec.Fields)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if len(rows) == 0 {
		return path, nil
	}

	// Union of keys across all rows, first-seen order.
	var keys []string
	seen := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	cols := flatten.ColumnOrder(keys)

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			record[i] = stringify(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	metrics.AddCSVRows(len(rows))
	return path, nil
}

// ReadCSV loads a CSV export back as one string map per row, keyed by the
// header. An empty (zero-byte) file yields zero rows.
func ReadCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv file: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, record := range all[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// stringify renders a cell value. Numbers keep their natural text form;
// nil renders empty.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
