package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

// Writer implementasi audit.ResultWriter: one timestamped CSV per run.
type Writer struct {
	Dir string
	Now func() time.Time
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Now: time.Now}
}

// WriteResults flattens the heterogeneous result set. The header is
// the alphabetically sorted union of the field names observed across
// all entries; an entry lacking a field leaves that cell blank.
func (w *Writer) WriteResults(results []audit.Result) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}

	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("file_analysis_%s.csv", now.Format("20060102_150405")))

	fieldSet := make(map[string]struct{})
	rows := make([]map[string]string, 0, len(results))
	for _, res := range results {
		fields := res.Fields()
		rows = append(rows, fields)
		for k := range fields {
			fieldSet[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		header = append(header, k)
	}
	sort.Strings(header)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", err
	}
	cells := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			cells[i] = row[col]
		}
		if err := cw.Write(cells); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return path, nil
}
