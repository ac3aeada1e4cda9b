package csvio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.Now = func() time.Time { return time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC) }

	failed := &audit.Batch{Records: []audit.AuditRecord{
		{Path: `A\C\z.txt`, TotalEvents: "9"},
		{Path: `A\C\w.txt`, TotalEvents: "4"},
	}}
	results := []audit.Result{
		{Assessment: &audit.Assessment{Path: `A\B\x.txt`, RiskScore: "10", Recommendation: "No action required"}},
		{Failed: failed},
	}

	path, err := w.WriteResults(results)
	if err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	if filepath.Base(path) != "file_analysis_20260828_150405.csv" {
		t.Errorf("output name = %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 entries", len(rows))
	}

	// header is the sorted union of fields across both entry kinds
	wantHeader := []string{
		"error", "failed_records", "path", "primary_purpose",
		"recommendation", "risk_score", "security_concerns", "trustworthiness",
	}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}

	col := func(row []string, name string) string {
		for i, h := range rows[0] {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %q", name)
		return ""
	}

	// assessment row: sentinel columns stay blank
	if col(rows[1], "path") != `A\B\x.txt` || col(rows[1], "risk_score") != "10" {
		t.Errorf("assessment row = %v", rows[1])
	}
	if col(rows[1], "failed_records") != "" || col(rows[1], "error") != "" {
		t.Errorf("assessment row leaked sentinel fields: %v", rows[1])
	}

	// sentinel row: every constituent record stays identifiable
	sentinel := col(rows[2], "failed_records")
	if !strings.Contains(sentinel, `A\C\z.txt`) || !strings.Contains(sentinel, `A\C\w.txt`) {
		t.Errorf("sentinel row lost records: %q", sentinel)
	}
	if col(rows[2], "path") != "" {
		t.Errorf("sentinel row has assessment fields: %v", rows[2])
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	w := NewWriter(t.TempDir())
	path, err := w.WriteResults(nil)
	if err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("no output file written: %v", err)
	}
}
