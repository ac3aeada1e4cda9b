package analysis

import (
	"reflect"
	"testing"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

func rec(path string) audit.AuditRecord {
	return audit.AuditRecord{Path: path, TotalEvents: "1"}
}

func batchPaths(batches []audit.Batch) [][]string {
	if len(batches) == 0 {
		return nil
	}
	out := make([][]string, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.Paths())
	}
	return out
}

func TestGroupByLocality(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  [][]string
	}{
		{
			name:  "empty input",
			paths: nil,
			want:  nil,
		},
		{
			name:  "single record single batch",
			paths: []string{`A\B\x.txt`},
			want:  [][]string{{`A\B\x.txt`}},
		},
		{
			name:  "shallow tree splits on first-level key",
			paths: []string{`A\B\x.txt`, `A\B\y.txt`, `A\C\z.txt`},
			want: [][]string{
				{`A\B\x.txt`, `A\B\y.txt`},
				{`A\C\z.txt`},
			},
		},
		{
			// three components stay on index 1; a filename never
			// becomes the key, so sibling leaves share a batch
			name:  "three-component paths key below the root",
			paths: []string{`A\B\x.txt`, `A\B\y.txt`, `A\B\z.txt`},
			want:  [][]string{{`A\B\x.txt`, `A\B\y.txt`, `A\B\z.txt`}},
		},
		{
			// at four components the key moves to index 2, so a
			// first-level mismatch alone no longer splits
			name:  "four-component paths key on the scaled index",
			paths: []string{`A\B\C\x.txt`, `A\Z\C\y.txt`},
			want:  [][]string{{`A\B\C\x.txt`, `A\Z\C\y.txt`}},
		},
		{
			name: "deep tree keys on scaled index",
			paths: []string{
				`C\Users\bob\AppData\Local\Temp\a.exe`,
				`C\Users\bob\AppData\Local\Temp\b.exe`,
				`C\Windows\System32\drivers\etc\hosts`,
			},
			want: [][]string{
				{`C\Users\bob\AppData\Local\Temp\a.exe`, `C\Users\bob\AppData\Local\Temp\b.exe`},
				{`C\Windows\System32\drivers\etc\hosts`},
			},
		},
		{
			name:  "records without separator are discarded",
			paths: []string{"HKLM", `A\B\x.txt`, "pagefile.sys", `A\B\y.txt`},
			want:  [][]string{{`A\B\x.txt`, `A\B\y.txt`}},
		},
		{
			name:  "trailing group is flushed",
			paths: []string{`A\B\x.txt`, `A\C\z.txt`, `A\C\w.txt`},
			want: [][]string{
				{`A\B\x.txt`},
				{`A\C\z.txt`, `A\C\w.txt`},
			},
		},
		{
			// documented looseness: the key only has to occur as a
			// substring of the previous path, so "B" matches "Bigdata"
			name:  "substring key can over-group similar names",
			paths: []string{`A\Bigdata\x.txt`, `A\B\y.txt`},
			want:  [][]string{{`A\Bigdata\x.txt`, `A\B\y.txt`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]audit.AuditRecord, 0, len(tt.paths))
			for _, p := range tt.paths {
				records = append(records, rec(p))
			}

			batches, err := GroupByLocality(records)
			if err != nil {
				t.Fatalf("GroupByLocality() error = %v", err)
			}
			got := batchPaths(batches)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GroupByLocality() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupByLocalityDeterministic(t *testing.T) {
	records := []audit.AuditRecord{
		rec(`A\B\x.txt`), rec(`A\B\y.txt`), rec(`A\C\z.txt`),
		rec(`D\E\F\G\H\deep.bin`), rec(`D\E\F\G\H\deeper.bin`),
	}

	first, err := GroupByLocality(records)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := GroupByLocality(records)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("grouping is not deterministic: %v vs %v", batchPaths(first), batchPaths(second))
	}
}

func TestGroupByLocalityNoRecordLoss(t *testing.T) {
	records := []audit.AuditRecord{
		rec(`A\B\x.txt`), rec(`A\C\y.txt`), rec(`B\B\z.txt`),
		rec("no-separator"), rec(`C\D\E\F\w.txt`), rec(`C\D\E\F\v.txt`),
	}

	batches, err := GroupByLocality(records)
	if err != nil {
		t.Fatalf("GroupByLocality() error = %v", err)
	}

	seen := make(map[string]int)
	for _, b := range batches {
		if len(b.Records) == 0 {
			t.Fatal("emitted an empty batch")
		}
		for _, r := range b.Records {
			seen[r.Path]++
		}
	}

	qualifying := 0
	for _, r := range records {
		if r.Path == "no-separator" {
			continue
		}
		qualifying++
		if seen[r.Path] != 1 {
			t.Errorf("record %q appears %d times across batches, want 1", r.Path, seen[r.Path])
		}
	}
	total := 0
	for _, n := range seen {
		total += n
	}
	if total != qualifying {
		t.Errorf("batches hold %d records, want %d", total, qualifying)
	}
}
