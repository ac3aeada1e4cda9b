package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exportHeader = "File Time,Total Events,Opens,Closes,Reads,Writes,Read Bytes,Write Bytes,Get ACL,Set ACL,Other,Path"

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadRecords(t *testing.T) {
	path := writeInput(t,
		exportHeader,
		`07:01:22,120,3,3,50,10,4096,512,0,0,2,A\B\x.txt`,
		`07:02:05,80,1,1,20,0,1024,0,1,0,0,A\C\y.txt`,
		`07:03:11,5,1,1,0,0,0,0,0,0,0,`, // empty path, skipped
	)

	records, err := Reader{}.ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Path != `A\B\x.txt` {
		t.Errorf("Path = %q", first.Path)
	}
	if first.FileTime != "07:01:22" || first.TotalEvents != "120" || first.ReadBytes != "4096" {
		t.Errorf("record fields not mapped by column name: %+v", first)
	}
	// values stay display strings, untouched
	if first.Opens != "3" || first.GetACL != "0" {
		t.Errorf("record fields not mapped by column name: %+v", first)
	}
}

func TestReadRecordsColumnErrors(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr string
	}{
		{
			name:    "missing Path column",
			header:  "File Time,Total Events,Opens,Closes,Reads,Writes,Read Bytes,Write Bytes,Get ACL,Set ACL,Other",
			wantErr: "Path column",
		},
		{
			name:    "missing other required column",
			header:  "File Time,Total Events,Closes,Reads,Writes,Read Bytes,Write Bytes,Get ACL,Set ACL,Other,Path",
			wantErr: "Opens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, tt.header)
			_, err := Reader{}.ReadRecords(path)
			if err == nil {
				t.Fatal("ReadRecords() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadRecordsMissingFile(t *testing.T) {
	_, err := Reader{}.ReadRecords(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("ReadRecords() expected error for missing file")
	}
}
