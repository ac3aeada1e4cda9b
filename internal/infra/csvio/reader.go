package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

// requiredColumns are the exact headers the audit export carries.
var requiredColumns = []string{
	"File Time", "Total Events", "Opens", "Closes", "Reads", "Writes",
	"Read Bytes", "Write Bytes", "Get ACL", "Set ACL", "Other", "Path",
}

// Reader implementasi audit.TableReader untuk CSV exports
type Reader struct{}

func NewReader() *Reader { return &Reader{} }

// ReadRecords loads every row of the export. Rows with an empty Path
// are skipped; a missing column is a fatal input error.
func (Reader) ReadRecords(path string) ([]audit.AuditRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	if _, ok := idx["Path"]; !ok {
		return nil, fmt.Errorf("input file must contain a Path column")
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("input file missing required columns: %s", strings.Join(missing, ", "))
	}

	var out []audit.AuditRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		field := func(name string) string {
			i := idx[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		p := strings.TrimSpace(field("Path"))
		if p == "" {
			continue
		}
		out = append(out, audit.AuditRecord{
			FileTime:    field("File Time"),
			TotalEvents: field("Total Events"),
			Opens:       field("Opens"),
			Closes:      field("Closes"),
			Reads:       field("Reads"),
			Writes:      field("Writes"),
			ReadBytes:   field("Read Bytes"),
			WriteBytes:  field("Write Bytes"),
			GetACL:      field("Get ACL"),
			SetACL:      field("Set ACL"),
			Other:       field("Other"),
			Path:        p,
		})
	}
	return out, nil
}
