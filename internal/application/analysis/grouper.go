package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

// PathSeparator is the directory separator used by the audit export.
const PathSeparator = `\`

// GroupByLocality splits an ordered record stream into batches of
// records that sit under the same directory subtree. Records whose
// path has no separator are not filesystem paths of interest and are
// discarded.
//
// The boundary heuristic picks a locality key: the path component at
// round(depth/2) for deep trees (math.Round, ties rounded away from
// zero), or the first component below the root for shallow ones. A
// record whose key does not occur as a substring of the previous
// record's full path starts a new batch. Substring containment is
// deliberately loose; it tolerates minor path variations at the cost
// of over-grouping when a key is a common fragment of unrelated paths.
func GroupByLocality(records []audit.AuditRecord) ([]audit.Batch, error) {
	var (
		batches      []audit.Batch
		current      []audit.AuditRecord
		previousPath string
	)

	for _, rec := range records {
		path := strings.TrimSpace(rec.Path)
		if path == "" || !strings.Contains(path, PathSeparator) {
			continue
		}

		if len(current) == 0 {
			current = append(current, rec)
			previousPath = path
			continue
		}

		key, err := localityKey(path)
		if err != nil {
			return nil, err
		}

		if !strings.Contains(previousPath, key) {
			batches = append(batches, audit.Batch{Records: current})
			current = []audit.AuditRecord{rec}
			previousPath = path
			continue
		}

		current = append(current, rec)
		previousPath = path
	}

	// Flush the trailing group so the last subtree is never lost.
	if len(current) > 0 {
		batches = append(batches, audit.Batch{Records: current})
	}

	return batches, nil
}

// localityKey returns the path component the grouping heuristic keys
// on. The scaled index can only exceed the component count on
// degenerate input, but indexing is still guarded so a bad row fails
// the stream with a diagnostic instead of a panic.
func localityKey(path string) (string, error) {
	components := strings.Split(path, PathSeparator)

	// Integer division here: a three-component path still keys on the
	// first component below the root; scaling starts at four.
	idx := 1
	if len(components)/2 > 1 {
		idx = int(math.Round(float64(len(components)) / 2))
	}
	if idx >= len(components) {
		return "", fmt.Errorf("grouping index %d out of range for path %q (%d components)", idx, path, len(components))
	}
	return components[idx], nil
}
