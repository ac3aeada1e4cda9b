package analysis

import (
	"strings"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

// Field labels the backend is instructed to emit, one per line, each
// followed by a colon. Recommendation closes a record.
var assessmentLabels = []string{
	"path",
	"trustworthiness",
	"primary purpose",
	"security concerns",
	"risk score",
	"recommendation",
}

// ParseAssessments recovers structured assessments from the backend's
// free-form reply. Lines matching no label are skipped, so preamble
// and commentary are tolerated. A partially filled assessment that
// never reaches a Recommendation line is discarded: the terminator is
// what defines a complete record. The parser never fails; worst case
// it returns nothing.
func ParseAssessments(raw string) []audit.Assessment {
	var (
		out     []audit.Assessment
		working audit.Assessment
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		label, value, ok := matchLabel(line)
		if !ok {
			continue
		}

		switch label {
		case "path":
			working.Path = value
		case "trustworthiness":
			working.Trustworthiness = value
		case "primary purpose":
			working.PrimaryPurpose = value
		case "security concerns":
			working.SecurityConcerns = value
		case "risk score":
			working.RiskScore = value
		case "recommendation":
			working.Recommendation = value
			out = append(out, working)
			working = audit.Assessment{}
		}
	}

	return out
}

// matchLabel tests a trimmed line against the known labels,
// case-insensitively. A label counts only at the start of the line
// and only when a colon follows it; the value is everything after the
// first colon.
func matchLabel(line string) (label, value string, ok bool) {
	lower := strings.ToLower(line)
	for _, l := range assessmentLabels {
		if !strings.HasPrefix(lower, l) {
			continue
		}
		rest := strings.TrimSpace(lower[len(l):])
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		_, after, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		return l, strings.TrimSpace(after), true
	}
	return "", "", false
}
