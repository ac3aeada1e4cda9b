package audit

import "strings"

// AuditRecord is one row of the file-activity export. All values are
// kept as the display strings from the export; the pipeline never
// interprets them numerically.
type AuditRecord struct {
	FileTime    string `json:"file_time"`
	TotalEvents string `json:"total_events"`
	Opens       string `json:"opens"`
	Closes      string `json:"closes"`
	Reads       string `json:"reads"`
	Writes      string `json:"writes"`
	ReadBytes   string `json:"read_bytes"`
	WriteBytes  string `json:"write_bytes"`
	GetACL      string `json:"get_acl"`
	SetACL      string `json:"set_acl"`
	Other       string `json:"other"`
	Path        string `json:"path"`
}

// Render formats the record as labeled fields on a single line, the
// shape the analysis prompt and the failure sentinel rows use.
func (r AuditRecord) Render() string {
	parts := []string{
		"File Time: " + r.FileTime,
		"Total Events: " + r.TotalEvents,
		"Opens: " + r.Opens,
		"Closes: " + r.Closes,
		"Reads: " + r.Reads,
		"Writes: " + r.Writes,
		"Read Bytes: " + r.ReadBytes,
		"Write Bytes: " + r.WriteBytes,
		"Get ACL: " + r.GetACL,
		"Set ACL: " + r.SetACL,
		"Other: " + r.Other,
		"Path: " + r.Path,
	}
	return strings.Join(parts, "; ")
}

// Batch is an ordered group of audit records believed to share
// directory locality. Record order matches input order; a batch is
// never empty and never mutated after the grouper emits it.
type Batch struct {
	Records []AuditRecord `json:"records"`
}

// Paths lists the record paths in batch order.
func (b Batch) Paths() []string {
	out := make([]string, 0, len(b.Records))
	for _, rec := range b.Records {
		out = append(out, rec.Path)
	}
	return out
}

// Assessment is one structured analysis outcome recovered from the
// backend's reply. A field stays empty unless its label was detected.
type Assessment struct {
	Path             string `json:"path"`
	Trustworthiness  string `json:"trustworthiness"`
	PrimaryPurpose   string `json:"primary_purpose"`
	SecurityConcerns string `json:"security_concerns"`
	RiskScore        string `json:"risk_score"`
	Recommendation   string `json:"recommendation"`
}

// Result is one entry of the final result set: either a parsed
// assessment, or the original batch preserved as a failure sentinel
// when the backend call failed. Exactly one field is set.
type Result struct {
	Assessment *Assessment `json:"assessment,omitempty"`
	Failed     *Batch      `json:"failed_batch,omitempty"`
}

// IsFailure reports whether the entry is a failure sentinel.
func (r Result) IsFailure() bool { return r.Failed != nil }

// Fields flattens the entry for tabular persistence. Sequence values
// are joined with ", " so every record of a failed batch stays
// identifiable in its row.
func (r Result) Fields() map[string]string {
	if r.Failed != nil {
		rendered := make([]string, 0, len(r.Failed.Records))
		for _, rec := range r.Failed.Records {
			rendered = append(rendered, rec.Render())
		}
		return map[string]string{
			"error":          "analysis failed",
			"failed_records": strings.Join(rendered, ", "),
		}
	}
	a := r.Assessment
	return map[string]string{
		"path":              a.Path,
		"trustworthiness":   a.Trustworthiness,
		"primary_purpose":   a.PrimaryPurpose,
		"security_concerns": a.SecurityConcerns,
		"risk_score":        a.RiskScore,
		"recommendation":    a.Recommendation,
	}
}
