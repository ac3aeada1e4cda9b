package audit

// TableReader yields audit records from a column-named tabular source.
type TableReader interface {
	ReadRecords(path string) ([]AuditRecord, error)
}

// ResultWriter persists the heterogeneous result set as a tabular
// file and returns the written path.
type ResultWriter interface {
	WriteResults(results []Result) (string, error)
}
