package runs

import (
	"time"
)

// ID tipe untuk Run
type ID string

// Status enum
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Counts value object: per-run batch/assessment tallies
type Counts struct {
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
	Assessments   int `json:"assessments"`
	Records       int `json:"records"`
}

// Aggregate Root: Run, one execution of the analysis pipeline
type Run struct {
	ID          ID        `json:"id"`
	TenantID    string    `json:"tenant_id"`
	StartedAt   time.Time `json:"started_at"`
	InputFile   string    `json:"input_file"`
	Status      Status    `json:"status"`
	Counts      Counts    `json:"counts"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
}
