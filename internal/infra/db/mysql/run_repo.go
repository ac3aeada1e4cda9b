package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/runs"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save insert/update Run record
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO audit_runs
(id, tenant_id, started_at, input_file, status,
 batches, failed_batches, assessments, records,
 artifact_url, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 batches=VALUES(batches), failed_batches=VALUES(failed_batches),
 assessments=VALUES(assessments), records=VALUES(records),
 artifact_url=VALUES(artifact_url), duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults
	tenant := stringOrDash(run.TenantID)
	status := stringOrDash(string(run.Status))
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		run.ID, tenant, started, run.InputFile, status,
		run.Counts.Batches, run.Counts.FailedBatches, run.Counts.Assessments, run.Counts.Records,
		run.ArtifactURL, run.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *RunRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.Run, error) {
	const q = `
SELECT id, tenant_id, started_at, input_file, status,
       batches, failed_batches, assessments, records,
       artifact_url, duration_ms
FROM audit_runs
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanRun(row.Scan)
}

// Latest runs per tenant
func (r *RunRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, started_at, input_file, status,
       batches, failed_batches, assessments, records,
       artifact_url, duration_ms
FROM audit_runs
WHERE tenant_id=? ORDER BY started_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Summary counts run results since N days
func (r *RunRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(failed_batches),0),
       COALESCE(SUM(assessments),0)
FROM audit_runs
WHERE tenant_id=? AND started_at >= NOW() - INTERVAL ? DAY;
`
	var total, failed, assessments int
	if err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).Scan(&total, &failed, &assessments); err != nil {
		return 0, 0, 0, err
	}
	return total, failed, assessments, nil
}

func scanRun(scan func(dest ...any) error) (*domain.Run, error) {
	var run domain.Run
	var batches, failed, assessments, records int
	if err := scan(
		&run.ID, &run.TenantID, &run.StartedAt, &run.InputFile, &run.Status,
		&batches, &failed, &assessments, &records,
		&run.ArtifactURL, &run.DurationMS,
	); err != nil {
		return nil, err
	}
	run.Counts = domain.Counts{Batches: batches, FailedBatches: failed, Assessments: assessments, Records: records}
	return &run, nil
}
