package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/ai"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/runs"
)

// Service implements use-cases untuk analysis runs
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Reader    audit.TableReader
	Writer    audit.ResultWriter
	Client    ai.Client
	Repo      runs.Repository    // optional; CLI runs without a database
	Artifacts runs.ArtifactStore // optional; results stay on disk when unset
	Clock     Clock
	Logger    *slog.Logger

	Workers     int
	Cooldown    time.Duration
	CallTimeout time.Duration
	Progress    ProgressFunc
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

//
// ==== USE CASES ====
//

// Command untuk trigger an analysis run
type RunAnalysisCommand struct {
	TenantID  string
	InputPath string
}

type RunAnalysisResult struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Counts      runs.Counts `json:"counts"`
	ArtifactURL string      `json:"artifact_url,omitempty"`
	OutputPath  string      `json:"output_path,omitempty"`
	DurationMS  int64       `json:"duration_ms"`
}

// RunUntilDone → jalanin analysis dengan context.Background()
// cocok dipanggil dari goroutine di router supaya gak kena context canceled
func (s *Service) RunUntilDone(cmd RunAnalysisCommand) (RunAnalysisResult, error) {
	return s.RunAnalysis(context.Background(), cmd)
}

// RunAnalysis reads the export, groups it into locality batches, fans
// them out to the backend, persists the merged results, uploads the
// artifact, and records the run.
func (s *Service) RunAnalysis(ctx context.Context, cmd RunAnalysisCommand) (RunAnalysisResult, error) {
	now := s.Clock.Now()
	id := uuid.New().String()
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", id, "tenant", cmd.TenantID)

	records, err := s.Reader.ReadRecords(cmd.InputPath)
	if err != nil {
		return RunAnalysisResult{ID: id, Status: string(runs.StatusError)}, fmt.Errorf("read input table: %w", err)
	}

	batches, err := GroupByLocality(records)
	if err != nil {
		return RunAnalysisResult{ID: id, Status: string(runs.StatusError)}, fmt.Errorf("group records: %w", err)
	}
	logger.Info("input grouped", "records", len(records), "batches", len(batches))

	// Create an initial run row so we always have an ID to reference
	initial := &runs.Run{
		ID:        runs.ID(id),
		TenantID:  cmd.TenantID,
		StartedAt: now,
		InputFile: filepath.Base(cmd.InputPath),
		Status:    runs.StatusRunning,
		Counts:    runs.Counts{Batches: len(batches)},
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, initial); err != nil {
			return RunAnalysisResult{ID: id, Status: string(runs.StatusError)}, err
		}
	}

	d := &Dispatcher{
		Client:      s.Client,
		Workers:     s.Workers,
		Cooldown:    s.Cooldown,
		CallTimeout: s.CallTimeout,
		Progress:    s.Progress,
		Logger:      logger,
	}
	results := d.Dispatch(ctx, batches)
	counts := tally(batches, results)

	outPath, err := s.Writer.WriteResults(results)
	if err != nil {
		s.markError(cmd.TenantID, initial)
		return RunAnalysisResult{ID: id, Status: string(runs.StatusError)}, fmt.Errorf("write results: %w", err)
	}

	artifactURL := ""
	if s.Artifacts != nil {
		key := fmt.Sprintf("%s/analysis/%s", cmd.TenantID, filepath.Base(outPath))
		artifactURL, err = s.Artifacts.UploadAndCleanup(ctx, outPath, key)
		if err != nil {
			s.markError(cmd.TenantID, initial)
			return RunAnalysisResult{ID: id, Status: string(runs.StatusError)}, fmt.Errorf("upload artifact: %w", err)
		}
		outPath = ""
	}

	status := runs.StatusSuccess
	if counts.FailedBatches > 0 {
		status = runs.StatusPartial
	}

	run := &runs.Run{
		ID:          runs.ID(id),
		TenantID:    cmd.TenantID,
		StartedAt:   now,
		InputFile:   filepath.Base(cmd.InputPath),
		Status:      status,
		Counts:      counts,
		ArtifactURL: artifactURL,
		DurationMS:  time.Since(now).Milliseconds(),
	}
	if s.Repo != nil {
		if err := s.Repo.Save(ctx, run); err != nil {
			return RunAnalysisResult{ID: id, Status: string(status)}, err
		}
	}

	logger.Info("analysis run finished", "status", status, "batches", counts.Batches,
		"failed_batches", counts.FailedBatches, "assessments", counts.Assessments)

	return RunAnalysisResult{
		ID:          id,
		Status:      string(status),
		Counts:      counts,
		ArtifactURL: artifactURL,
		OutputPath:  outPath,
		DurationMS:  run.DurationMS,
	}, nil
}

// Latest ambil N run terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*runs.Run, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 run by id
func (s *Service) Get(ctx context.Context, tenant string, id runs.ID) (*runs.Run, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Summary rekap hasil run N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, failedBatches, assessments, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_runs":     total,
		"failed_batches": failedBatches,
		"assessments":    assessments,
	}, nil
}

func (s *Service) markError(tenant string, run *runs.Run) {
	if s.Repo == nil {
		return
	}
	run.Status = runs.StatusError
	_ = s.Repo.Save(context.Background(), run)
}

func tally(batches []audit.Batch, results []audit.Result) runs.Counts {
	c := runs.Counts{Batches: len(batches)}
	for _, b := range batches {
		c.Records += len(b.Records)
	}
	for _, r := range results {
		if r.IsFailure() {
			c.FailedBatches++
		} else {
			c.Assessments++
		}
	}
	return c
}
