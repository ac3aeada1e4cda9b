package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/application"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/application/analysis"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/config"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/runs"
	aiclient "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/ai/openai"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/csvio"
	mysqlp "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/db/mysql"
	postgresp "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/db/postgres"
	minioStore "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/storage"
)

// One-shot analysis over a single export file. The database and
// object storage are optional here; without them the result CSV just
// stays in the output directory.
func main() {
	var (
		cfgPath = flag.String("config", "config.yaml", "path to config.yaml")
		input   = flag.String("input", "", "input CSV file (required)")
		tenant  = flag.String("tenant", "local", "tenant recorded on the run")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	var repo runs.Repository
	if cfg.Database.Host != "" {
		switch cfg.Database.Driver {
		case "postgres":
			db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
			if err != nil {
				log.Fatalf("postgres connect error: %v", err)
			}
			defer db.Close()
			repo = postgresp.NewRunRepository(db)
		default:
			db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
			if err != nil {
				log.Fatalf("mysql connect error: %v", err)
			}
			defer db.Close()
			repo = mysqlp.NewRunRepository(db)
		}
	}

	var artifacts runs.ArtifactStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	svc := &analysis.Service{
		Reader:      csvio.NewReader(),
		Writer:      csvio.NewWriter(cfg.Analysis.OutputDir),
		Client:      aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model),
		Repo:        repo,
		Artifacts:   artifacts,
		Clock:       application.SystemClock{},
		Logger:      logger,
		Workers:     cfg.Analysis.Workers,
		Cooldown:    time.Duration(cfg.Analysis.CooldownSeconds) * time.Second,
		CallTimeout: time.Duration(cfg.Analysis.CallTimeoutSeconds) * time.Second,
		Progress: func(total, done int) {
			fmt.Fprintf(os.Stderr, "\rProgress: %d/%d batches", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	}

	result, err := svc.RunAnalysis(ctx, analysis.RunAnalysisCommand{
		TenantID:  *tenant,
		InputPath: *input,
	})
	if err != nil {
		log.Fatalf("analysis error: %v", err)
	}

	fmt.Printf("Analysis complete: status=%s batches=%d failed=%d assessments=%d\n",
		result.Status, result.Counts.Batches, result.Counts.FailedBatches, result.Counts.Assessments)
	if result.ArtifactURL != "" {
		fmt.Printf("Results uploaded to: %s\n", result.ArtifactURL)
	}
	if result.OutputPath != "" {
		fmt.Printf("Results saved to: %s\n", result.OutputPath)
	}
}
