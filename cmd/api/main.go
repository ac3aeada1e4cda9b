package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/application"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/application/analysis"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/config"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/runs"
	aiclient "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/ai/openai"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/csvio"
	mysqlp "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/db/mysql"
	postgresp "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/db/postgres"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/httpserver"
	minioStore "github.com/JaWiSoft-BCD/ai-file-intel/internal/infra/storage"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	// connect database (mysql default, postgres via config)
	var (
		db   *sql.DB
		repo runs.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewRunRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewRunRepository(db)
	}
	defer db.Close()

	// init minio
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

	// init service
	svc := &analysis.Service{
		Reader:      csvio.NewReader(),
		Writer:      csvio.NewWriter(cfg.Analysis.OutputDir),
		Client:      aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model),
		Repo:        repo,
		Artifacts:   store,
		Clock:       application.SystemClock{},
		Logger:      logger,
		Workers:     cfg.Analysis.Workers,
		Cooldown:    time.Duration(cfg.Analysis.CooldownSeconds) * time.Second,
		CallTimeout: time.Duration(cfg.Analysis.CallTimeoutSeconds) * time.Second,
		Progress: func(total, done int) {
			middleware.IncrementBatchesCompleted()
			logger.Info("batch progress", "completed", done, "total", total)
		},
	}

	// init router
	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	})
	mux := chi.NewRouter()
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		mux.Use(middleware.RequireValidTenant)
	}
	mux.Mount("/", httpserver.NewRouter(svc, cfg.Analysis.InputDir, health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
