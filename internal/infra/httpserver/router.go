package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/application/analysis"
	domai "github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/ai"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/runs"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/middleware"
)

type Router struct {
	svc      *analysis.Service
	inputDir string
}

func NewRouter(svc *analysis.Service, inputDir string, health http.HandlerFunc) http.Handler {
	r := &Router{svc: svc, inputDir: inputDir}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 5))

	if health == nil {
		health = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}
	}
	mux.Get("/health", health)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/webhook/audit-analysis", r.wrap(r.handleTriggerAnalysis))
		rt.Get("/runs/latest", r.wrap(r.handleLatest))
		rt.Get("/runs/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/webhook/audit-analysis
// Body: {"input_file": "<name>.csv"}
// The file is resolved against the server's configured input directory
// and the run executes in the background.
func (r *Router) handleTriggerAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenant(tenant); err != nil {
		return err
	}

	var body struct {
		InputFile string `json:"input_file"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateInputFile(body.InputFile); err != nil {
		return err
	}

	cmd := analysis.RunAnalysisCommand{
		TenantID:  tenant,
		InputPath: filepath.Join(r.inputDir, body.InputFile),
	}

	// Jalankan di background, biar jalan sampai selesai
	go func() {
		middleware.IncrementRuns()
		middleware.IncrementRunsRunning()
		defer middleware.DecrementRunsRunning()

		result, err := r.svc.RunUntilDone(cmd)
		if err != nil {
			middleware.IncrementRunsFailed()
			fmt.Printf("background analysis error for tenant=%s file=%s: %v\n",
				tenant, body.InputFile, err)
			return
		}
		fmt.Printf("analysis finished: tenant=%s file=%s status=%s artifact=%s\n",
			tenant, body.InputFile, result.Status, result.ArtifactURL)
	}()

	// langsung balikin respons ke client
	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"file":     body.InputFile,
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/runs/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/runs/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	run, err := r.svc.Get(req.Context(), tenant, runs.ID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(run)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.svc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}
