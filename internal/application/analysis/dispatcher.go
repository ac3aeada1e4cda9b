package analysis

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/ai"
	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

const (
	// DefaultWorkers bounds concurrent backend calls.
	DefaultWorkers = 3

	// DefaultCooldown is the mandatory per-batch pause after the
	// backend call resolves. Rate-limit compliance with the backend;
	// applies on success and failure alike.
	DefaultCooldown = 20 * time.Second
)

// ProgressFunc receives (total, completed) after every finished batch.
type ProgressFunc func(total, completed int)

// Dispatcher fans batches out to the analysis backend under a bounded
// worker pool and merges per-batch outcomes into one flat result set.
// A failed backend call is non-fatal: the original batch is recorded
// as a sentinel and processing continues. There is no retry.
type Dispatcher struct {
	Client      ai.Client
	Workers     int
	Cooldown    time.Duration
	CallTimeout time.Duration
	Progress    ProgressFunc
	Logger      *slog.Logger
}

// Dispatch processes every batch and returns exactly one outcome per
// batch: the parsed assessments on success, the batch itself on
// failure. Entry order reflects completion order and is not
// deterministic across runs.
func (d *Dispatcher) Dispatch(ctx context.Context, batches []audit.Batch) []audit.Result {
	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	total := len(batches)
	results := make([]audit.Result, 0, total)
	completed := 0
	var mu sync.Mutex

	process := func(b audit.Batch) {
		text, err := d.analyze(ctx, b)

		var entries []audit.Result
		if err != nil {
			logger.Error("batch analysis failed", "batch_size", len(b.Records), "paths", b.Paths(), "error", err)
			entries = []audit.Result{{Failed: &b}}
		} else {
			assessments := ParseAssessments(text)
			logger.Info("batch analysis complete", "batch_size", len(b.Records), "assessments", len(assessments))
			// An empty parse is a valid (if useless) success; only a
			// failed call produces a sentinel.
			for i := range assessments {
				entries = append(entries, audit.Result{Assessment: &assessments[i]})
			}
		}

		d.quarantine(ctx)

		mu.Lock()
		results = append(results, entries...)
		completed++
		done := completed
		mu.Unlock()

		if d.Progress != nil {
			d.Progress(total, done)
		}
	}

	jobs := make(chan audit.Batch)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				process(b)
			}
		}()
	}
	for _, b := range batches {
		jobs <- b
	}
	close(jobs)
	wg.Wait()

	return results
}

func (d *Dispatcher) analyze(ctx context.Context, b audit.Batch) (string, error) {
	if d.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.CallTimeout)
		defer cancel()
	}
	return d.Client.Analyze(ctx, BatchPayload(b))
}

// quarantine blocks the unit for the cooldown interval. Other units
// keep running; only this unit's completion is delayed. Cancellation
// cuts it short since an abandoned run makes no further calls.
func (d *Dispatcher) quarantine(ctx context.Context) {
	cooldown := d.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	t := time.NewTimer(cooldown)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// BatchPayload renders a batch's records verbatim, one per line, for
// inclusion in the analysis prompt.
func BatchPayload(b audit.Batch) string {
	lines := make([]string, 0, len(b.Records))
	for _, rec := range b.Records {
		lines = append(lines, rec.Render())
	}
	return strings.Join(lines, "\n")
}
