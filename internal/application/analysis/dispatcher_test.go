package analysis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaWiSoft-BCD/ai-file-intel/internal/domain/audit"
)

// fakeClient answers with a well-formed reply per record, or fails
// whole payloads on demand.
type fakeClient struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	delay       time.Duration
	failWhen    func(payload string) bool
}

func (f *fakeClient) Analyze(ctx context.Context, payload string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failWhen != nil && f.failWhen(payload) {
		return "", errors.New("backend unavailable")
	}

	// One six-field record per payload line, echoing the path back.
	var b strings.Builder
	for _, line := range strings.Split(payload, "\n") {
		idx := strings.LastIndex(line, "Path: ")
		if idx < 0 {
			continue
		}
		b.WriteString("Path: " + line[idx+len("Path: "):] + "\n")
		b.WriteString("Risk Score: 50\n")
		b.WriteString("Recommendation: No action required\n\n")
	}
	return b.String(), nil
}

func makeBatches(groups ...[]string) []audit.Batch {
	out := make([]audit.Batch, 0, len(groups))
	for _, g := range groups {
		var b audit.Batch
		for _, p := range g {
			b.Records = append(b.Records, rec(p))
		}
		out = append(out, b)
	}
	return out
}

func resultPaths(results []audit.Result) []string {
	var out []string
	for _, r := range results {
		if r.Assessment != nil {
			out = append(out, r.Assessment.Path)
		}
	}
	sort.Strings(out)
	return out
}

func TestDispatchCompleteness(t *testing.T) {
	batches := makeBatches(
		[]string{`A\B\x.txt`, `A\B\y.txt`},
		[]string{`A\C\z.txt`},
		[]string{`D\E\w.txt`},
	)
	client := &fakeClient{}
	d := &Dispatcher{Client: client, Cooldown: time.Millisecond}

	results := d.Dispatch(context.Background(), batches)

	// Completion order is not deterministic; assert on multiset only.
	want := []string{`A\B\x.txt`, `A\B\y.txt`, `A\C\z.txt`, `D\E\w.txt`}
	got := resultPaths(results)
	if len(got) != len(want) {
		t.Fatalf("got %d assessments, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assessment paths = %v, want %v", got, want)
			break
		}
	}
	for _, r := range results {
		if r.IsFailure() {
			t.Errorf("unexpected failure sentinel: %v", r.Failed.Paths())
		}
	}
	if client.calls != len(batches) {
		t.Errorf("backend called %d times, want %d", client.calls, len(batches))
	}
}

func TestDispatchFailureSentinel(t *testing.T) {
	batches := makeBatches(
		[]string{`A\B\x.txt`, `A\B\y.txt`},
		[]string{`A\C\z.txt`},
	)
	client := &fakeClient{
		failWhen: func(payload string) bool { return strings.Contains(payload, `z.txt`) },
	}
	d := &Dispatcher{Client: client, Cooldown: time.Millisecond}

	results := d.Dispatch(context.Background(), batches)

	var sentinels []audit.Result
	for _, r := range results {
		if r.IsFailure() {
			sentinels = append(sentinels, r)
		}
	}
	if len(sentinels) != 1 {
		t.Fatalf("got %d sentinels, want 1", len(sentinels))
	}
	// The failed batch is preserved verbatim for manual inspection.
	if paths := sentinels[0].Failed.Paths(); len(paths) != 1 || paths[0] != `A\C\z.txt` {
		t.Errorf("sentinel batch = %v, want [A\\C\\z.txt]", paths)
	}
	// The other batch still produced its assessments.
	if got := resultPaths(results); len(got) != 2 {
		t.Errorf("surviving assessments = %v, want the two A\\B records", got)
	}
}

func TestDispatchProgress(t *testing.T) {
	batches := makeBatches(
		[]string{`A\B\a.txt`}, []string{`A\C\b.txt`}, []string{`A\D\c.txt`}, []string{`A\E\d.txt`},
	)

	var mu sync.Mutex
	type pair struct{ total, done int }
	var reported []pair

	d := &Dispatcher{
		Client:   &fakeClient{},
		Cooldown: time.Millisecond,
		Progress: func(total, done int) {
			mu.Lock()
			reported = append(reported, pair{total, done})
			mu.Unlock()
		},
	}
	d.Dispatch(context.Background(), batches)

	if len(reported) != len(batches) {
		t.Fatalf("progress reported %d times, want %d", len(reported), len(batches))
	}
	seen := make(map[int]bool)
	for _, p := range reported {
		if p.total != len(batches) {
			t.Errorf("reported total %d, want %d", p.total, len(batches))
		}
		seen[p.done] = true
	}
	for i := 1; i <= len(batches); i++ {
		if !seen[i] {
			t.Errorf("no progress report with completed=%d", i)
		}
	}
}

func TestDispatchRespectsWorkerBound(t *testing.T) {
	batches := makeBatches(
		[]string{`A\B\a.txt`}, []string{`A\C\b.txt`}, []string{`A\D\c.txt`},
		[]string{`A\E\d.txt`}, []string{`A\F\e.txt`}, []string{`A\G\f.txt`},
	)
	client := &fakeClient{delay: 5 * time.Millisecond}
	d := &Dispatcher{Client: client, Workers: 2, Cooldown: time.Millisecond}

	d.Dispatch(context.Background(), batches)

	if client.maxInFlight > 2 {
		t.Errorf("observed %d concurrent backend calls, bound is 2", client.maxInFlight)
	}
}
