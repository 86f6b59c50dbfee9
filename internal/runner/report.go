package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"simbatch/internal/task"
)

// Summary aggregates a finished (or aborted) batch.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Results   []task.Result `json:"results"`
}

// reporter owns the running counters. Workers never touch them; results
// arrive here one at a time in completion order.
type reporter struct {
	out       io.Writer
	total     int
	workers   int
	completed int
	failed    int
	start     time.Time
	results   []task.Result
}

func newReporter(out io.Writer, total, workers int) *reporter {
	return &reporter{
		out:     out,
		total:   total,
		workers: workers,
		start:   time.Now(),
		results: make([]task.Result, 0, total),
	}
}

// record consumes one completed task: bump counters, print the progress
// line, and for failures the captured error text.
func (rp *reporter) record(res task.Result) {
	rp.completed++
	status := "✓"
	if !res.Success {
		status = "✗"
		rp.failed++
	}
	rp.results = append(rp.results, res)

	elapsed := time.Since(rp.start)
	avg := elapsed.Seconds() / float64(rp.completed)
	remaining := avg * float64(rp.total-rp.completed) / float64(rp.workers)

	fmt.Fprintf(rp.out, "[%4d/%d] %s %s + %s (%.1fs) - est. remaining: %.1f min\n",
		rp.completed, rp.total, status, res.TraceA, res.TraceB,
		res.Duration.Seconds(), remaining/60)

	if !res.Success {
		fmt.Fprintf(rp.out, "         error: %s\n", res.Error)
	}
}

func (rp *reporter) summary() Summary {
	return Summary{
		Total:     rp.total,
		Succeeded: rp.completed - rp.failed,
		Failed:    rp.failed,
		Elapsed:   time.Since(rp.start),
		Results:   rp.results,
	}
}

// PrintSummary emits the end-of-batch totals to the progress stream.
func (r *Runner) PrintSummary(s Summary, statsDir string) {
	fmt.Fprintln(r.out, "======================================================================")
	fmt.Fprintf(r.out, "Done. Total time: %.1f min (%.2f hours)\n",
		s.Elapsed.Minutes(), s.Elapsed.Hours())
	fmt.Fprintf(r.out, "Succeeded: %d, failed: %d\n", s.Succeeded, s.Failed)
	fmt.Fprintf(r.out, "Results saved in: %s\n", statsDir)
}

// WriteManifest writes the full result set as JSON so every failure stays
// inspectable after the run without scraping the progress stream.
func WriteManifest(path string, s Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
