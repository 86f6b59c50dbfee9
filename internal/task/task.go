// Package task builds the pairwise combination set over a trace catalog and
// the resumability / limit controls applied to it before scheduling.
package task

import (
	"os"
	"path/filepath"
	"time"

	"simbatch/internal/trace"
)

// Task is one simulator invocation: an ordered pair of distinct traces, the
// derived output CSV path, and the instruction counts. Pair order follows
// catalog order; each unordered pair yields exactly one task.
type Task struct {
	TraceA Trace
	TraceB Trace
	Output string
	Warmup uint64
	Sim    uint64
}

// Trace mirrors trace.Trace so result types can carry names without the
// caller re-deriving them.
type Trace = trace.Trace

// Result captures the execution outcome of one task. Immutable once built.
type Result struct {
	TraceA   string        `json:"trace1"`
	TraceB   string        `json:"trace2"`
	Output   string        `json:"output"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// OutputPath is the pure function mapping a pair of short names to its
// artifact path. Resumability depends on this being deterministic.
func OutputPath(statsDir, nameA, nameB string) string {
	return filepath.Join(statsDir, nameA+"+"+nameB+".csv")
}

// Generate produces all C(K,2) unordered-pair tasks over the catalog, in
// catalog order. It never touches the filesystem.
func Generate(catalog []Trace, statsDir string, warmup, sim uint64) []Task {
	if len(catalog) < 2 {
		return nil
	}
	tasks := make([]Task, 0, len(catalog)*(len(catalog)-1)/2)
	for i := 0; i < len(catalog); i++ {
		for j := i + 1; j < len(catalog); j++ {
			a, b := catalog[i], catalog[j]
			tasks = append(tasks, Task{
				TraceA: a,
				TraceB: b,
				Output: OutputPath(statsDir, a.Name, b.Name),
				Warmup: warmup,
				Sim:    sim,
			})
		}
	}
	return tasks
}

// FilterExisting drops tasks whose output file already exists. Existence is
// the only check: a zero-byte or truncated prior artifact still counts as
// done.
func FilterExisting(tasks []Task) []Task {
	filtered := make([]Task, 0, len(tasks))
	for _, tk := range tasks {
		if _, err := os.Stat(tk.Output); err == nil {
			continue
		}
		filtered = append(filtered, tk)
	}
	return filtered
}

// Limit truncates the task list to at most n entries, preserving order.
// n <= 0 means no limit.
func Limit(tasks []Task, n int) []Task {
	if n <= 0 || n >= len(tasks) {
		return tasks
	}
	return tasks[:n]
}
