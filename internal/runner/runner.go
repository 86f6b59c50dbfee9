// Package runner executes the generated task list against the external
// simulator binary under bounded parallelism, collects per-task outcomes in
// completion order, and reports live progress with a running ETA.
package runner

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"simbatch/internal/config"
	"simbatch/internal/task"
)

// Runner owns the worker pool. Each worker is bound to at most one in-flight
// child process; the reporter is the only component that touches the
// aggregate counters.
type Runner struct {
	binary  string
	workers int
	timeout time.Duration
	log     zerolog.Logger

	// out receives the operator-facing progress stream. Defaults to stdout.
	out io.Writer
}

// New builds a Runner from the resolved configuration.
func New(cfg *config.Config, log zerolog.Logger) *Runner {
	return &Runner{
		binary:  cfg.Binary,
		workers: cfg.Workers,
		timeout: cfg.Timeout,
		log:     log,
		out:     os.Stdout,
	}
}

// SetOutput redirects the progress stream; used by tests.
func (r *Runner) SetOutput(w io.Writer) { r.out = w }

// Run executes tasks with at most `workers` concurrent child processes and
// returns the aggregate summary. Individual task failures never abort the
// batch; cancelling ctx stops feeding new tasks and kills in-flight ones.
func (r *Runner) Run(ctx context.Context, tasks []task.Task) Summary {
	rep := newReporter(r.out, len(tasks), r.workers)
	if len(tasks) == 0 {
		return rep.summary()
	}

	jobs := make(chan task.Task)
	results := make(chan task.Result)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range jobs {
				results <- r.execute(ctx, tk)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, tk := range tasks {
			select {
			case jobs <- tk:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		rep.record(res)
	}

	if err := ctx.Err(); err != nil {
		r.log.Warn().Err(err).Msg("batch interrupted; completed artifacts are kept")
	}
	return rep.summary()
}
