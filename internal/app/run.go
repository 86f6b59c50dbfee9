package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"simbatch/internal/config"
	"simbatch/internal/runner"
	"simbatch/internal/task"
	"simbatch/internal/trace"
)

// dryRunPreviewLimit caps how many tasks a dry run prints before collapsing
// the rest into a remaining-count note.
const dryRunPreviewLimit = 20

// runBatch is the top-level batch flow: setup checks, task generation,
// filtering, dry-run or scheduling, final summary. Only setup failures
// produce a non-zero exit; individual task failures do not.
func runBatch(cfg *config.Config, log zerolog.Logger, out io.Writer) int {
	if _, err := resolveBinary(cfg.Binary); err != nil {
		log.Error().Err(err).Msg("simulator binary not found")
		fmt.Fprintf(os.Stderr, "Build the simulator first (e.g. ./config.sh && make), or pass --binary.\n")
		return 1
	}

	catalog, err := trace.Discover(cfg.TracesDir)
	if err != nil {
		switch {
		case errors.Is(err, trace.ErrDirMissing):
			log.Error().Err(err).Msg("traces directory missing")
		case errors.Is(err, trace.ErrEmptyCatalog):
			log.Error().Err(err).Msg("empty trace catalog")
		default:
			log.Error().Err(err).Msg("trace discovery failed")
		}
		return 1
	}
	log.Info().Int("traces", len(catalog)).Msg("catalog resolved")

	tasks := task.Generate(catalog, cfg.StatsDir, cfg.Warmup, cfg.Simulation)
	total := len(tasks)
	fmt.Fprintf(out, "Found %d trace files, %d combinations (C(%d,2))\n",
		len(catalog), total, len(catalog))

	if cfg.SkipExisting {
		tasks = task.FilterExisting(tasks)
		if skipped := total - len(tasks); skipped > 0 {
			fmt.Fprintf(out, "Skipping %d pairs with existing results\n", skipped)
		}
	}
	if cfg.Limit > 0 {
		tasks = task.Limit(tasks, cfg.Limit)
		fmt.Fprintf(out, "Limiting run to %d tasks\n", len(tasks))
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, "Nothing to run")
		return 0
	}

	if err := os.MkdirAll(cfg.StatsDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", cfg.StatsDir).Msg("cannot create stats directory")
		return 1
	}

	if cfg.DryRun {
		printDryRun(out, cfg, tasks)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "\nRunning %d simulations with %d workers...\n", len(tasks), cfg.Workers)
	fmt.Fprintln(out, "======================================================================")

	r := runner.New(cfg, log)
	r.SetOutput(out)
	summary := r.Run(ctx, tasks)
	r.PrintSummary(summary, cfg.StatsDir)

	if cfg.ResultsFile != "" {
		if err := runner.WriteManifest(cfg.ResultsFile, summary); err != nil {
			log.Error().Err(err).Str("path", cfg.ResultsFile).Msg("manifest write failed")
		} else {
			log.Info().Str("path", cfg.ResultsFile).Msg("result manifest written")
		}
	}
	return 0
}

// resolveBinary locates the simulator executable. Bare names are looked up
// on PATH; anything with a path separator must exist as a regular file.
func resolveBinary(binary string) (string, error) {
	if !strings.ContainsRune(binary, os.PathSeparator) {
		return exec.LookPath(binary)
	}
	fi, err := os.Stat(binary)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s is a directory, not an executable", binary)
	}
	return binary, nil
}

func printDryRun(out io.Writer, cfg *config.Config, tasks []task.Task) {
	fmt.Fprintf(out, "\nTasks to run (%d total):\n", len(tasks))
	fmt.Fprintln(out, "------------------------------------------------------------")
	for i, tk := range tasks {
		if i == dryRunPreviewLimit {
			fmt.Fprintf(out, "  ... and %d more\n", len(tasks)-dryRunPreviewLimit)
			break
		}
		fmt.Fprintf(out, "  %4d. %s + %s\n", i+1, tk.TraceA.Name, tk.TraceB.Name)
	}
	fmt.Fprintln(out, "------------------------------------------------------------")
	fmt.Fprintf(out, "Output directory: %s\n", cfg.StatsDir)
	fmt.Fprintf(out, "Workers: %d\n", cfg.Workers)
}
