package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"simbatch/internal/task"
	"simbatch/internal/utils"
)

// stderrCaptureLimit bounds the error text carried into a failure
// description.
const stderrCaptureLimit = 500

// execute runs one simulator invocation. Success is decided solely by the
// presence of the output CSV afterwards; the exit code is advisory and only
// surfaces in failure descriptions.
func (r *Runner) execute(ctx context.Context, tk task.Task) task.Result {
	res := task.Result{
		TraceA: tk.TraceA.Name,
		TraceB: tk.TraceB.Name,
		Output: tk.Output,
	}
	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, r.binary,
		"--warmup-instructions", strconv.FormatUint(tk.Warmup, 10),
		"--simulation-instructions", strconv.FormatUint(tk.Sim, 10),
		"--csv-output", tk.Output,
		tk.TraceA.Path, tk.TraceB.Path,
	)
	stderr := newHeadBuffer(4 * stderrCaptureLimit)
	cmd.Stderr = stderr
	// A killed simulator can leave grandchildren holding the stderr pipe;
	// don't let Wait block on them past the kill.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	pid := cmd.Process.Pid
	r.log.Debug().Int("pid", pid).Str("output", tk.Output).Msg("simulation started")

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)

	if _, err := os.Stat(tk.Output); err == nil {
		res.Success = true
		return res
	}

	switch {
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		res.Error = fmt.Sprintf("simulation timed out (>%s)", r.timeout)
		r.confirmKilled(pid)
	case errors.Is(cctx.Err(), context.Canceled):
		res.Error = "interrupted before completion"
	default:
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		res.Error = fmt.Sprintf("CSV file not generated. Return code: %d", exitCode)
		if text := utils.SanitizeOutput(stderr.String()); text != "" {
			res.Error += "\nStderr: " + utils.Truncate(text, stderrCaptureLimit)
		} else if waitErr != nil {
			res.Error += "\n" + waitErr.Error()
		}
	}
	return res
}

// confirmKilled double-checks that a timed-out child is actually gone after
// the context kill. A lingering pid is logged, never fatal.
func (r *Runner) confirmKilled(pid int) {
	const grace = 250 * time.Millisecond
	time.Sleep(grace)
	if isProcessRunning(pid) {
		r.log.Warn().Int("pid", pid).Msg("child process still running after timeout kill")
	}
}

// headBuffer keeps the first limit bytes written to it and discards the
// rest. Simulator stderr can run to megabytes; only the prefix is ever
// surfaced.
type headBuffer struct {
	limit int
	data  []byte
}

func newHeadBuffer(limit int) *headBuffer {
	return &headBuffer{limit: limit}
}

func (b *headBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - len(b.data); remaining > 0 {
		if len(p) > remaining {
			p = p[:remaining]
		}
		b.data = append(b.data, p...)
	}
	return len(p), nil
}

func (b *headBuffer) String() string {
	return string(b.data)
}
