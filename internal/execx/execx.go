// Package execx runs external tools with wall-clock timeouts and bounded
// output capture. Rasterizers and converters are external collaborators; a
// hung tool must never stall a run.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

// maxCapturedOutput bounds how much combined output a Result retains
const maxCapturedOutput = 64 * 1024

// Result describes one completed command invocation
type Result struct {
	Status   string
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner executes external commands
type Runner struct {
	Timeout time.Duration
}

// NewRunner creates a runner with the given per-command timeout.
// A zero timeout means no limit.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

// Run executes name with args, honoring both the runner timeout and the
// caller's context. Timeouts are reported as a distinct status rather than a
// generic failure so callers can decide whether to retry.
func (r *Runner) Run(ctx context.Context, name string, args ...string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Duration: time.Since(start),
		Output:   truncate(buf.String()),
	}

	if err == nil {
		result.Status = StatusOK
		return result
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.Status = StatusTimeout
		result.ExitCode = -1
		return result
	}

	result.Status = StatusFailed
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = -1
		if result.Output == "" {
			result.Output = err.Error()
		}
	}
	return result
}

func truncate(s string) string {
	if len(s) <= maxCapturedOutput {
		return s
	}
	return s[:maxCapturedOutput] + "\n[output truncated]"
}
