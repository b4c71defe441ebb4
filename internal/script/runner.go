package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// waitDelayAfterKill is the grace period for a process to exit after context
// cancellation before it is forcibly killed.
const waitDelayAfterKill = 500 * time.Millisecond

// truncationSuffix is appended to output that exceeded MaxOutputBytes.
const truncationSuffix = "\n...[truncated]"

// ErrNotFound is returned when the program to run does not exist.
var ErrNotFound = errors.New("script: program not found")

// Result is the outcome of a completed run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner abstracts process execution for testability.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	cfg    Config
	logger *slog.Logger
}

// NewExecRunner creates an ExecRunner. Config defaults are applied automatically.
func NewExecRunner(cfg Config, logger *slog.Logger) *ExecRunner {
	cfg.ApplyDefaults()
	return &ExecRunner{
		cfg:    cfg,
		logger: logger.With("component", "script"),
	}
}

// Run executes program with args and waits for it to finish. A non-zero exit
// status is returned as an error alongside the populated Result.
func (r *ExecRunner) Run(ctx context.Context, program string, args ...string) (Result, error) {
	if _, err := exec.LookPath(program); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s", ErrNotFound, program)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, program, args...)
	cmd.WaitDelay = waitDelayAfterKill

	stdoutW := newLimitedWriter(r.cfg.MaxOutputBytes)
	stderrW := newLimitedWriter(r.cfg.MaxOutputBytes)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdoutW.output(),
		Stderr:   stderrW.output(),
		Duration: time.Since(start),
	}

	r.logger.Debug("script finished",
		"program", program,
		"args", strings.Join(args, " "),
		"exit_code", res.ExitCode,
		"duration", res.Duration,
	)

	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return res, fmt.Errorf("script: %s: timed out after %s", program, r.cfg.Timeout)
		}
		return res, fmt.Errorf("script: %s: %w", program, err)
	}
	return res, nil
}

type limitedWriter struct {
	buf []byte
	max int64
}

func newLimitedWriter(max int64) *limitedWriter {
	return &limitedWriter{max: max}
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	remaining := w.max - int64(len(w.buf))
	if remaining > 0 {
		n := int64(len(p))
		if n > remaining {
			n = remaining
		}
		w.buf = append(w.buf, p[:n]...)
	}
	// Always report all bytes as written so the command doesn't stall.
	return len(p), nil
}

func (w *limitedWriter) output() string {
	if int64(len(w.buf)) >= w.max {
		return string(w.buf) + truncationSuffix
	}
	return string(w.buf)
}
