// Package command runs external control utilities with a bounded timeout.
// Failures never escape as errors: every outcome is described by a Result.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Default configuration
const (
	DefaultTimeout   = 10 * time.Second
	DefaultWaitDelay = 2 * time.Second
)

// TimedOutMessage is the stderr reported for commands killed by the runner timeout.
const TimedOutMessage = "Command timed out"

// Result describes a single external invocation.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes an external command given as an argument vector.
type Runner interface {
	Run(ctx context.Context, argv []string) Result
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	timeout   time.Duration
	waitDelay time.Duration
}

// NewExecRunner creates a runner with the given timeout.
// waitDelay bounds how long Run waits for I/O after the process was killed.
func NewExecRunner(timeout, waitDelay time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if waitDelay <= 0 {
		waitDelay = DefaultWaitDelay
	}
	return &ExecRunner{
		timeout:   timeout,
		waitDelay: waitDelay,
	}
}

// Run starts argv[0] with the remaining arguments and waits for it to exit or time out.
// Cancellation of ctx does not stop a launched command; only the runner timeout does.
func (r *ExecRunner) Run(ctx context.Context, argv []string) Result {
	logger := log.Ctx(ctx)

	if len(argv) == 0 || argv[0] == "" {
		return Result{ExitCode: -1, Stderr: "empty command"}
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.Stderr = TimedOutMessage
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		if strings.TrimSpace(res.Stderr) == "" {
			res.Stderr = err.Error()
		}
	default:
		res.Success = true
	}

	if res.Success {
		logger.Debug().
			Strs("argv", argv).
			Dur("duration", res.Duration).
			Msg("Command completed")
	} else {
		logger.Warn().
			Strs("argv", argv).
			Int("exit_code", res.ExitCode).
			Str("stderr", strings.TrimSpace(res.Stderr)).
			Dur("duration", res.Duration).
			Msg("Command failed")
	}

	return res
}
