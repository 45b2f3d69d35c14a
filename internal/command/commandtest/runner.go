// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"strings"
	"sync"

	"github.com/dokzlo13/displayd/internal/command"
)

// HandlerFunc produces the result for one invocation.
type HandlerFunc func(argv []string) command.Result

// Runner records every invocation and answers with a HandlerFunc.
// It never spawns processes.
type Runner struct {
	mu      sync.Mutex
	calls   [][]string
	handler HandlerFunc
}

// New creates a Runner. A nil handler makes every command succeed with empty output.
func New(handler HandlerFunc) *Runner {
	return &Runner{handler: handler}
}

// Run implements command.Runner.
func (r *Runner) Run(_ context.Context, argv []string) command.Result {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), argv...))
	h := r.handler
	r.mu.Unlock()

	if h == nil {
		return command.Result{Success: true}
	}
	return h(argv)
}

// Calls returns a copy of the recorded argvs in invocation order.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// Joined returns the recorded calls as space-joined strings, handy for comparisons.
func (r *Runner) Joined() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}

// Reset forgets recorded calls.
func (r *Runner) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// OK is a successful result with the given stdout.
func OK(stdout string) command.Result {
	return command.Result{Success: true, Stdout: stdout}
}

// Fail is a failed result with the given stderr.
func Fail(stderr string) command.Result {
	return command.Result{ExitCode: 1, Stderr: stderr}
}
