// Package process runs external programs and captures their result.
//
// It is the capability boundary between the summarization use case and the helper
// that talks to the language model: callers describe an executable, its arguments
// and extra environment, and receive an Outcome with the exit status and both
// captured output streams.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrStart is returned when the executable could not be launched at all
// (not found, not executable, permission denied).
var ErrStart = errors.New("process failed to start")

// waitDelay bounds how long Wait keeps draining output after the process was killed.
const waitDelay = 5 * time.Second

// Command describes one process invocation.
type Command struct {
	// Path is the executable, resolved through PATH when it has no separator.
	Path string

	// Args are the positional arguments passed after Path.
	Args []string

	// Env holds KEY=VALUE entries layered over the current process environment.
	// Entries here replace inherited variables with the same key.
	Env []string

	// MaxOutputBytes caps how much of each stream is kept. Zero or negative means unlimited.
	MaxOutputBytes int64
}

// Outcome is the terminal result of one process invocation.
type Outcome struct {
	// ExitStatus is the process exit code, or -1 when it was terminated by a signal.
	ExitStatus int

	Stdout []byte
	Stderr []byte

	Duration time.Duration

	// Truncated reports that at least one stream exceeded MaxOutputBytes.
	Truncated bool
}

// Succeeded reports whether the process exited with status 0.
func (o *Outcome) Succeeded() bool {
	return o.ExitStatus == 0
}

// Runner launches a command and waits for it to finish.
// Implementations must return an error wrapping ErrStart when the process never ran,
// and a non-nil Outcome whenever it did, regardless of its exit status.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Outcome, error)
}

// ExecRunner is the os/exec implementation of Runner.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts cmd, accumulates stdout and stderr concurrently until the process exits,
// and reports the exit status. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Env = MergeEnv(os.Environ(), cmd.Env)
	c.WaitDelay = waitDelay

	stdout := newBoundedBuffer(cmd.MaxOutputBytes)
	stderr := newBoundedBuffer(cmd.MaxOutputBytes)
	c.Stdout = stdout
	c.Stderr = stderr

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStart, err)
	}

	waitErr := c.Wait()
	outcome := &Outcome{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Duration:  time.Since(start),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			outcome.ExitStatus = exitErr.ExitCode()
		case c.ProcessState != nil:
			// Exited, but Wait reported ErrWaitDelay or a cancellation racing the exit.
			outcome.ExitStatus = c.ProcessState.ExitCode()
		default:
			return nil, fmt.Errorf("wait for process: %w", waitErr)
		}
	}

	return outcome, nil
}

// MergeEnv returns base with every KEY=VALUE entry of overrides applied.
// Variables in base whose key appears in overrides are dropped so each key occurs once.
func MergeEnv(base, overrides []string) []string {
	if len(overrides) == 0 {
		return base
	}

	replaced := make(map[string]struct{}, len(overrides))
	for _, kv := range overrides {
		replaced[envKey(kv)] = struct{}{}
	}

	merged := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		if _, ok := replaced[envKey(kv)]; ok {
			continue
		}
		merged = append(merged, kv)
	}
	return append(merged, overrides...)
}

func envKey(kv string) string {
	if i := strings.IndexByte(kv, '='); i >= 0 {
		return kv[:i]
	}
	return kv
}
