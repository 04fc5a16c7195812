// Package executor runs compiled command lines as child processes and
// captures their output.
//
// The whole of standard output and standard error is buffered in memory, so
// programs that write very large amounts of output should be redirected to
// files by their parameter definitions instead.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"appcaller/internal/logger"
	"appcaller/pkg/callertypes"
)

// ErrTimeout is returned when a process is killed for exceeding its timeout.
var ErrTimeout = errors.New("executor: process timed out")

// Executor runs processes directly, without a shell.
type Executor struct {
	// Timeout bounds each process; zero means no limit beyond the context
	Timeout time.Duration

	// Dir is the working directory; empty means the current directory
	Dir string

	// Env is added to the inherited environment, overriding duplicates
	Env map[string]string

	// Stdin is fed to the process if non-nil
	Stdin []byte

	log *log.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds the run time of every process.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.Timeout = timeout }
}

// WithDir sets the working directory.
func WithDir(dir string) Option {
	return func(e *Executor) { e.Dir = dir }
}

// WithEnv adds environment variables for the child process.
func WithEnv(env map[string]string) Option {
	return func(e *Executor) {
		if e.Env == nil {
			e.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			e.Env[k] = v
		}
	}
}

// WithStdin feeds data to the process's standard input.
func WithStdin(data []byte) Option {
	return func(e *Executor) { e.Stdin = data }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{log: logger.NewStyledLogger("Executor")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ callertypes.Executor = (*Executor)(nil)

// Execute runs argv and waits for it to exit. A non-zero exit status is
// reported through Invocation.ExitCode, not as an error.
func (e *Executor) Execute(ctx context.Context, argv []string) (*callertypes.Invocation, error) {
	if len(argv) == 0 {
		return nil, errors.New("executor: empty command line")
	}

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), e.Env)
	}
	if e.Stdin != nil {
		cmd.Stdin = bytes.NewReader(e.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.log != nil {
		e.log.Debug("Starting process", "command", argv[0], "args", len(argv)-1, "dir", e.Dir)
	}
	start := time.Now()
	err := cmd.Run()
	inv := &callertypes.Invocation{
		Argv:     append([]string(nil), argv...),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if runCtx.Err() != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return inv, fmt.Errorf("%w after %s: %s", ErrTimeout, e.Timeout, argv[0])
		}
		return inv, fmt.Errorf("executor: %s: %w", argv[0], runCtx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		inv.ExitCode = 0
	case errors.As(err, &exitErr):
		inv.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("executor: failed to start %s: %w", argv[0], err)
	}
	if e.log != nil {
		e.log.Debug("Process exited", "command", argv[0], "exit_code", inv.ExitCode, "duration", inv.Duration)
	}
	return inv, nil
}

// mergeEnv overlays extra onto base, keeping the output order stable.
func mergeEnv(base []string, extra map[string]string) []string {
	env := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := extra[key]; !overridden {
			env = append(env, kv)
		}
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
