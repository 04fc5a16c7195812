// Package callertypes defines the interfaces and data structures shared between
// the appcaller engine and its collaborators.
//
// The engine in package caller compiles parameter values into a command line.
// Running that command line and packaging the outcome is delegated to the
// collaborators described here:
//
//   - Executor: runs one fully compiled command line and captures its output
//   - Invocation: the raw outcome of one executor call
//   - Result: the packaged outcome handed back to callers
//   - Service: the registration contract used by internal/services
package callertypes

import "context"

// Executor runs a compiled command line to completion.
//
// Implementations must fully drain standard output and standard error before
// returning. A non-zero exit code is not an error; it is reported through
// Invocation.ExitCode. An error is returned only if the process could not be
// started or was stopped by ctx.
type Executor interface {
	Execute(ctx context.Context, argv []string) (*Invocation, error)
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
type ExecutorFunc func(ctx context.Context, argv []string) (*Invocation, error)

// Execute calls f(ctx, argv).
func (f ExecutorFunc) Execute(ctx context.Context, argv []string) (*Invocation, error) {
	return f(ctx, argv)
}

// Service defines the interface for appcaller services that provide specific functionality.
// Services are registered at startup and initialized once before use.
type Service interface {
	Name() string
	Initialize() error
}
