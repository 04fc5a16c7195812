// Package testutils provides stub collaborators and helpers for appcaller tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"appcaller/pkg/callertypes"
)

// StubExecutor records every command line it receives and answers with a
// canned invocation instead of starting a process.
type StubExecutor struct {
	mu    sync.Mutex
	calls [][]string

	// ExitCode, Stdout and Stderr are copied into every invocation
	ExitCode int
	Stdout   string
	Stderr   string

	// Err, when set, is returned instead of an invocation
	Err error
}

// NewStubExecutor creates a StubExecutor that succeeds with the given stdout.
func NewStubExecutor(stdout string) *StubExecutor {
	return &StubExecutor{Stdout: stdout}
}

// Execute implements callertypes.Executor.
func (s *StubExecutor) Execute(_ context.Context, argv []string) (*callertypes.Invocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, append([]string(nil), argv...))
	if s.Err != nil {
		return nil, s.Err
	}
	return &callertypes.Invocation{
		Argv:     append([]string(nil), argv...),
		ExitCode: s.ExitCode,
		Stdout:   []byte(s.Stdout),
		Stderr:   []byte(s.Stderr),
	}, nil
}

// Calls returns the recorded command lines.
func (s *StubExecutor) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}

// LastCall returns the most recent command line, or nil.
func (s *StubExecutor) LastCall() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// CreateTempFile creates a file under t.TempDir() and returns its path.
func CreateTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
