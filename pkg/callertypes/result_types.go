package callertypes

import (
	"sort"
	"time"
)

// Invocation is the raw outcome of a single executor call.
type Invocation struct {
	// Argv is the command line that was executed
	Argv []string

	// ExitCode is the process exit status
	ExitCode int

	// Stdout and Stderr hold the complete captured output streams
	Stdout []byte
	Stderr []byte

	// Duration is the wall-clock time the process ran for
	Duration time.Duration
}

// Result is the packaged outcome of running a wrapped application.
type Result struct {
	// ID uniquely identifies the run (UUID)
	ID string `json:"id"`

	// Command is the compiled command line
	Command []string `json:"command"`

	ExitCode int    `json:"exit_code"`
	Stdout   []byte `json:"stdout"`
	Stderr   []byte `json:"stderr"`

	Duration time.Duration `json:"duration"`

	// Fields holds application specific values, such as the values of
	// parameters that name output files
	Fields map[string]any `json:"fields"`
}

// Field returns the named application specific value.
func (r *Result) Field(name string) (any, bool) {
	if r == nil || r.Fields == nil {
		return nil, false
	}
	value, ok := r.Fields[name]
	return value, ok
}

// FieldNames returns the sorted names of all available fields.
func (r *Result) FieldNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}
