package caller

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error kinds. Every error returned while resolving, compiling or running
// matches exactly one of these through errors.Is; the missing-value kinds
// also match ErrMissingRequired.
var (
	// Definition errors
	ErrDuplicateDefinition = errors.New("caller: duplicate parameter name or alias")

	// Resolution errors
	ErrUnknownParameter    = errors.New("caller: unknown parameter")
	ErrMisplacedPositional = errors.New("caller: named positional too far from end of positional list")
	ErrTooManyPositionals  = errors.New("caller: too many positional parameters")
	ErrValidation          = errors.New("caller: invalid parameter value")

	// Compilation errors
	ErrMissingRequired   = errors.New("caller: missing required parameter")
	ErrTooFewPositionals = errors.New("caller: too few positional parameters")
	ErrMissingPositional = errors.New("caller: missing required positional parameter")
	ErrMissingOption     = errors.New("caller: missing required option")

	// Application errors
	ErrNotResolved = errors.New("caller: parameters have not been set")
	ErrExecution   = errors.New("caller: execution failed")
)

// Error describes a failure to define, resolve, compile or run a command.
type Error struct {
	// Kind is one of the Err* sentinels above
	Kind error

	// Param is the canonical name of the parameter involved, if any
	Param string

	// Key is the caller supplied key involved, if any
	Key string

	// Value is the offending value, if any
	Value any

	// Msg adds detail to the kind's message
	Msg string

	// Err is the underlying cause, such as a checker's error
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	switch {
	case e.Param != "" && e.Key != "" && e.Key != e.Param:
		fmt.Fprintf(&b, " %q (as %q)", e.Param, e.Key)
	case e.Param != "":
		fmt.Fprintf(&b, " %q", e.Param)
	case e.Key != "":
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Value != nil {
		fmt.Fprintf(&b, " value %v", e.Value)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Is reports whether target is ErrMissingRequired for any of the missing-value kinds.
func (e *Error) Is(target error) bool {
	if target != ErrMissingRequired {
		return false
	}
	switch e.Kind {
	case ErrMissingRequired, ErrTooFewPositionals, ErrMissingPositional, ErrMissingOption:
		return true
	}
	return false
}

// ExitError is returned by App.Run when the wrapped program exits non-zero.
// It matches ErrExecution.
type ExitError struct {
	Command  Cmdline
	ExitCode int
	Stderr   []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %s exited with status %d", ErrExecution, e.Command.Program(), e.ExitCode)
	if stderr := strings.TrimSpace(string(e.Stderr)); stderr != "" {
		stderr = truncate(stderr, maxStderrInMessage)
		msg += ": " + stderr
	}
	return msg
}

const maxStderrInMessage = 200

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// Unwrap allows errors.Is(err, ErrExecution).
func (e *ExitError) Unwrap() error { return ErrExecution }

// KindOf returns the sentinel kind of err, or nil if err did not originate here.
func KindOf(err error) error {
	var callerErr *Error
	if errors.As(err, &callerErr) {
		return callerErr.Kind
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return ErrExecution
	}
	return nil
}
