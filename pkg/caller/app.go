package caller

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"appcaller/internal/executor"
	"appcaller/internal/logger"
	"appcaller/pkg/callertypes"
)

// Call describes one compiled invocation handed to a ResultPackager.
type Call struct {
	ID          string
	Definitions *Definitions
	Command     Cmdline
	Positionals []any
	Options     map[string]any
}

// ResultPackager builds the caller facing result of a finished invocation.
type ResultPackager func(call *Call, inv *callertypes.Invocation) (*callertypes.Result, error)

// App binds a command prefix and parameter definitions to an executor.
//
// An App holds the values of the most recent successful SetParameters call.
// It is not safe for concurrent use; create one App per logical invocation
// or guard SetParameters/Run pairs with a lock.
type App struct {
	prefix       Cmdline
	defs         *Definitions
	executor     callertypes.Executor
	packager     ResultPackager
	allowFailure bool

	initialPositionals []any
	initialNamed       map[string]any

	positionals []any
	options     map[string]any
	resolved    bool
}

// AppOption configures an App at construction.
type AppOption func(*App)

// WithExecutor replaces the default os/exec based executor.
func WithExecutor(e callertypes.Executor) AppOption {
	return func(a *App) { a.executor = e }
}

// WithPackager replaces PackageOutputs as the result packager.
func WithPackager(p ResultPackager) AppOption {
	return func(a *App) { a.packager = p }
}

// WithAllowFailure makes Run return a non-zero exit as a plain result
// instead of an ExitError.
func WithAllowFailure() AppOption {
	return func(a *App) { a.allowFailure = true }
}

// WithValues sets the values resolved at construction.
func WithValues(positionals []any, named map[string]any) AppOption {
	return func(a *App) {
		a.initialPositionals = positionals
		a.initialNamed = named
	}
}

// NewApp creates an App and resolves its initial values, which are empty
// unless WithValues is given.
func NewApp(prefix []string, defs *Definitions, opts ...AppOption) (*App, error) {
	if len(prefix) == 0 {
		return nil, errors.New("caller: empty command prefix")
	}
	if defs == nil {
		return nil, errors.New("caller: nil parameter definitions")
	}
	a := &App{
		prefix:   slices.Clone(prefix),
		defs:     defs,
		packager: PackageOutputs,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.executor == nil {
		a.executor = executor.New()
	}
	if err := a.SetParameters(a.initialPositionals, a.initialNamed); err != nil {
		return nil, err
	}
	return a, nil
}

// Prefix returns the command prefix.
func (a *App) Prefix() Cmdline { return slices.Clone(a.prefix) }

// Definitions returns the bound parameter definitions.
func (a *App) Definitions() *Definitions { return a.defs }

// Positionals returns the resolved positional values.
func (a *App) Positionals() []any { return slices.Clone(a.positionals) }

// Options returns the resolved option values keyed by canonical name.
func (a *App) Options() map[string]any { return maps.Clone(a.options) }

// Resolved reports whether a SetParameters call has succeeded.
func (a *App) Resolved() bool { return a.resolved }

// SetParameters resolves and stores new values. On failure the previously
// stored values are kept.
func (a *App) SetParameters(positionals []any, named map[string]any) error {
	checkedPos, checkedOpts, err := a.defs.CheckedValues(positionals, named)
	if err != nil {
		return err
	}
	a.positionals, a.options, a.resolved = checkedPos, checkedOpts, true
	return nil
}

// SetParameter merges a single named value, positional or option, into the
// stored values. Stored option values are checked again, so checkers should
// accept their own output.
func (a *App) SetParameter(key string, value any) error {
	named := maps.Clone(a.options)
	if named == nil {
		named = make(map[string]any)
	}
	if p, ok := a.defs.Lookup(key); ok && p.Kind() != KindPositional {
		// Replace under the canonical name so an older value cannot win.
		key = p.Name()
	}
	named[key] = value
	return a.SetParameters(a.positionals, named)
}

// Cmdline compiles the stored values without running anything.
func (a *App) Cmdline() (Cmdline, error) {
	if !a.resolved {
		return nil, &Error{Kind: ErrNotResolved}
	}
	return a.defs.MakeCmdline(a.prefix, a.positionals, a.options, true)
}

// Run compiles the stored values, executes the command and packages the
// result. If the program exits non-zero the result is returned together with
// an *ExitError unless the App was created WithAllowFailure. Compilation
// errors are returned before anything is executed.
func (a *App) Run(ctx context.Context) (*callertypes.Result, error) {
	cmdline, err := a.Cmdline()
	if err != nil {
		return nil, err
	}

	call := &Call{
		ID:          uuid.New().String(),
		Definitions: a.defs,
		Command:     cmdline,
		Positionals: a.Positionals(),
		Options:     a.Options(),
	}

	started := time.Now()
	inv, err := a.executor.Execute(ctx, cmdline)
	if err != nil {
		return nil, &Error{Kind: ErrExecution, Key: cmdline.Program(), Err: err}
	}
	if inv.Duration == 0 {
		inv.Duration = time.Since(started)
	}
	logger.Invocation(call.ID, cmdline.String(), inv.ExitCode, inv.Duration)

	result, err := a.packager(call, inv)
	if err != nil {
		return nil, err
	}
	if inv.ExitCode != 0 && !a.allowFailure {
		return result, &ExitError{Command: cmdline, ExitCode: inv.ExitCode, Stderr: inv.Stderr}
	}
	return result, nil
}
