// Package caller describes the command-line interface of an external program
// and compiles caller supplied values into a checked, ready to run command line.
//
// A Definitions value combines a sequence of positional parameters with a set
// of named options. CheckedValues reconciles positional values with named
// values (which may also address positional slots by name or alias), and
// MakeCmdline renders the result after the command prefix. App binds a
// Definitions to a program and an Executor for repeated use.
package caller

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"

	"appcaller/internal/logger"
)

// Definitions is the immutable description of a program's parameters.
// It is safe for concurrent use.
type Definitions struct {
	positionals      *Positionals
	options          []*Parameter
	table            map[string]*Parameter
	positionalsFirst bool
}

// DefinitionsOption configures Definitions at construction.
type DefinitionsOption func(*definitionsConfig)

type definitionsConfig struct {
	globbing         bool
	positionalsFirst bool
}

// WithGlobbing lets the final positional parameter absorb any number of extra values.
func WithGlobbing() DefinitionsOption {
	return func(c *definitionsConfig) { c.globbing = true }
}

// WithPositionalsFirst compiles positional values before options instead of after.
func WithPositionalsFirst() DefinitionsOption {
	return func(c *definitionsConfig) { c.positionalsFirst = true }
}

// NewDefinitions creates parameter definitions. Every name and alias, positional
// or option, must be unique; otherwise ErrDuplicateDefinition is returned.
func NewDefinitions(positionals, options []*Parameter, opts ...DefinitionsOption) (*Definitions, error) {
	var cfg definitionsConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	posSeq, err := NewPositionals(positionals, cfg.globbing)
	if err != nil {
		return nil, err
	}

	table := make(map[string]*Parameter)
	for _, p := range positionals {
		for _, key := range p.Keys() {
			table[key] = p
		}
	}
	for _, o := range options {
		for _, key := range o.Keys() {
			if owner, exists := table[key]; exists {
				return nil, &Error{
					Kind:  ErrDuplicateDefinition,
					Param: o.Name(),
					Key:   key,
					Msg:   fmt.Sprintf("already used by %s %q", owner.Kind(), owner.Name()),
				}
			}
			table[key] = o
		}
	}

	return &Definitions{
		positionals:      posSeq,
		options:          slices.Clone(options),
		table:            table,
		positionalsFirst: cfg.positionalsFirst,
	}, nil
}

// MustDefinitions is like NewDefinitions but panics on error. It is intended
// for package level tables.
func MustDefinitions(positionals, options []*Parameter, opts ...DefinitionsOption) *Definitions {
	d, err := NewDefinitions(positionals, options, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Positionals returns the positional sequence.
func (d *Definitions) Positionals() *Positionals { return d.positionals }

// Options returns a copy of the option parameters in declaration order.
func (d *Definitions) Options() []*Parameter { return slices.Clone(d.options) }

// Lookup finds the parameter answering to a name or alias.
func (d *Definitions) Lookup(key string) (*Parameter, bool) {
	p, ok := d.table[key]
	return p, ok
}

// PositionalsFirst reports whether positional values are compiled before options.
func (d *Definitions) PositionalsFirst() bool { return d.positionalsFirst }

type namedPositional struct {
	index int
	key   string
	value any
}

// CheckedValues resolves positional and named values into a checked positional
// tuple and a checked option map keyed by canonical option name.
//
// Named keys that belong to a positional parameter move into the positional
// list: they overwrite an existing value at their slot or are appended when
// the slot is exactly one past the end. Named keys are processed in sorted
// order, so when two aliases of one parameter are given the later key wins.
// Required parameters are not enforced here; see MakeCmdline.
func (d *Definitions) CheckedValues(positionals []any, named map[string]any) ([]any, map[string]any, error) {
	options := make(map[string]any)
	var namedPoses []namedPositional

	for _, key := range slices.Sorted(maps.Keys(named)) {
		value := named[key]
		if i, ok := d.positionals.Index(key); ok {
			namedPoses = append(namedPoses, namedPositional{index: i, key: key, value: value})
			continue
		}
		opt, ok := d.table[key]
		if !ok {
			return nil, nil, &Error{Kind: ErrUnknownParameter, Key: key}
		}
		checked, err := opt.Check(value)
		if err != nil {
			return nil, nil, withKey(err, key)
		}
		options[opt.Name()] = checked
	}

	slices.SortStableFunc(namedPoses, func(a, b namedPositional) int {
		return cmp.Compare(a.index, b.index)
	})
	values := slices.Clone(positionals)
	for _, np := range namedPoses {
		switch {
		case np.index < len(values):
			values[np.index] = np.value
		case np.index == len(values):
			values = append(values, np.value)
		default:
			return nil, nil, &Error{
				Kind: ErrMisplacedPositional,
				Key:  np.key,
				Msg:  fmt.Sprintf("slot %d but only %d positional values", np.index, len(values)),
			}
		}
	}

	checked, err := d.checkPositionals(values)
	if err != nil {
		return nil, nil, err
	}

	logger.Resolution(len(checked), options)
	return checked, options, nil
}

// checkPositionals pairs each value with the next slot and runs its checker.
func (d *Definitions) checkPositionals(values []any) ([]any, error) {
	next, stop := iter.Pull(d.positionals.Slots())
	defer stop()

	checked := make([]any, 0, len(values))
	for i, value := range values {
		param, ok := next()
		if !ok {
			return nil, &Error{
				Kind:  ErrTooManyPositionals,
				Value: value,
				Msg:   fmt.Sprintf("got %d, accept at most %d", len(values), i),
			}
		}
		v, err := param.Check(value)
		if err != nil {
			return nil, err
		}
		checked = append(checked, v)
	}
	return checked, nil
}

// MakeCmdline compiles prefix and values into a command line.
//
// Unless checked is true the values are first resolved with CheckedValues.
// When checked is true, positionals and named must be the outputs of a
// previous CheckedValues call. Missing required positionals fail with
// ErrMissingPositional and missing required options with ErrMissingOption.
func (d *Definitions) MakeCmdline(prefix []string, positionals []any, named map[string]any, checked bool) (Cmdline, error) {
	if !checked {
		var err error
		if positionals, named, err = d.CheckedValues(positionals, named); err != nil {
			return nil, err
		}
	}

	for i, p := range d.positionals.params {
		if p.IsRequired() && i >= len(positionals) {
			return nil, &Error{
				Kind:  ErrMissingPositional,
				Param: p.Name(),
				Msg:   fmt.Sprintf("slot %d", i),
			}
		}
	}
	for _, o := range d.options {
		if _, ok := named[o.Name()]; o.IsRequired() && !ok {
			return nil, &Error{Kind: ErrMissingOption, Param: o.Name()}
		}
	}
	for key := range named {
		if p, ok := d.table[key]; !ok || p.Name() != key || p.Kind() == KindPositional {
			return nil, &Error{Kind: ErrUnknownParameter, Key: key, Msg: "not a canonical option name"}
		}
	}

	posTokens, err := d.renderPositionals(positionals)
	if err != nil {
		return nil, err
	}
	optTokens, err := d.renderOptions(named)
	if err != nil {
		return nil, err
	}

	cmdline := make(Cmdline, 0, len(prefix)+len(posTokens)+len(optTokens))
	cmdline = append(cmdline, prefix...)
	if d.positionalsFirst {
		cmdline = append(append(cmdline, posTokens...), optTokens...)
	} else {
		cmdline = append(append(cmdline, optTokens...), posTokens...)
	}

	logger.CommandLine(cmdline.String())
	return cmdline, nil
}

func (d *Definitions) renderPositionals(values []any) ([]string, error) {
	next, stop := iter.Pull(d.positionals.Slots())
	defer stop()

	var tokens []string
	for _, value := range values {
		param, ok := next()
		if !ok {
			return nil, d.positionals.ValidateCount(len(values))
		}
		fragment, err := param.Render(value)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, fragment...)
	}
	return tokens, nil
}

func (d *Definitions) renderOptions(values map[string]any) ([]string, error) {
	var tokens []string
	for _, o := range d.options {
		value, ok := values[o.Name()]
		if !ok {
			continue
		}
		fragment, err := o.Render(value)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, fragment...)
	}
	return tokens, nil
}

// withKey records the caller supplied key on a validation error.
func withKey(err error, key string) error {
	if callerErr, ok := err.(*Error); ok && callerErr.Key == "" {
		copied := *callerErr
		copied.Key = key
		return &copied
	}
	return err
}
