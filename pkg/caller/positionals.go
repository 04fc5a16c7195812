package caller

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var errGlobbingWithoutSlots = errors.New("caller: globbing requires at least one positional parameter")

// Positionals is an ordered, immutable sequence of positional parameters.
// When globbing is enabled the final parameter absorbs any number of extra values.
type Positionals struct {
	params   []*Parameter
	globbing bool
}

// NewPositionals creates a positional sequence. It fails with
// ErrDuplicateDefinition if any name or alias is claimed twice, and when
// globbing is requested without a parameter to repeat.
func NewPositionals(params []*Parameter, globbing bool) (*Positionals, error) {
	if globbing && len(params) == 0 {
		return nil, errGlobbingWithoutSlots
	}
	seen := make(map[string]string)
	for _, p := range params {
		for _, key := range p.Keys() {
			if owner, exists := seen[key]; exists {
				return nil, &Error{
					Kind:  ErrDuplicateDefinition,
					Param: p.Name(),
					Key:   key,
					Msg:   fmt.Sprintf("already used by positional %q", owner),
				}
			}
			seen[key] = p.Name()
		}
	}
	return &Positionals{params: slices.Clone(params), globbing: globbing}, nil
}

// Params returns a copy of the declared parameters.
func (ps *Positionals) Params() []*Parameter { return slices.Clone(ps.params) }

// Len returns the number of declared slots.
func (ps *Positionals) Len() int { return len(ps.params) }

// Globbing reports whether the final slot repeats indefinitely.
func (ps *Positionals) Globbing() bool { return ps.globbing }

// Keys returns every name and alias in declaration order.
func (ps *Positionals) Keys() []string {
	var keys []string
	for _, p := range ps.params {
		keys = append(keys, p.Keys()...)
	}
	return keys
}

// Index returns the slot index of the first parameter answering to key.
func (ps *Positionals) Index(key string) (int, bool) {
	for i, p := range ps.params {
		if slices.Contains(p.Keys(), key) {
			return i, true
		}
	}
	return -1, false
}

// Slots yields each declared parameter once, in order. With globbing the
// final parameter is then yielded forever, so callers must stop pulling
// when they run out of values.
func (ps *Positionals) Slots() iter.Seq[*Parameter] {
	return func(yield func(*Parameter) bool) {
		for _, p := range ps.params {
			if !yield(p) {
				return
			}
		}
		if !ps.globbing || len(ps.params) == 0 {
			return
		}
		last := ps.params[len(ps.params)-1]
		for yield(last) {
		}
	}
}

// MinCount is the number of required parameters. Required parameters are
// assumed to form a prefix of the sequence.
func (ps *Positionals) MinCount() int {
	n := 0
	for _, p := range ps.params {
		if p.IsRequired() {
			n++
		}
	}
	return n
}

// MaxCount is the number of declared slots; ok is false when unbounded.
func (ps *Positionals) MaxCount() (n int, ok bool) {
	if ps.globbing {
		return 0, false
	}
	return len(ps.params), true
}

// ValidateCount fails if n positional values cannot fill the sequence.
func (ps *Positionals) ValidateCount(n int) error {
	if most, bounded := ps.MaxCount(); bounded && n > most {
		return &Error{Kind: ErrTooManyPositionals, Msg: fmt.Sprintf("got %d, accept at most %d", n, most)}
	}
	if least := ps.MinCount(); n < least {
		return &Error{Kind: ErrTooFewPositionals, Msg: fmt.Sprintf("got %d, need at least %d", n, least)}
	}
	return nil
}
