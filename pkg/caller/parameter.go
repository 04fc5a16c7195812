package caller

import "slices"

// Kind identifies how a parameter appears on the command line.
type Kind int

const (
	// KindPositional parameters are identified by their position
	KindPositional Kind = iota
	// KindOption parameters are identified by name
	KindOption
	// KindFlag parameters are options that render only when their value is truthy
	KindFlag
)

// String returns the string representation of a parameter kind.
func (k Kind) String() string {
	switch k {
	case KindPositional:
		return "positional"
	case KindOption:
		return "option"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Parameter describes a single positional slot or named option.
// Parameters are immutable once constructed and may be shared between
// several Definitions.
type Parameter struct {
	name        string
	aliases     []string
	checker     Checker
	required    bool
	kind        Kind
	renderer    Renderer
	description string
	tags        []string
}

// ParameterOption configures a Parameter at construction.
type ParameterOption func(*Parameter)

// WithAliases adds alternate names usable in named lookups.
func WithAliases(aliases ...string) ParameterOption {
	return func(p *Parameter) { p.aliases = append(p.aliases, aliases...) }
}

// WithChecker sets the value checker.
func WithChecker(checker Checker) ParameterOption {
	return func(p *Parameter) { p.checker = checker }
}

// Required marks the parameter as required at compile time.
func Required() ParameterOption {
	return func(p *Parameter) { p.required = true }
}

// WithRenderer replaces the default renderer.
func WithRenderer(renderer Renderer) ParameterOption {
	return func(p *Parameter) { p.renderer = renderer }
}

// WithDescription sets the help text.
func WithDescription(description string) ParameterOption {
	return func(p *Parameter) { p.description = description }
}

// WithTags labels the parameter, e.g. "input", "output", "file".
func WithTags(tags ...string) ParameterOption {
	return func(p *Parameter) { p.tags = append(p.tags, tags...) }
}

// NewPositional creates a positional parameter rendered as its bare value.
func NewPositional(name string, opts ...ParameterOption) *Parameter {
	return newParameter(name, KindPositional, positionalRenderer, Identity, opts)
}

// NewOption creates a named option rendered as --name=value.
func NewOption(name string, opts ...ParameterOption) *Parameter {
	return newParameter(name, KindOption, optionRenderer, Identity, opts)
}

// NewFlag creates a boolean option rendered as --name when its value is
// truthy and not at all otherwise.
func NewFlag(name string, opts ...ParameterOption) *Parameter {
	return newParameter(name, KindFlag, flagRenderer, Bool(), opts)
}

func newParameter(name string, kind Kind, renderer Renderer, checker Checker, opts []ParameterOption) *Parameter {
	p := &Parameter{
		name:     name,
		kind:     kind,
		renderer: renderer,
		checker:  checker,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.checker == nil {
		p.checker = Identity
	}
	if p.renderer == nil {
		p.renderer = renderer
	}
	return p
}

// Name returns the canonical name.
func (p *Parameter) Name() string { return p.name }

// Aliases returns a copy of the alternate names.
func (p *Parameter) Aliases() []string { return slices.Clone(p.aliases) }

// Keys returns the name followed by the aliases.
func (p *Parameter) Keys() []string {
	return append([]string{p.name}, p.aliases...)
}

// Kind returns how the parameter appears on the command line.
func (p *Parameter) Kind() Kind { return p.kind }

// IsRequired reports whether omitting the parameter is an error.
func (p *Parameter) IsRequired() bool { return p.required }

// IsFlag reports whether the parameter renders nothing for falsy values.
func (p *Parameter) IsFlag() bool { return p.kind == KindFlag }

// Description returns the help text.
func (p *Parameter) Description() string { return p.description }

// Tags returns a copy of the labels.
func (p *Parameter) Tags() []string { return slices.Clone(p.tags) }

// HasTag reports whether the parameter carries tag.
func (p *Parameter) HasTag(tag string) bool { return slices.Contains(p.tags, tag) }

// Check validates raw with the parameter's checker.
func (p *Parameter) Check(raw any) (any, error) {
	value, err := p.checker(raw)
	if err != nil {
		return nil, &Error{Kind: ErrValidation, Param: p.name, Value: raw, Err: err}
	}
	return value, nil
}

// Render renders a checked value. Flags render an empty fragment for falsy
// values; any other parameter rejects a nil value with ErrValidation.
func (p *Parameter) Render(checked any) ([]string, error) {
	if p.kind == KindFlag && !Truthy(checked) {
		return nil, nil
	}
	if checked == nil {
		return nil, &Error{Kind: ErrValidation, Param: p.name, Msg: "value is nil"}
	}
	tokens, err := p.renderer(RenderContext{Name: p.name, Aliases: p.Aliases(), Value: checked})
	if err != nil {
		return nil, &Error{Kind: ErrValidation, Param: p.name, Value: checked, Msg: "cannot render", Err: err}
	}
	return tokens, nil
}

// ToArgs checks and renders raw in one step.
func (p *Parameter) ToArgs(raw any) ([]string, error) {
	value, err := p.Check(raw)
	if err != nil {
		return nil, err
	}
	return p.Render(value)
}
