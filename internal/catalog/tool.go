// Package catalog loads tool descriptions written in YAML and compiles them
// into caller definitions.
package catalog

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"appcaller/internal/version"
	"appcaller/pkg/caller"
)

// Parameter types understood in catalog files.
const (
	TypeString       = "string"
	TypeInt          = "int"
	TypeFloat        = "float"
	TypeBool         = "bool"
	TypeEnum         = "enum"
	TypePath         = "path"
	TypeExistingPath = "existing_path"
)

// Param describes one parameter of a tool.
type Param struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Type        string   `yaml:"type,omitempty"`
	Required    bool     `yaml:"required,omitempty"`
	Flag        bool     `yaml:"flag,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Format      string   `yaml:"format,omitempty"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Pattern     string   `yaml:"pattern,omitempty"`
	Values      []string `yaml:"values,omitempty"`
}

// Tool is the YAML description of a wrapped program.
type Tool struct {
	Name             string  `yaml:"name"`
	Description      string  `yaml:"description,omitempty"`
	Command          string  `yaml:"command"`
	MinVersion       string  `yaml:"min_version,omitempty"`
	Globbing         bool    `yaml:"globbing,omitempty"`
	PositionalsFirst bool    `yaml:"positionals_first,omitempty"`
	Positionals      []Param `yaml:"positionals,omitempty"`
	Options          []Param `yaml:"options,omitempty"`

	// Source is the file or embedded name the tool was read from
	Source string `yaml:"-"`
}

// Parse decodes a single tool description. Unknown fields are rejected.
func Parse(data []byte, source string) (*Tool, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var tool Tool
	if err := decoder.Decode(&tool); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	tool.Source = source
	tool.normalize()
	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tool in %s: %w", source, err)
	}
	return &tool, nil
}

// NormalizeKey returns the NFKC form of a parameter key without surrounding
// whitespace, so keys typed with compatibility characters still match.
func NormalizeKey(key string) string {
	return strings.TrimSpace(norm.NFKC.String(key))
}

func (t *Tool) normalize() {
	t.Name = NormalizeKey(t.Name)
	for _, params := range [][]Param{t.Positionals, t.Options} {
		for i := range params {
			params[i].Name = NormalizeKey(params[i].Name)
			for j, alias := range params[i].Aliases {
				params[i].Aliases[j] = NormalizeKey(alias)
			}
			params[i].Type = strings.ToLower(strings.TrimSpace(params[i].Type))
		}
	}
}

// Validate checks the fields that parsing cannot.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if strings.TrimSpace(t.Command) == "" {
		return fmt.Errorf("tool %s: command is required", t.Name)
	}
	if err := version.RequireAtLeast(t.MinVersion); err != nil {
		return fmt.Errorf("tool %s: %w", t.Name, err)
	}
	for _, p := range t.Positionals {
		if p.Flag {
			return fmt.Errorf("tool %s: positional %s cannot be a flag", t.Name, p.Name)
		}
	}
	return nil
}

// Prefix splits the command into the command line prefix.
func (t *Tool) Prefix() (caller.Cmdline, error) {
	prefix, err := caller.ParseCommand(t.Command)
	if err != nil {
		return nil, fmt.Errorf("tool %s: invalid command %q: %w", t.Name, t.Command, err)
	}
	return prefix, nil
}

// Definitions compiles the tool into caller definitions.
func (t *Tool) Definitions() (*caller.Definitions, error) {
	positionals := make([]*caller.Parameter, 0, len(t.Positionals))
	for _, p := range t.Positionals {
		param, err := p.build(caller.KindPositional)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		positionals = append(positionals, param)
	}

	options := make([]*caller.Parameter, 0, len(t.Options))
	for _, p := range t.Options {
		kind := caller.KindOption
		if p.Flag {
			kind = caller.KindFlag
		}
		param, err := p.build(kind)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		options = append(options, param)
	}

	var opts []caller.DefinitionsOption
	if t.Globbing {
		opts = append(opts, caller.WithGlobbing())
	}
	if t.PositionalsFirst {
		opts = append(opts, caller.WithPositionalsFirst())
	}
	defs, err := caller.NewDefinitions(positionals, options, opts...)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.Name, err)
	}
	return defs, nil
}

func (p Param) build(kind caller.Kind) (*caller.Parameter, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%s parameter without a name", kind)
	}
	checker, err := p.checker(kind)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
	}

	opts := []caller.ParameterOption{
		caller.WithAliases(p.Aliases...),
		caller.WithChecker(checker),
		caller.WithDescription(p.Description),
		caller.WithTags(p.Tags...),
	}
	if p.Required {
		opts = append(opts, caller.Required())
	}
	if p.Format != "" {
		renderer, err := caller.Template(p.Format)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		opts = append(opts, caller.WithRenderer(renderer))
	}

	switch kind {
	case caller.KindPositional:
		return caller.NewPositional(p.Name, opts...), nil
	case caller.KindFlag:
		return caller.NewFlag(p.Name, opts...), nil
	default:
		return caller.NewOption(p.Name, opts...), nil
	}
}

// checker maps the declared type and constraints to a caller.Checker.
func (p Param) checker(kind caller.Kind) (caller.Checker, error) {
	typ := p.Type
	if typ == "" {
		typ = TypeString
		if kind == caller.KindFlag {
			typ = TypeBool
		}
	}

	var checks []caller.Checker
	switch typ {
	case TypeString:
		checks = append(checks, caller.String())
	case TypeInt:
		checks = append(checks, caller.Int())
	case TypeFloat:
		checks = append(checks, caller.Float())
	case TypeBool:
		checks = append(checks, caller.Bool())
	case TypeEnum:
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("enum type requires values")
		}
		checks = append(checks, caller.Enum(p.Values...))
	case TypePath:
		checks = append(checks, caller.Path())
	case TypeExistingPath:
		checks = append(checks, caller.ExistingPath())
	default:
		return nil, fmt.Errorf("unknown type '%s'", p.Type)
	}

	if p.Min != nil || p.Max != nil {
		if typ != TypeInt && typ != TypeFloat {
			return nil, fmt.Errorf("min/max require int or float type, got %s", typ)
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return nil, fmt.Errorf("min %g is greater than max %g", *p.Min, *p.Max)
		}
		checks = append(checks, caller.Range(p.Min, p.Max))
	}
	if p.Pattern != "" {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", p.Pattern, err)
		}
		checks = append(checks, caller.Pattern(re))
	}

	if len(checks) == 1 {
		return checks[0], nil
	}
	return caller.Chain(checks...), nil
}
