package caller

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// RenderContext is the substitution context passed to a Renderer.
type RenderContext struct {
	Name    string
	Aliases []string
	Value   any
}

// Renderer turns a checked value into its command line fragment.
// A fragment is zero or more argv tokens; an empty fragment contributes nothing.
type Renderer func(ctx RenderContext) ([]string, error)

var (
	positionalRenderer = MustTemplate("{{.Value}}")
	optionRenderer     = MustTemplate("--{{.Name}}={{.Value}}")
	flagRenderer       = MustTemplate("--{{.Name}}")
)

// Template returns a Renderer built from a text/template pattern.
//
// The pattern is split into words using shell quoting rules before parsing,
// and each word renders to exactly one token. "--{{.Name}}={{.Value}}" renders
// one token, "-f {{ .Value }}" renders two, and a value containing spaces is
// never split. Text inside {{ }} actions is kept verbatim.
func Template(pattern string) (Renderer, error) {
	words, err := splitPattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid render pattern %q: %w", pattern, err)
	}
	templates := make([]*template.Template, len(words))
	for i, word := range words {
		tmpl, err := template.New(fmt.Sprintf("word%d", i)).Option("missingkey=error").Parse(word)
		if err != nil {
			return nil, fmt.Errorf("invalid render pattern %q: %w", pattern, err)
		}
		templates[i] = tmpl
	}
	return func(ctx RenderContext) ([]string, error) {
		tokens := make([]string, 0, len(templates))
		for _, tmpl := range templates {
			var b strings.Builder
			if err := tmpl.Execute(&b, ctx); err != nil {
				return nil, err
			}
			tokens = append(tokens, b.String())
		}
		return tokens, nil
	}, nil
}

// MustTemplate is like Template but panics if the pattern is invalid.
func MustTemplate(pattern string) Renderer {
	r, err := Template(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// Tokens returns a Renderer that always renders the given tokens,
// such as a switch that takes no value.
func Tokens(tokens ...string) Renderer {
	return func(RenderContext) ([]string, error) {
		return append([]string(nil), tokens...), nil
	}
}

var errUnterminatedQuote = errors.New("unterminated quoted string")

// splitPattern splits a render pattern into words. Outside actions it follows
// shell rules for whitespace, quotes and backslashes. Inside an action
// everything up to the closing delimiter is copied unchanged, including
// whitespace and Go string literals.
func splitPattern(pattern string) ([]string, error) {
	var (
		words  []string
		word   strings.Builder
		inWord bool
		quote  byte
	)
	flush := func() {
		if inWord {
			words = append(words, word.String())
			word.Reset()
			inWord = false
		}
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		if strings.HasPrefix(pattern[i:], "{{") {
			i = copyAction(pattern, i, &word) - 1
			inWord = true
			continue
		}

		switch quote {
		case '\'':
			if c == '\'' {
				quote = 0
			} else {
				word.WriteByte(c)
			}
			continue
		case '"':
			switch {
			case c == '"':
				quote = 0
			case c == '\\' && i+1 < len(pattern) && strings.IndexByte(`"\$`+"`", pattern[i+1]) >= 0:
				i++
				word.WriteByte(pattern[i])
			default:
				word.WriteByte(c)
			}
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
			flush()
		case '\'', '"':
			quote = c
			inWord = true
		case '\\':
			inWord = true
			if i+1 < len(pattern) {
				i++
				word.WriteByte(pattern[i])
			}
		default:
			inWord = true
			word.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	flush()
	return words, nil
}

// copyAction copies the action starting at pattern[start] into word and
// returns the index just past its closing delimiter. An action without one
// is copied to the end of the pattern and left for the template parser to
// reject.
func copyAction(pattern string, start int, word *strings.Builder) int {
	var literal byte
	i := start + 2
	for ; i < len(pattern); i++ {
		c := pattern[i]
		if literal != 0 {
			switch {
			case c == '\\' && literal != '`':
				i++
			case c == literal:
				literal = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '`' || c == '\'':
			literal = c
		case strings.HasPrefix(pattern[i:], "}}"):
			word.WriteString(pattern[start : i+2])
			return i + 2
		}
	}
	word.WriteString(pattern[start:])
	return len(pattern)
}
