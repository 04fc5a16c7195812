package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"appcaller/internal/catalog"
	"appcaller/internal/logger"
)

// HelpService renders tool descriptions as markdown help pages using Glamour.
type HelpService struct {
	initialized bool
	wordWrap    int
	renderer    *glamour.TermRenderer
}

// NewHelpService creates a new HelpService instance.
func NewHelpService() *HelpService {
	return &HelpService{wordWrap: 80}
}

// Name returns the service name "help" for registration.
func (h *HelpService) Name() string {
	return "help"
}

// Initialize creates the terminal renderer. Terminals without color support
// get the plain "notty" style.
func (h *HelpService) Initialize() error {
	style := glamour.WithAutoStyle()
	if !h.IsColorSupported() {
		style = glamour.WithStylePath("notty")
	}
	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(h.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	h.renderer = renderer
	h.initialized = true
	logger.Debug("HelpService initialized", "color", h.IsColorSupported())
	return nil
}

// IsColorSupported returns true if the terminal supports colors.
func (h *HelpService) IsColorSupported() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}

// Render returns the help page of a tool. With plain set the markdown
// source is returned unrendered.
func (h *HelpService) Render(tool *catalog.Tool, plain bool) (string, error) {
	if !h.initialized {
		return "", fmt.Errorf("help service not initialized")
	}

	markdown := Markdown(tool)
	if plain {
		return markdown, nil
	}
	rendered, err := h.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render help for %s: %w", tool.Name, err)
	}
	return rendered, nil
}

// Markdown builds the markdown help page of a tool.
func Markdown(tool *catalog.Tool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", tool.Description)
	}
	fmt.Fprintf(&b, "**Command:** `%s`\n\n", tool.Command)

	if len(tool.Positionals) > 0 {
		b.WriteString("## Positionals\n\n")
		b.WriteString("| # | Name | Aliases | Type | Required | Description |\n")
		b.WriteString("|---|------|---------|------|----------|-------------|\n")
		for i, p := range tool.Positionals {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
				i+1, p.Name, aliases(p), paramType(p), yesNo(p.Required), cell(p.Description))
		}
		b.WriteString("\n")
		if tool.Globbing {
			last := tool.Positionals[len(tool.Positionals)-1]
			fmt.Fprintf(&b, "`%s` accepts any number of values.\n\n", last.Name)
		}
	}

	if len(tool.Options) > 0 {
		b.WriteString("## Options\n\n")
		b.WriteString("| Name | Aliases | Type | Required | Renders as | Description |\n")
		b.WriteString("|------|---------|------|----------|------------|-------------|\n")
		for _, p := range tool.Options {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | `%s` | %s |\n",
				p.Name, aliases(p), paramType(p), yesNo(p.Required), rendersAs(p), cell(p.Description))
		}
		b.WriteString("\n")
	}

	var usage []string
	usage = append(usage, "caller run", tool.Name)
	for _, p := range tool.Options {
		if p.Required {
			usage = append(usage, fmt.Sprintf("--set %s=VALUE", p.Name))
		}
	}
	usage = append(usage, "--")
	for _, p := range tool.Positionals {
		if p.Required {
			usage = append(usage, strings.ToUpper(p.Name))
		} else {
			usage = append(usage, "["+strings.ToUpper(p.Name)+"]")
		}
	}
	if tool.Globbing && len(tool.Positionals) > 0 {
		usage = append(usage, "...")
	}
	fmt.Fprintf(&b, "## Usage\n\n```\n%s\n```\n", strings.Join(usage, " "))

	return b.String()
}

func aliases(p catalog.Param) string {
	if len(p.Aliases) == 0 {
		return "-"
	}
	return strings.Join(p.Aliases, ", ")
}

func paramType(p catalog.Param) string {
	switch {
	case p.Type == catalog.TypeEnum:
		return "enum: " + strings.Join(p.Values, ", ")
	case p.Type != "":
		return p.Type
	case p.Flag:
		return catalog.TypeBool
	default:
		return catalog.TypeString
	}
}

func rendersAs(p catalog.Param) string {
	switch {
	case p.Format != "":
		return p.Format
	case p.Flag:
		return "--" + p.Name
	default:
		return "--" + p.Name + "={{.Value}}"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// cell escapes table separators in free text.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// GetHelpService retrieves the help service from the global registry.
func GetHelpService() (*HelpService, error) {
	return getTyped[*HelpService](GetGlobalRegistry(), "help")
}
