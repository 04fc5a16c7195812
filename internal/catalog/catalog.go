package catalog

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"appcaller/internal/logger"
)

// Catalog is a set of tools indexed by name.
type Catalog struct {
	tools map[string]*Tool
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{tools: make(map[string]*Tool)}
}

// Add registers a tool. Tool names are unique across the catalog.
func (c *Catalog) Add(tool *Tool) error {
	if existing, ok := c.tools[tool.Name]; ok {
		return fmt.Errorf("duplicate tool %s in %s (already defined in %s)", tool.Name, tool.Source, existing.Source)
	}
	c.tools[tool.Name] = tool
	return nil
}

// Get returns the named tool.
func (c *Catalog) Get(name string) (*Tool, bool) {
	tool, ok := c.tools[NormalizeKey(name)]
	return tool, ok
}

// Names returns the sorted tool names.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.tools))
}

// Tools returns the tools sorted by name.
func (c *Catalog) Tools() []*Tool {
	tools := make([]*Tool, 0, len(c.tools))
	for _, name := range c.Names() {
		tools = append(tools, c.tools[name])
	}
	return tools
}

// Len returns the number of tools.
func (c *Catalog) Len() int { return len(c.tools) }

// LoadFS adds every .yaml and .yml file in dir of fsys, in name order.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		name := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := c.load(data, name); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir adds every tool file found in a directory on disk.
func (c *Catalog) LoadDir(dir string) error {
	return c.LoadFS(os.DirFS(dir), ".")
}

// LoadFile adds a single tool file from disk.
func (c *Catalog) LoadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return c.load(data, filepath.Clean(filename))
}

func (c *Catalog) load(data []byte, source string) error {
	tool, err := Parse(data, source)
	if err != nil {
		return err
	}
	if err := c.Add(tool); err != nil {
		return err
	}
	logger.Debug("Loaded tool", "tool", tool.Name, "source", source)
	return nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
