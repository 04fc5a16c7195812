package services

import (
	"fmt"

	"appcaller/internal/catalog"
	"appcaller/internal/data/embedded"
	"appcaller/internal/logger"
)

// CatalogService provides the tools known to appcaller: the embedded
// catalog plus any catalog directories from the configuration.
type CatalogService struct {
	initialized bool
	dirs        []string
	catalog     *catalog.Catalog
}

// NewCatalogService creates a CatalogService reading the given extra directories.
func NewCatalogService(dirs ...string) *CatalogService {
	return &CatalogService{dirs: dirs}
}

// Name returns the service name "catalog" for registration.
func (c *CatalogService) Name() string {
	return "catalog"
}

// Initialize loads the embedded tools and then every configured directory.
// A tool name defined twice is an error.
func (c *CatalogService) Initialize() error {
	cat := catalog.New()
	if err := cat.LoadFS(embedded.ToolsFS, embedded.ToolsDir); err != nil {
		return fmt.Errorf("failed to load embedded tools: %w", err)
	}
	for _, dir := range c.dirs {
		if err := cat.LoadDir(dir); err != nil {
			return fmt.Errorf("failed to load catalog directory %s: %w", dir, err)
		}
	}

	c.catalog = cat
	c.initialized = true
	logger.Debug("CatalogService initialized", "tools", cat.Len(), "dirs", c.dirs)
	return nil
}

// List returns every tool sorted by name.
func (c *CatalogService) List() ([]*catalog.Tool, error) {
	if !c.initialized {
		return nil, fmt.Errorf("catalog service not initialized")
	}
	return c.catalog.Tools(), nil
}

// Get returns the named tool.
func (c *CatalogService) Get(name string) (*catalog.Tool, error) {
	if !c.initialized {
		return nil, fmt.Errorf("catalog service not initialized")
	}
	tool, ok := c.catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return tool, nil
}

// GetCatalogService retrieves the catalog service from the global registry.
func GetCatalogService() (*CatalogService, error) {
	return getTyped[*CatalogService](GetGlobalRegistry(), "catalog")
}
