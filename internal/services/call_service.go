package services

import (
	"context"
	"fmt"
	"strings"

	"appcaller/internal/catalog"
	"appcaller/internal/config"
	"appcaller/internal/executor"
	"appcaller/internal/logger"
	"appcaller/pkg/caller"
	"appcaller/pkg/callertypes"
)

// CallRequest describes one tool invocation requested from the command line.
type CallRequest struct {
	// Tool is the catalog name of the tool
	Tool string

	// Positionals are the positional values in order
	Positionals []string

	// Set holds key=value assignments for options or named positionals
	Set []string

	// AllowFailure returns a non-zero exit as a plain result
	AllowFailure bool
}

// CallService builds caller applications from catalog tools and runs them.
type CallService struct {
	initialized bool
	cfg         *config.Config
	executor    callertypes.Executor
	catalog     *CatalogService
}

// NewCallService creates a CallService. A nil executor selects the os/exec
// executor configured from cfg.
func NewCallService(cfg *config.Config, exec callertypes.Executor) *CallService {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &CallService{cfg: cfg, executor: exec}
}

// Name returns the service name "call" for registration.
func (s *CallService) Name() string {
	return "call"
}

// Initialize resolves the catalog service, which must be registered first.
func (s *CallService) Initialize() error {
	catalogService, err := GetCatalogService()
	if err != nil {
		return fmt.Errorf("call service requires the catalog service: %w", err)
	}
	if s.executor == nil {
		s.executor = executor.New(s.cfg.ExecutorOptions()...)
	}
	s.catalog = catalogService
	s.initialized = true
	return nil
}

// Prepare resolves the request into an App without running it.
func (s *CallService) Prepare(req CallRequest) (*caller.App, error) {
	if !s.initialized {
		return nil, fmt.Errorf("call service not initialized")
	}

	tool, err := s.catalog.Get(req.Tool)
	if err != nil {
		return nil, err
	}
	if s.cfg.PositionalsFirst && !tool.PositionalsFirst {
		override := *tool
		override.PositionalsFirst = true
		tool = &override
	}

	defs, err := tool.Definitions()
	if err != nil {
		return nil, err
	}
	prefix, err := tool.Prefix()
	if err != nil {
		return nil, err
	}
	named, err := ParseAssignments(req.Set)
	if err != nil {
		return nil, err
	}
	positionals := make([]any, len(req.Positionals))
	for i, value := range req.Positionals {
		positionals[i] = value
	}

	opts := []caller.AppOption{
		caller.WithExecutor(s.executor),
		caller.WithValues(positionals, named),
	}
	if req.AllowFailure || s.cfg.AllowFailure {
		opts = append(opts, caller.WithAllowFailure())
	}
	app, err := caller.NewApp(prefix, defs, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tool.Name, err)
	}
	return app, nil
}

// Cmdline compiles the request without running it.
func (s *CallService) Cmdline(req CallRequest) (caller.Cmdline, error) {
	app, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}
	cmdline, err := app.Cmdline()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Tool, err)
	}
	return cmdline, nil
}

// Run compiles and executes the request. On a non-zero exit the result is
// returned together with a *caller.ExitError unless failure is allowed.
func (s *CallService) Run(ctx context.Context, req CallRequest) (*callertypes.Result, error) {
	app, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}
	result, err := app.Run(ctx)
	if result != nil {
		logger.Info("Tool finished", "tool", req.Tool, "id", result.ID, "exit_code", result.ExitCode, "duration", result.Duration)
	}
	return result, err
}

// ParseAssignments parses key=value pairs. Keys are normalized the same way
// as catalog keys; a repeated key keeps the last value.
func ParseAssignments(assignments []string) (map[string]any, error) {
	named := make(map[string]any, len(assignments))
	for _, assignment := range assignments {
		key, value, ok := strings.Cut(assignment, "=")
		key = catalog.NormalizeKey(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", assignment)
		}
		named[key] = value
	}
	return named, nil
}

// GetCallService retrieves the call service from the global registry.
func GetCallService() (*CallService, error) {
	return getTyped[*CallService](GetGlobalRegistry(), "call")
}

// InitializeServices registers and initializes the appcaller services in the
// global registry. exec may be nil to use the configured os/exec executor.
func InitializeServices(cfg *config.Config, exec callertypes.Executor) error {
	if cfg == nil {
		cfg = &config.Config{}
	}
	registry := GetGlobalRegistry()

	// CatalogService first; CallService depends on it
	if err := registry.RegisterService(NewCatalogService(cfg.CatalogDirs...)); err != nil {
		return err
	}
	if err := registry.RegisterService(NewHelpService()); err != nil {
		return err
	}
	if err := registry.RegisterService(NewCallService(cfg, exec)); err != nil {
		return err
	}

	return registry.InitializeAll()
}
