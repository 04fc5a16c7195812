// Package services holds the appcaller services: tool catalogs, help
// rendering and tool invocation. Services are registered in a Registry and
// initialized in registration order.
package services

import (
	"fmt"
	"sync"

	"appcaller/internal/logger"
	"appcaller/pkg/callertypes"
)

// Registry manages service registration and lifecycle for appcaller services.
type Registry struct {
	mu       sync.RWMutex
	services map[string]callertypes.Service
	order    []string
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]callertypes.Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service callertypes.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	r.order = append(r.order, name)
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (callertypes.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// InitializeAll initializes all registered services in registration order,
// so a service may rely on the services registered before it.
func (r *Registry) InitializeAll() error {
	r.mu.RLock()
	ordered := make([]callertypes.Service, 0, len(r.order))
	for _, name := range r.order {
		ordered = append(ordered, r.services[name])
	}
	r.mu.RUnlock()

	// Services may look up other services while initializing
	for _, service := range ordered {
		name := service.Name()
		if err := service.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize service %s: %w", name, err)
		}
		logger.ServiceOperation(name, "initialize")
	}

	return nil
}

// GetAllServices returns a copy of all registered services.
func (r *Registry) GetAllServices() map[string]callertypes.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]callertypes.Service, len(r.services))
	for name, service := range r.services {
		result[name] = service
	}

	return result
}

// getTyped fetches a service and asserts its concrete type.
func getTyped[T callertypes.Service](r *Registry, name string) (T, error) {
	var zero T
	service, err := r.GetService(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has unexpected type %T", name, service)
	}
	return typed, nil
}

// GlobalRegistry is the global service registry instance used throughout appcaller.
var GlobalRegistry = NewRegistry()

// globalRegistryMu protects access to the GlobalRegistry variable itself
var globalRegistryMu sync.RWMutex

// GetGlobalRegistry returns the global service registry instance in a thread-safe manner
func GetGlobalRegistry() *Registry {
	globalRegistryMu.RLock()
	defer globalRegistryMu.RUnlock()
	return GlobalRegistry
}

// SetGlobalRegistry sets the global service registry instance in a thread-safe manner
func SetGlobalRegistry(registry *Registry) {
	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()
	GlobalRegistry = registry
}
