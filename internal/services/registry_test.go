package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appcaller/pkg/callertypes"
)

// MockService records its initialization for registry tests.
type MockService struct {
	name             string
	initializeCalled bool
	initializeError  error
	onInitialize     func()
}

func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

func (m *MockService) Name() string {
	return m.name
}

func (m *MockService) Initialize() error {
	m.initializeCalled = true
	if m.onInitialize != nil {
		m.onInitialize()
	}
	return m.initializeError
}

// withRegistry installs a fresh global registry for the duration of a test.
func withRegistry(t *testing.T) *Registry {
	t.Helper()
	original := GetGlobalRegistry()
	registry := NewRegistry()
	SetGlobalRegistry(registry)
	t.Cleanup(func() { SetGlobalRegistry(original) })
	return registry
}

func TestRegistry_RegisterService(t *testing.T) {
	registry := NewRegistry()
	service1 := NewMockService("duplicate")

	require.NoError(t, registry.RegisterService(service1))
	err := registry.RegisterService(NewMockService("duplicate"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "service duplicate already registered")

	retrieved, err := registry.GetService("duplicate")
	require.NoError(t, err)
	assert.Same(t, service1, retrieved)
}

func TestRegistry_GetService(t *testing.T) {
	registry := NewRegistry()
	service := NewMockService("test")
	require.NoError(t, registry.RegisterService(service))

	tests := []struct {
		name        string
		serviceName string
		wantErr     bool
		wantService callertypes.Service
	}{
		{name: "get existing service", serviceName: "test", wantService: service},
		{name: "get non-existing service", serviceName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retrieved, err := registry.GetService(tt.serviceName)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "not found")
				assert.Nil(t, retrieved)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantService, retrieved)
		})
	}
}

func TestRegistry_InitializeAll_Order(t *testing.T) {
	registry := NewRegistry()
	var order []string
	for _, name := range []string{"c", "a", "b"} {
		service := NewMockService(name)
		service.onInitialize = func() { order = append(order, name) }
		require.NoError(t, registry.RegisterService(service))
	}

	require.NoError(t, registry.InitializeAll())
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestRegistry_InitializeAll_WithError(t *testing.T) {
	registry := NewRegistry()
	service1 := NewMockService("service1")
	service2 := NewMockService("service2")
	service3 := NewMockService("service3")
	service2.initializeError = errors.New("initialization failed")

	for _, s := range []*MockService{service1, service2, service3} {
		require.NoError(t, registry.RegisterService(s))
	}

	err := registry.InitializeAll()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize service service2")
	assert.Contains(t, err.Error(), "initialization failed")
	assert.True(t, service1.initializeCalled)
	assert.False(t, service3.initializeCalled)
}

func TestRegistry_InitializeAll_NestedLookup(t *testing.T) {
	registry := withRegistry(t)
	dependency := NewMockService("dependency")
	dependent := NewMockService("dependent")
	dependent.onInitialize = func() {
		_, err := GetGlobalRegistry().GetService("dependency")
		assert.NoError(t, err)
	}
	require.NoError(t, registry.RegisterService(dependency))
	require.NoError(t, registry.RegisterService(dependent))

	assert.NoError(t, registry.InitializeAll())
}

func TestRegistry_GetAllServices(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(NewMockService("service1")))

	allServices := registry.GetAllServices()
	assert.Len(t, allServices, 1)

	allServices["new_service"] = NewMockService("new_service")
	_, err := registry.GetService("new_service")
	assert.Error(t, err)
}

func TestRegistry_GetTyped(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(NewMockService("catalog")))

	_, err := getTyped[*CatalogService](registry, "catalog")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected type")

	mock, err := getTyped[*MockService](registry, "catalog")
	require.NoError(t, err)
	assert.Equal(t, "catalog", mock.Name())

	_, err = getTyped[*MockService](registry, "missing")
	assert.Error(t, err)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	numGoroutines := 10
	servicesPerGoroutine := 5

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < servicesPerGoroutine; j++ {
				assert.NoError(t, registry.RegisterService(NewMockService(fmt.Sprintf("service_%d_%d", id, j))))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, registry.GetAllServices(), numGoroutines*servicesPerGoroutine)
	assert.NoError(t, registry.InitializeAll())
}
