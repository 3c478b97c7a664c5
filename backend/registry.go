package backend

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrDuplicateBackend is returned when a name is registered twice.
var ErrDuplicateBackend = errors.New("backend already registered")

// ErrNilFactory is returned when registering a nil factory.
var ErrNilFactory = errors.New("backend factory must not be nil")

// ErrEmptyName is returned when registering a backend without a name.
var ErrEmptyName = errors.New("backend name must not be empty")

// Registry maps backend names to their factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyName
	}

	if factory == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateBackend, name)
	}

	r.factories[name] = factory

	return nil
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]

	return factory, ok
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}
