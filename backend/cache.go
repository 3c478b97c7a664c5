package backend

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrNilBackend is returned when a factory returns neither a backend nor an error.
var ErrNilBackend = errors.New("backend factory returned nil")

// Cache holds at most one live instance per backend name.
// Instances are never replaced; Reset and Close drop them all at once.
type Cache struct {
	mu        sync.RWMutex
	instances map[string]Backend
	group     singleflight.Group
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{instances: make(map[string]Backend)}
}

// Get returns the cached instance for name, constructing it with factory on first use.
// Concurrent first calls for the same name share one construction. created is true only
// for the caller whose factory call produced the instance. Construction errors are not
// cached; the next call tries again.
func (c *Cache) Get(name string, factory Factory) (instance Backend, created bool, err error) {
	if instance, ok := c.lookup(name); ok {
		return instance, false, nil
	}

	result, err, _ := c.group.Do(name, func() (any, error) {
		if instance, ok := c.lookup(name); ok {
			return instance, nil
		}

		instance, err := factory()
		if err != nil {
			return nil, fmt.Errorf("constructing backend %q: %w", name, err)
		}

		if instance == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilBackend, name)
		}

		c.mu.Lock()
		c.instances[name] = instance
		c.mu.Unlock()

		created = true

		return instance, nil
	})
	if err != nil {
		return nil, false, err //nolint:wrapcheck // already wrapped inside the flight
	}

	instance, _ = result.(Backend)

	return instance, created, nil
}

// Len returns the number of live instances.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.instances)
}

// Reset drops every instance without closing it.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.instances = make(map[string]Backend)
}

// Close closes every instance implementing io.Closer and empties the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	instances := c.instances
	c.instances = make(map[string]Backend)
	c.mu.Unlock()

	var errs []error

	for name, instance := range instances {
		closer, ok := instance.(io.Closer)
		if !ok {
			continue
		}

		err := closer.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("closing backend %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Cache) lookup(name string) (Backend, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	instance, ok := c.instances[name]

	return instance, ok
}
