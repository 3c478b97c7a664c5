package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0xalexb/hjarta-hiera/backend"
	"github.com/0xalexb/hjarta-hiera/config"
	"github.com/0xalexb/hjarta-hiera/hierarchy"
	"github.com/0xalexb/hjarta-hiera/interpolate"
	"github.com/0xalexb/hjarta-hiera/scope"
)

// Observer is notified about backend activity.
type Observer interface {
	BackendCreated(name string)
	BackendLookup(name string, found bool, err error, elapsed time.Duration)
}

// Result describes the outcome of a lookup.
type Result struct {
	// Value is the answer, or the interpolated default when Found is false.
	Value any
	// Backend names the backend that answered; empty when Found is false.
	Backend string
	// Found reports whether a backend answered.
	Found bool
}

// Dispatcher resolves keys against the configured backends.
type Dispatcher struct {
	store    config.Store
	registry *backend.Registry
	cache    *backend.Cache
	sources  *hierarchy.Builder
	logger   *slog.Logger
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithObserver registers an observer for backend activity.
func WithObserver(observer Observer) Option {
	return func(d *Dispatcher) {
		d.observer = observer
	}
}

// WithCache replaces the instance cache, e.g. to share it with a shutdown hook.
func WithCache(cache *backend.Cache) Option {
	return func(d *Dispatcher) {
		d.cache = cache
	}
}

// New creates a Dispatcher over the given store and backend registry.
func New(store config.Store, registry *backend.Registry, opts ...Option) *Dispatcher {
	dispatcher := &Dispatcher{
		store:    store,
		registry: registry,
		cache:    backend.NewCache(),
		sources:  hierarchy.NewBuilder(store),
		logger:   slog.Default(),
		observer: nil,
	}

	for _, apply := range opts {
		apply(dispatcher)
	}

	return dispatcher
}

// Lookup returns the first answer any backend gives for key, or def interpolated against sc.
// A nil default yields nil. resolution is passed to each backend untouched.
func (d *Dispatcher) Lookup(
	ctx context.Context, key string, def any, sc scope.Scope, orderOverride string, resolution backend.ResolutionType,
) (any, error) {
	result, err := d.Resolve(ctx, key, def, sc, orderOverride, resolution)
	if err != nil {
		return nil, err
	}

	return result.Value, nil
}

// Resolve is Lookup reporting which backend answered.
func (d *Dispatcher) Resolve(
	ctx context.Context, key string, def any, sc scope.Scope, orderOverride string, resolution backend.ResolutionType,
) (Result, error) {
	for _, name := range d.store.Backends() {
		factory, ok := d.registry.Factory(name)
		if !ok {
			continue
		}

		instance, created, err := d.cache.Get(name, factory)
		if err != nil {
			return Result{}, err //nolint:wrapcheck // carries the backend name already
		}

		if created {
			d.logger.Debug("backend created", slog.String("backend", name))

			if d.observer != nil {
				d.observer.BackendCreated(name)
			}
		}

		start := time.Now()
		answer, err := instance.Lookup(ctx, key, sc, orderOverride, resolution)
		found := err == nil && backend.Found(answer)

		if d.observer != nil {
			d.observer.BackendLookup(name, found, err, time.Since(start))
		}

		if err != nil {
			return Result{}, fmt.Errorf("backend %q: %w", name, err)
		}

		if found {
			d.logger.Debug("backend answered", slog.String("backend", name), slog.String("key", key))

			return Result{Value: answer, Backend: name, Found: true}, nil
		}
	}

	value, err := interpolate.ExpandValue(def, sc, nil)
	if err != nil {
		return Result{}, fmt.Errorf("default of %q: %w", key, err)
	}

	return Result{Value: value, Backend: "", Found: false}, nil
}

// DataSources calls fn for every interpolated, non-empty data source name.
func (d *Dispatcher) DataSources(sc scope.Scope, override string, explicit []string, fn func(source string) error) error {
	return d.sources.DataSources(sc, override, explicit, fn) //nolint:wrapcheck
}

// Datadir returns the interpolated data directory of a backend.
func (d *Dispatcher) Datadir(backendName string, sc scope.Scope) (string, error) {
	return d.sources.Datadir(backendName, sc) //nolint:wrapcheck
}

// ParseString interpolates tmpl against sc, falling back to extra for unresolved names.
func (d *Dispatcher) ParseString(tmpl string, sc, extra scope.Scope) (string, error) {
	return interpolate.Expand(tmpl, sc, extra) //nolint:wrapcheck
}
