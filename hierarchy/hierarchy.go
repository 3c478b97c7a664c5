// Package hierarchy builds the ordered list of data sources a backend searches and
// resolves the directory a backend reads its data from.
package hierarchy

import (
	"fmt"

	"github.com/0xalexb/hjarta-hiera/config"
	"github.com/0xalexb/hjarta-hiera/interpolate"
	"github.com/0xalexb/hjarta-hiera/scope"
)

const (
	// DefaultSource is searched when neither an explicit nor a configured hierarchy exists.
	DefaultSource = "common"

	// DefaultDatadir is used for backends without a datadir setting.
	DefaultDatadir = "/var/lib/hiera"

	datadirKey = "datadir"
)

// Builder derives data source names from the configuration store.
type Builder struct {
	store config.Store
}

// NewBuilder creates a Builder reading the hierarchy and backend settings from store.
func NewBuilder(store config.Store) *Builder {
	return &Builder{store: store}
}

// Sources returns the data source templates in search order, before interpolation.
//
// An explicit hierarchy replaces the configured one; a nil explicit hierarchy means none
// was given. A non-empty override is always searched first.
func (b *Builder) Sources(override string, explicit []string) []string {
	var base []string

	switch {
	case explicit != nil:
		base = explicit
	default:
		if levels, ok := b.store.Hierarchy(); ok {
			base = levels
		} else {
			base = []string{DefaultSource}
		}
	}

	sources := make([]string, 0, len(base)+1)
	if override != "" {
		sources = append(sources, override)
	}

	return append(sources, base...)
}

// DataSources interpolates every source template against sc and calls fn for each
// non-empty result, in order. Iteration stops at the first error returned by fn.
func (b *Builder) DataSources(sc scope.Scope, override string, explicit []string, fn func(source string) error) error {
	for _, template := range b.Sources(override, explicit) {
		source, err := interpolate.Expand(template, sc, nil)
		if err != nil {
			return fmt.Errorf("data source %q: %w", template, err)
		}

		if source == "" {
			continue
		}

		err = fn(source)
		if err != nil {
			return err
		}
	}

	return nil
}

// Resolve collects the interpolated data source names.
func (b *Builder) Resolve(sc scope.Scope, override string, explicit []string) ([]string, error) {
	var sources []string

	err := b.DataSources(sc, override, explicit, func(source string) error {
		sources = append(sources, source)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sources, nil
}

// Datadir returns the interpolated data directory of the named backend.
// Backends without a datadir setting use DefaultDatadir.
func (b *Builder) Datadir(backend string, sc scope.Scope) (string, error) {
	template, ok := config.StringSetting(b.store, backend, datadirKey)
	if !ok {
		template = DefaultDatadir
	}

	datadir, err := interpolate.Expand(template, sc, nil)
	if err != nil {
		return "", fmt.Errorf("datadir of %q: %w", backend, err)
	}

	return datadir, nil
}
