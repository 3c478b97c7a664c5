package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xalexb/hjarta-hiera/scope"
)

// ResolutionType tells a backend how to combine answers from several data sources.
type ResolutionType string

const (
	// Priority returns the answer of the first data source containing the key.
	Priority ResolutionType = "priority"
	// Array collects the answers of every data source into a list.
	Array ResolutionType = "array"
	// Hash merges map answers, higher priority sources winning on conflicts.
	Hash ResolutionType = "hash"
)

// ErrUnknownResolutionType is returned by ParseResolutionType for unsupported names.
var ErrUnknownResolutionType = errors.New("unknown resolution type")

// ParseResolutionType converts a name into a ResolutionType. An empty name means Priority.
func ParseResolutionType(name string) (ResolutionType, error) {
	switch ResolutionType(name) {
	case "", Priority:
		return Priority, nil
	case Array:
		return Array, nil
	case Hash:
		return Hash, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResolutionType, name)
	}
}

// Backend answers key lookups from one storage mechanism.
type Backend interface {
	// Lookup returns the answer for key, or nil when the backend has none.
	// orderOverride, when non-empty, is searched before the configured hierarchy.
	Lookup(ctx context.Context, key string, sc scope.Scope, orderOverride string, resolution ResolutionType) (any, error)
}

// Factory constructs a backend. It is called at most once per backend name.
type Factory func() (Backend, error)

// LookupFunc adapts a function to the Backend interface.
type LookupFunc func(ctx context.Context, key string, sc scope.Scope, orderOverride string, resolution ResolutionType) (any, error)

// Lookup calls f.
func (f LookupFunc) Lookup(
	ctx context.Context, key string, sc scope.Scope, orderOverride string, resolution ResolutionType,
) (any, error) {
	return f(ctx, key, sc, orderOverride, resolution)
}

// Found reports whether answer counts as an answer. Nil and the empty string do not.
func Found(answer any) bool {
	switch typed := answer.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	default:
		return true
	}
}
