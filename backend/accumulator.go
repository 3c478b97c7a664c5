package backend

import (
	"errors"
	"fmt"
	"maps"
)

// ErrTypeMismatch is returned when a hash lookup meets an answer that is not a map.
var ErrTypeMismatch = errors.New("type mismatch")

// Accumulator combines the answers a backend finds while walking its data sources.
//
//	acc := backend.NewAccumulator(resolution)
//	for each source containing key {
//	    done, err := acc.Add(answer)
//	    if err != nil || done { break }
//	}
//	return acc.Value(), nil
type Accumulator struct {
	resolution ResolutionType
	array      []any
	hash       map[string]any
	value      any
	found      bool
}

// NewAccumulator creates an Accumulator for the given resolution type.
// Unknown types behave like Priority.
func NewAccumulator(resolution ResolutionType) *Accumulator {
	return &Accumulator{resolution: resolution}
}

// Add records the answer of the next data source in priority order.
// done reports that further sources cannot change the result.
func (a *Accumulator) Add(answer any) (done bool, err error) {
	switch a.resolution {
	case Array:
		a.found = true

		switch typed := answer.(type) {
		case []any:
			a.array = append(a.array, typed...)
		case []string:
			for _, item := range typed {
				a.array = append(a.array, item)
			}
		default:
			a.array = append(a.array, answer)
		}

		return false, nil
	case Hash:
		typed, ok := answer.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: expected a map for hash resolution, got %T", ErrTypeMismatch, answer)
		}

		a.found = true

		if a.hash == nil {
			a.hash = make(map[string]any, len(typed))
		}

		for key, value := range typed {
			if _, exists := a.hash[key]; !exists {
				a.hash[key] = value
			}
		}

		return false, nil
	default:
		a.found = true
		a.value = answer

		return true, nil
	}
}

// Value returns the combined answer, or nil when nothing was added.
func (a *Accumulator) Value() any {
	if !a.found {
		return nil
	}

	switch a.resolution {
	case Array:
		return a.array
	case Hash:
		return maps.Clone(a.hash)
	default:
		return a.value
	}
}
