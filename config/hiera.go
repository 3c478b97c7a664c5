package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultBackend is used when a document names no backends.
const DefaultBackend = "yaml"

// ErrEmptyBackendName is returned when the backends list contains an empty name.
var ErrEmptyBackendName = errors.New("backend name must not be empty")

// ErrNoBackends is returned when no backend is configured after defaults.
var ErrNoBackends = errors.New("no backends configured")

// ErrInvalidSetting is returned when a well-known setting has the wrong type.
var ErrInvalidSetting = errors.New("invalid setting")

// ErrInvalidList is returned when backends or hierarchy hold something other than strings.
var ErrInvalidList = errors.New("expected a string or a list of strings")

// Hiera is the hiera configuration document.
//
//	backends: [yaml, redis]
//	hierarchy:
//	  - "%{environment}"
//	  - common
//	yaml:
//	  datadir: /etc/hiera
//
// Keys may be written with a leading colon (":backends:") as in classic hiera files.
// Every top-level mapping other than backends and hierarchy becomes a settings section.
type Hiera struct {
	// BackendNames lists backends in lookup order.
	BackendNames []string
	// Levels holds the hierarchy templates. Nil means no hierarchy is configured.
	Levels []string
	// Sections holds per-backend settings keyed by section name.
	Sections map[string]map[string]any
}

// Backends implements Store.
func (h *Hiera) Backends() []string {
	return h.BackendNames
}

// Hierarchy implements Store.
func (h *Hiera) Hierarchy() ([]string, bool) {
	return h.Levels, h.Levels != nil
}

// Setting implements Store.
func (h *Hiera) Setting(section, key string) (any, bool) {
	values, ok := h.Sections[section]
	if !ok {
		return nil, false
	}

	value, ok := values[key]

	return value, ok
}

// StringSetting returns a setting only when it holds a non-empty string.
func StringSetting(store Store, section, key string) (string, bool) {
	value, ok := store.Setting(section, key)
	if !ok {
		return "", false
	}

	str, ok := value.(string)
	if !ok || str == "" {
		return "", false
	}

	return str, true
}

// UnmarshalYAML decodes the free-form hiera document.
func (h *Hiera) UnmarshalYAML(data []byte) error {
	var raw map[string]any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("decoding hiera document: %w", err)
	}

	h.BackendNames = nil
	h.Levels = nil
	h.Sections = make(map[string]map[string]any)

	for rawKey, value := range raw {
		key := normalizeKey(rawKey)

		switch key {
		case "backends":
			names, err := stringList(value)
			if err != nil {
				return fmt.Errorf("backends: %w", err)
			}

			h.BackendNames = names
		case "hierarchy":
			if value == nil {
				continue
			}

			levels, err := stringList(value)
			if err != nil {
				return fmt.Errorf("hierarchy: %w", err)
			}

			if levels == nil {
				levels = []string{}
			}

			h.Levels = levels
		default:
			section, ok := value.(map[string]any)
			if !ok {
				continue
			}

			normalized := make(map[string]any, len(section))
			for settingKey, settingValue := range section {
				normalized[normalizeKey(settingKey)] = settingValue
			}

			h.Sections[key] = normalized
		}
	}

	return nil
}

// SetDefaults falls back to the yaml backend when none is configured.
func (h *Hiera) SetDefaults() bool {
	if len(h.BackendNames) > 0 {
		return false
	}

	h.BackendNames = []string{DefaultBackend}

	return true
}

// Validate checks backend names and well-known settings.
func (h *Hiera) Validate() error {
	if len(h.BackendNames) == 0 {
		return ErrNoBackends
	}

	for i, name := range h.BackendNames {
		if name == "" {
			return fmt.Errorf("backends[%d]: %w", i, ErrEmptyBackendName)
		}
	}

	for section, values := range h.Sections {
		datadir, ok := values["datadir"]
		if !ok || datadir == nil {
			continue
		}

		if _, isString := datadir.(string); !isString {
			return fmt.Errorf("%w: %s.datadir must be a string, got %T", ErrInvalidSetting, section, datadir)
		}
	}

	return nil
}

func normalizeKey(key string) string {
	return strings.TrimPrefix(key, ":")
}

// stringList flattens a string or an arbitrarily nested list into an ordered list of strings.
func stringList(value any) ([]string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{typed}, nil
	case []any:
		var out []string

		for _, item := range typed {
			if item == nil {
				continue
			}

			nested, err := stringList(item)
			if err != nil {
				return nil, err
			}

			out = append(out, nested...)
		}

		return out, nil
	case map[string]any:
		return nil, fmt.Errorf("%w, got a mapping", ErrInvalidList)
	default:
		return []string{fmt.Sprint(typed)}, nil
	}
}
