package interpolate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/0xalexb/hjarta-hiera/scope"
)

// MaxPasses bounds the substitutions whose value may form new placeholders, i.e. values
// containing '%', '{' or '}'. Other substitutions always shrink the set of placeholders
// and are not counted, so templates with any number of distinct variables expand.
const MaxPasses = 128

// MaxLength bounds the size of a partially expanded template.
const MaxLength = 1 << 20

// ErrExpansionLimit is returned when a template keeps producing placeholders after MaxPasses re-expansions.
var ErrExpansionLimit = errors.New("interpolation pass limit exceeded")

var placeholder = regexp.MustCompile(`%\{(.+?)\}`)

// Expand replaces every %{name} placeholder in tmpl.
func Expand(tmpl string, sc, extra scope.Scope) (string, error) {
	result := tmpl

	rescans := 0

	for {
		match := placeholder.FindStringSubmatch(result)
		if match == nil {
			return result, nil
		}

		value := resolve(match[1], sc, extra)

		if strings.ContainsAny(value, "%{}") {
			if rescans >= MaxPasses {
				return result, fmt.Errorf("%w: %q", ErrExpansionLimit, tmpl)
			}

			rescans++
		}

		result = strings.ReplaceAll(result, match[0], value)

		if len(result) > MaxLength {
			return "", fmt.Errorf("%w: %q grows past %d bytes", ErrExpansionLimit, tmpl, MaxLength)
		}
	}
}

// ExpandValue expands v when it is a string and returns any other value, nil included, unchanged.
func ExpandValue(v any, sc, extra scope.Scope) (any, error) {
	str, ok := v.(string)
	if !ok {
		return v, nil
	}

	return Expand(str, sc, extra)
}

// ExpandDeep walks lists and maps and expands every string it finds against sc.
// The input is never modified; containers are copied.
func ExpandDeep(v any, sc scope.Scope) (any, error) {
	switch typed := v.(type) {
	case string:
		return Expand(typed, sc, nil)
	case []any:
		out := make([]any, len(typed))

		for i, item := range typed {
			expanded, err := ExpandDeep(item, sc)
			if err != nil {
				return nil, err
			}

			out[i] = expanded
		}

		return out, nil
	case []string:
		out := make([]string, len(typed))

		for i, item := range typed {
			expanded, err := Expand(item, sc, nil)
			if err != nil {
				return nil, err
			}

			out[i] = expanded
		}

		return out, nil
	case map[string]any:
		out := make(map[string]any, len(typed))

		for key, item := range typed {
			expanded, err := ExpandDeep(item, sc)
			if err != nil {
				return nil, err
			}

			out[key] = expanded
		}

		return out, nil
	default:
		return v, nil
	}
}

func resolve(name string, sc, extra scope.Scope) string {
	if value, ok := scope.Get(sc, name); ok && value != "" {
		return value
	}

	if value, ok := scope.Get(extra, name); ok {
		return value
	}

	return ""
}
