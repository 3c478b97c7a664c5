package config

import (
	"fmt"
	"strconv"
	"time"
)

// DurationSetting reads a duration written as a string ("5s") or as a number of seconds.
// A missing or null setting yields zero.
func DurationSetting(store Store, section, key string) (time.Duration, error) {
	value, ok := store.Setting(section, key)
	if !ok || value == nil {
		return 0, nil
	}

	if str, isString := value.(string); isString {
		duration, err := time.ParseDuration(str)
		if err != nil {
			return 0, fmt.Errorf("%w: %s.%s: %w", ErrInvalidSetting, section, key, err)
		}

		return duration, nil
	}

	seconds, err := toFloat(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s.%s: %w", ErrInvalidSetting, section, key, err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// NumberSetting reads a numeric setting. Numeric strings are accepted.
func NumberSetting(store Store, section, key string) (float64, bool, error) {
	value, ok := store.Setting(section, key)
	if !ok || value == nil {
		return 0, false, nil
	}

	number, err := toFloat(value)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s.%s: %w", ErrInvalidSetting, section, key, err)
	}

	return number, true, nil
}

func toFloat(value any) (float64, error) {
	switch typed := value.(type) {
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	case float64:
		return typed, nil
	case string:
		return strconv.ParseFloat(typed, 64) //nolint:wrapcheck
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
}
