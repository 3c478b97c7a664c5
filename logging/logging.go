package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/0xalexb/hjarta-hiera/config"
)

// Section is the hiera configuration section holding logger settings.
const Section = "logging"

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	// Level is DEBUG, INFO, WARN or ERROR. Anything else means INFO.
	Level string
	// Format is FormatJSON or FormatText. Anything else means FormatJSON.
	Format string
}

// ConfigFrom reads the logging section of the hiera configuration.
func ConfigFrom(store config.Store) LoggerConfig {
	var cfg LoggerConfig

	if level, ok := config.StringSetting(store, Section, "level"); ok {
		cfg.Level = level
	}

	if format, ok := config.StringSetting(store, Section, "format"); ok {
		cfg.Format = format
	}

	return cfg
}

// Merge returns cfg with empty fields filled from fallback.
func (cfg LoggerConfig) Merge(fallback LoggerConfig) LoggerConfig {
	if cfg.Level == "" {
		cfg.Level = fallback.Level
	}

	if cfg.Format == "" {
		cfg.Format = fallback.Format
	}

	return cfg
}

// NewLogger creates a slog.Logger writing to w.
func NewLogger(config LoggerConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       parseLevel(config.Level),
		ReplaceAttr: nil,
	}

	if strings.EqualFold(config.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
