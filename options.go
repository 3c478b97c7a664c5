package hiera

import (
	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-hiera/listener"
)

// Options holds configuration settings for the application.
type Options struct {
	// Modules replaces the default module set when non-empty.
	Modules []fx.Option
	// ConfigPath is the hiera configuration file.
	ConfigPath string
	// ConfigSection is a colon separated path to the hiera document inside ConfigPath.
	ConfigSection string
	// ListenerOptions override the server section of the configuration.
	ListenerOptions []listener.Option
	LogLevel        string
	LogFormat       string
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithModules replaces the default modules.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithConfigFile sets the hiera configuration file.
func WithConfigFile(path string) Option {
	return func(opts *Options) {
		opts.ConfigPath = path
	}
}

// WithConfigSection reads the hiera document from a nested section, e.g. "services:hiera".
func WithConfigSection(section string) Option {
	return func(opts *Options) {
		opts.ConfigSection = section
	}
}

// WithListener overrides listener settings from the configuration file.
func WithListener(opts ...listener.Option) Option {
	return func(o *Options) {
		o.ListenerOptions = append(o.ListenerOptions, opts...)
	}
}

// WithLogLevel sets the log level for the application.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info" unless the configuration's logging section says otherwise.
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFormat selects "json" (default) or "text" log output.
func WithLogFormat(format string) Option {
	return func(opts *Options) {
		opts.LogFormat = format
	}
}
