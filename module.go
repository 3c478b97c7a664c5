package hiera

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-hiera/backend"
	filebackend "github.com/0xalexb/hjarta-hiera/backend/file"
	redisbackend "github.com/0xalexb/hjarta-hiera/backend/redis"
	"github.com/0xalexb/hjarta-hiera/config"
	filefetcher "github.com/0xalexb/hjarta-hiera/config/fetcher/file"
	yamlparser "github.com/0xalexb/hjarta-hiera/config/parser/yaml"
	"github.com/0xalexb/hjarta-hiera/hierarchy"
	"github.com/0xalexb/hjarta-hiera/listener"
	"github.com/0xalexb/hjarta-hiera/logging"
	"github.com/0xalexb/hjarta-hiera/lookup"
	"github.com/0xalexb/hjarta-hiera/metrics"
	"github.com/0xalexb/hjarta-hiera/server"
)

const (
	// DefaultConfigPath is read when no configuration file is given.
	DefaultConfigPath = "/etc/hiera.yaml"
	// ListenerName names the API listener module and tags its http.Handler.
	ListenerName = "hiera"
)

// ConfigModule provides config.Store loaded from the YAML file at path.
// section selects a nested document, empty for the whole file.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func ConfigModule(path, section string) fx.Option {
	return fx.Module("config",
		fx.Provide(
			fx.Annotate(
				yamlparser.NewParser,
				fx.As(new(config.Parser)),
			),
		),
		fx.Provide(
			fx.Annotate(
				filefetcher.NewFetcher(path),
				fx.As(new(config.DataFetcher)),
			),
		),
		fx.Provide(config.Provider(new(config.Hiera), section)),
		fx.Provide(func(cfg *config.Hiera) config.Store { return cfg }),
	)
}

// LookupModule provides the dispatcher with the built-in backends, a shared instance cache
// closed on stop, and a metrics collector observing backend activity.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func LookupModule() fx.Option {
	return fx.Module("lookup",
		fx.Decorate(configuredLogger),
		fx.Provide(
			func() *metrics.Collector { return metrics.NewCollector(metrics.DefaultNamespace) },
			newCache,
			func(
				store config.Store, cache *backend.Cache, collector *metrics.Collector, logger *slog.Logger,
			) (*lookup.Dispatcher, error) {
				return NewDispatcher(store, cache, logger, lookup.WithObserver(collector))
			},
		),
	)
}

// APIModule serves the dispatcher over HTTP on the listener named ListenerName.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func APIModule(opts ...listener.Option) fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				newAPIHandler,
				fx.ResultTags(fmt.Sprintf(`name:"%s"`, ListenerName)),
			),
		),
		listener.NewModule(ListenerName, opts...),
	)
}

// LoadConfig reads and validates a hiera configuration file outside of Fx.
func LoadConfig(path, section string) (*config.Hiera, error) {
	fetcher, err := filefetcher.NewFetcher(path)()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return config.Provider(new(config.Hiera), section)(yamlparser.NewParser(), fetcher)
}

// NewRegistry registers the built-in backends: yaml and json data files, and redis.
func NewRegistry(store config.Store, sources *hierarchy.Builder, logger *slog.Logger) (*backend.Registry, error) {
	registry := backend.NewRegistry()

	builtins := []struct {
		name    string
		factory backend.Factory
	}{
		{name: string(filebackend.YAML), factory: filebackend.NewFactory(string(filebackend.YAML), filebackend.YAML, sources, logger)},
		{name: string(filebackend.JSON), factory: filebackend.NewFactory(string(filebackend.JSON), filebackend.JSON, sources, logger)},
		{name: "redis", factory: redisbackend.NewFactory("redis", store, sources, logger)},
	}

	for _, builtin := range builtins {
		err := registry.Register(builtin.name, builtin.factory)
		if err != nil {
			return nil, fmt.Errorf("registering %s backend: %w", builtin.name, err)
		}
	}

	return registry, nil
}

// NewDispatcher builds a dispatcher over the built-in backends sharing cache.
func NewDispatcher(
	store config.Store, cache *backend.Cache, logger *slog.Logger, opts ...lookup.Option,
) (*lookup.Dispatcher, error) {
	registry, err := NewRegistry(store, hierarchy.NewBuilder(store), logger)
	if err != nil {
		return nil, err
	}

	base := []lookup.Option{lookup.WithCache(cache), lookup.WithLogger(logger)}

	return lookup.New(store, registry, append(base, opts...)...), nil
}

func newCache(lifecycle fx.Lifecycle) *backend.Cache {
	cache := backend.NewCache()

	lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return cache.Close()
		},
	})

	return cache
}

func newAPIHandler(dispatcher *lookup.Dispatcher, collector *metrics.Collector, store config.Store) (http.Handler, error) {
	opts, err := server.OptionsFrom(store)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	opts.Metrics = collector.Handler()

	return server.NewHandler(dispatcher, opts), nil
}

// configuredLogger applies the configuration's logging section on top of the command line settings.
func configuredLogger(logger *slog.Logger, base logging.LoggerConfig, store config.Store) *slog.Logger {
	fromFile := logging.ConfigFrom(store)
	if fromFile == (logging.LoggerConfig{}) {
		return logger
	}

	return logging.NewLogger(base.Merge(fromFile), os.Stderr)
}
