// Package hiera wires the lookup core, its built-in backends and the HTTP API into an Fx application.
package hiera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/0xalexb/hjarta-hiera/logging"
)

var errAppNotInitialized = errors.New("app not initialized")

// App is the lookup service.
type App struct {
	app *fx.App
}

// NewApp creates the service from opts. Without WithModules it loads the configuration
// from Options.ConfigPath and serves the lookup API.
func NewApp(opts ...Option) *App {
	options := Options{
		ConfigPath: DefaultConfigPath,
	}

	for _, apply := range opts {
		apply(&options)
	}

	return &App{
		app: configure(&options),
	}
}

func configure(options *Options) *fx.App {
	loggerConfig := logging.LoggerConfig{Level: options.LogLevel, Format: options.LogFormat}
	logger := createLogger(loggerConfig, os.Stderr)
	slog.SetDefault(logger)

	modules := options.Modules
	if len(modules) == 0 {
		modules = []fx.Option{
			ConfigModule(options.ConfigPath, options.ConfigSection),
			LookupModule(),
			APIModule(options.ListenerOptions...),
		}
	}

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Supply(loggerConfig),
		fx.Supply(logger),
		fx.Options(modules...),
	)
}

func createLogger(config logging.LoggerConfig, w io.Writer) *slog.Logger {
	return logging.NewLogger(config, w)
}

// Err reports a construction error, e.g. an unreadable configuration file.
func (app *App) Err() error {
	if app == nil || app.app == nil {
		return errAppNotInitialized
	}

	return app.app.Err() //nolint:wrapcheck
}

// Start starts the Fx application.
func (app *App) Start() error {
	if app != nil && app.app != nil {
		err := app.app.Start(context.Background())
		if err != nil {
			return fmt.Errorf("failed to start app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}

// Run starts the application and blocks until an OS signal is received, then shuts down gracefully.
func (app *App) Run() {
	if app == nil || app.app == nil {
		slog.Error("attempted to run an uninitialized app")

		return
	}

	app.app.Run()
}

// Stop stops the Fx application gracefully, closing cached backends.
func (app *App) Stop() error {
	if app != nil && app.app != nil {
		err := app.app.Stop(context.Background())
		if err != nil {
			return fmt.Errorf("failed to stop app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}
