package listener

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/0xalexb/hjarta-hiera/config"
)

// NewModule creates an Fx module serving the http.Handler tagged with name.
// Settings come from the server section of the config.Store in the container;
// opts are applied on top, so command line flags win over the file.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(name string, opts ...Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	return fx.Module(name, fx.Invoke(
		fx.Annotate(
			func(
				lifecycle fx.Lifecycle, shutdowner fx.Shutdowner, handler http.Handler, store config.Store,
			) error {
				cfg, err := ConfigFrom(store)
				if err != nil {
					return err
				}

				for _, apply := range opts {
					apply(&cfg)
				}

				srv, err := NewServer(name, handler, cfg, func() {
					shutdownErr := shutdowner.Shutdown()
					if shutdownErr != nil {
						slog.Error("failed to trigger shutdown", "name", name, "error", shutdownErr)
					}
				})
				if err != nil {
					return err
				}

				lifecycle.Append(fx.Hook{
					OnStart: srv.Start,
					OnStop:  srv.Stop,
				})

				return nil
			},
			fx.ParamTags("", "", fmt.Sprintf(`name:"%s"`, name), ""),
		),
	))
}
