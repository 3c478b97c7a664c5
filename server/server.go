// Package server exposes the lookup dispatcher over HTTP.
//
//	POST /v1/lookup       {"key", "default", "scope", "order_override", "resolution_type"}
//	POST /v1/datasources  {"scope", "override", "hierarchy"}
//	GET  /healthz
//	GET  /metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/0xalexb/hjarta-hiera/backend"
	"github.com/0xalexb/hjarta-hiera/config"
	"github.com/0xalexb/hjarta-hiera/listener/middleware"
	"github.com/0xalexb/hjarta-hiera/lookup"
	"github.com/0xalexb/hjarta-hiera/scope"
)

const (
	// Section is the hiera configuration section holding API settings.
	Section = "server"
	// DefaultTimeout bounds request processing when Options.Timeout is not set.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodyBytes limits request bodies when Options.MaxBodyBytes is not set.
	DefaultMaxBodyBytes int64 = 1 << 20
)

var errEmptyKey = errors.New("key must not be empty")

// Resolver is the part of the dispatcher the HTTP API needs.
type Resolver interface {
	Resolve(
		ctx context.Context, key string, def any, sc scope.Scope, orderOverride string, resolution backend.ResolutionType,
	) (lookup.Result, error)
	DataSources(sc scope.Scope, override string, explicit []string, fn func(source string) error) error
}

// Options configures the handler.
type Options struct {
	// Metrics, when set, is served on /metrics.
	Metrics http.Handler
	// Timeout bounds request processing. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxBodyBytes limits request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// RateLimit, when positive, caps accepted requests per second.
	RateLimit float64
	// RateBurst is the token bucket size used with RateLimit.
	RateBurst int
}

// OptionsFrom reads timeout, max_body_bytes, rate_limit and rate_burst from the
// server section of the hiera configuration. Metrics is left unset.
func OptionsFrom(store config.Store) (Options, error) {
	var opts Options

	timeout, err := config.DurationSetting(store, Section, "timeout")
	if err != nil {
		return Options{}, err //nolint:wrapcheck
	}

	opts.Timeout = timeout

	if maxBody, ok, err := config.NumberSetting(store, Section, "max_body_bytes"); err != nil {
		return Options{}, err //nolint:wrapcheck
	} else if ok {
		opts.MaxBodyBytes = int64(maxBody)
	}

	if rate, ok, err := config.NumberSetting(store, Section, "rate_limit"); err != nil {
		return Options{}, err //nolint:wrapcheck
	} else if ok {
		opts.RateLimit = rate
	}

	if burst, ok, err := config.NumberSetting(store, Section, "rate_burst"); err != nil {
		return Options{}, err //nolint:wrapcheck
	} else if ok {
		opts.RateBurst = int(burst)
	}

	return opts, nil
}

type lookupRequest struct {
	Key            string            `json:"key"`
	Default        any               `json:"default"`
	Scope          map[string]string `json:"scope"`
	OrderOverride  string            `json:"order_override"`
	ResolutionType string            `json:"resolution_type"`
}

type lookupResponse struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Backend string `json:"backend,omitempty"`
	Found   bool   `json:"found"`
}

type dataSourcesRequest struct {
	Scope     map[string]string `json:"scope"`
	Override  string            `json:"override"`
	Hierarchy []string          `json:"hierarchy"`
}

type dataSourcesResponse struct {
	Sources []string `json:"sources"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler builds the HTTP API around resolver, wrapped in the standard middleware chain.
func NewHandler(resolver Resolver, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/lookup", lookupHandler(resolver))
	mux.HandleFunc("POST /v1/datasources", dataSourcesHandler(resolver))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxBody := opts.MaxBodyBytes
	if maxBody == 0 {
		maxBody = DefaultMaxBodyBytes
	}

	var handler http.Handler = mux

	handler = middleware.MaxRequestSize(maxBody)(handler)
	handler = middleware.Timeout(timeout)(handler)

	if opts.RateLimit > 0 {
		handler = middleware.RateLimit(opts.RateLimit, max(opts.RateBurst, 1))(handler)
	}

	handler = middleware.Recovery()(handler)
	handler = middleware.Logging()(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

func lookupHandler(resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lookupRequest

		err := decode(r, &req)
		if err != nil {
			writeError(w, decodeStatus(err), err)

			return
		}

		if req.Key == "" {
			writeError(w, http.StatusBadRequest, errEmptyKey)

			return
		}

		resolution, err := backend.ParseResolutionType(req.ResolutionType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)

			return
		}

		result, err := resolver.Resolve(r.Context(), req.Key, req.Default, scope.Map(req.Scope), req.OrderOverride, resolution)
		if err != nil {
			slog.ErrorContext(r.Context(), "lookup failed",
				slog.String("key", req.Key),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.Any("error", err))

			writeError(w, http.StatusInternalServerError, err)

			return
		}

		writeJSON(w, http.StatusOK, lookupResponse{
			Key:     req.Key,
			Value:   result.Value,
			Backend: result.Backend,
			Found:   result.Found,
		})
	}
}

func dataSourcesHandler(resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dataSourcesRequest

		err := decode(r, &req)
		if err != nil {
			writeError(w, decodeStatus(err), err)

			return
		}

		sources := []string{}

		err = resolver.DataSources(scope.Map(req.Scope), req.Override, req.Hierarchy, func(source string) error {
			sources = append(sources, source)

			return nil
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)

			return
		}

		writeJSON(w, http.StatusOK, dataSourcesResponse{Sources: sources})
	}
}

func decode(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(target) //nolint:wrapcheck
}

func decodeStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to write response", slog.Any("error", err))
	}
}
