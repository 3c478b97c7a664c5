// Package file implements backends reading YAML or JSON data files.
//
// For every data source produced by the hierarchy the backend reads
// <datadir>/<source>.<format>, where datadir comes from the backend's settings section.
// Missing files are skipped. Documents are cached per path and read again once their
// modification time or size changes.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xalexb/hjarta-hiera/backend"
	filefetcher "github.com/0xalexb/hjarta-hiera/config/fetcher/file"
	yamlparser "github.com/0xalexb/hjarta-hiera/config/parser/yaml"
	"github.com/0xalexb/hjarta-hiera/hierarchy"
	"github.com/0xalexb/hjarta-hiera/interpolate"
	"github.com/0xalexb/hjarta-hiera/scope"
)

// Format selects the data file syntax and extension.
type Format string

const (
	// YAML reads <source>.yaml files.
	YAML Format = "yaml"
	// JSON reads <source>.json files.
	JSON Format = "json"
)

// ErrUnknownFormat is returned for formats other than YAML and JSON.
var ErrUnknownFormat = errors.New("unknown data file format")

// MaxDocuments bounds the parsed documents kept per backend.
const MaxDocuments = 1024

var errStop = errors.New("stop")

// Backend answers lookups from data files.
type Backend struct {
	name    string
	format  Format
	sources *hierarchy.Builder
	logger  *slog.Logger

	mu   sync.Mutex
	docs map[string]*document
}

type document struct {
	fetcher *filefetcher.Fetcher
	data    map[string]any
}

// New creates a data file backend. name selects the settings section holding datadir.
func New(name string, format Format, sources *hierarchy.Builder, logger *slog.Logger) (*Backend, error) {
	if format != YAML && format != JSON {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		name:    name,
		format:  format,
		sources: sources,
		logger:  logger.With(slog.String("backend", name)),
		docs:    make(map[string]*document),
	}, nil
}

// NewFactory returns a backend.Factory creating a data file backend.
func NewFactory(name string, format Format, sources *hierarchy.Builder, logger *slog.Logger) backend.Factory {
	return func() (backend.Backend, error) {
		return New(name, format, sources, logger)
	}
}

// Lookup implements backend.Backend.
func (b *Backend) Lookup(
	ctx context.Context, key string, sc scope.Scope, orderOverride string, resolution backend.ResolutionType,
) (any, error) {
	datadir, err := b.sources.Datadir(b.name, sc)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	acc := backend.NewAccumulator(resolution)

	err = b.sources.DataSources(sc, orderOverride, nil, func(source string) error {
		err := ctx.Err()
		if err != nil {
			return err //nolint:wrapcheck
		}

		path := filepath.Join(datadir, source+"."+string(b.format))
		if !within(datadir, path) {
			b.logger.Debug("data source outside datadir skipped",
				slog.String("source", source), slog.String("datadir", datadir))

			return nil
		}

		data, ok, err := b.load(path)
		if err != nil {
			return err
		}

		if !ok {
			b.logger.Debug("data file not found", slog.String("path", path))

			return nil
		}

		raw, ok := data[key]
		if !ok || raw == nil {
			return nil
		}

		answer, err := interpolate.ExpandDeep(raw, sc)
		if err != nil {
			return fmt.Errorf("answer for %q in %s: %w", key, path, err)
		}

		done, err := acc.Add(answer)
		if err != nil {
			return fmt.Errorf("answer for %q in %s: %w", key, path, err)
		}

		if done {
			return errStop
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err //nolint:wrapcheck
	}

	return acc.Value(), nil
}

// load returns the parsed document at path; ok is false when the file does not exist.
func (b *Backend) load(path string) (map[string]any, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if doc, cached := b.docs[path]; cached {
		stale, err := doc.fetcher.Stale()

		switch {
		case errors.Is(err, fs.ErrNotExist):
			delete(b.docs, path)

			return nil, false, nil
		case err != nil:
			return nil, false, err //nolint:wrapcheck
		case !stale:
			return doc.data, true, nil
		}
	}

	fetcher, err := filefetcher.NewFetcher(path)()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err //nolint:wrapcheck
	}

	raw, err := fetcher.Fetch()
	if err != nil {
		return nil, false, err //nolint:wrapcheck
	}

	data, err := b.decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(b.docs) >= MaxDocuments {
		for cachedPath := range b.docs {
			delete(b.docs, cachedPath)

			break
		}
	}

	b.docs[path] = &document{fetcher: fetcher, data: data}
	b.logger.Debug("data file loaded", slog.String("path", path), slog.Int("keys", len(data)))

	return data, true, nil
}

func (b *Backend) decode(raw []byte) (map[string]any, error) {
	if b.format == YAML {
		return yamlparser.DecodeMap(raw) //nolint:wrapcheck
	}

	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var data map[string]any

	err := json.Unmarshal(raw, &data)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if data == nil {
		data = map[string]any{}
	}

	return data, nil
}

// within reports whether path lies below datadir once both are cleaned.
func within(datadir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(datadir), filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Documents returns the number of parsed documents currently cached.
func (b *Backend) Documents() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.docs)
}
