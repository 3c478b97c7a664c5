// Package redis implements a backend reading answers from Redis string keys.
//
// For every data source the backend reads the key "<source><separator><lookup key>".
// Values are returned as strings unless the settings section asks for JSON or YAML
// decoding. The connection is opened and checked when the backend is constructed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	goredis "github.com/redis/go-redis/v9"

	"github.com/0xalexb/hjarta-hiera/backend"
	"github.com/0xalexb/hjarta-hiera/config"
	"github.com/0xalexb/hjarta-hiera/hierarchy"
	"github.com/0xalexb/hjarta-hiera/interpolate"
	"github.com/0xalexb/hjarta-hiera/scope"
)

const (
	// DefaultAddress is used when the settings section has no address.
	DefaultAddress = "localhost:6379"
	// DefaultSeparator joins data source and lookup key.
	DefaultSeparator = ":"

	connectTimeout = 5 * time.Second
)

// Deserialization modes.
const (
	DeserializeNone = ""
	DeserializeJSON = "json"
	DeserializeYAML = "yaml"
)

// ErrInvalidSettings is returned when the settings section cannot be used.
var ErrInvalidSettings = errors.New("invalid redis settings")

var errStop = errors.New("stop")

// Settings configures the redis backend.
type Settings struct {
	Address     string
	Password    string
	DB          int
	Separator   string
	Deserialize string
}

// SettingsFrom reads the settings section named section from store and applies defaults.
func SettingsFrom(store config.Store, section string) (Settings, error) {
	settings := Settings{
		Address:     DefaultAddress,
		Password:    "",
		DB:          0,
		Separator:   DefaultSeparator,
		Deserialize: DeserializeNone,
	}

	if value, ok := config.StringSetting(store, section, "address"); ok {
		settings.Address = value
	}

	if value, ok := config.StringSetting(store, section, "password"); ok {
		settings.Password = value
	}

	if value, ok := config.StringSetting(store, section, "separator"); ok {
		settings.Separator = value
	}

	if value, ok := config.StringSetting(store, section, "deserialize"); ok {
		settings.Deserialize = value
	}

	if value, ok := store.Setting(section, "db"); ok {
		db, err := toInt(value)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: db: %w", ErrInvalidSettings, err)
		}

		settings.DB = db
	}

	switch settings.Deserialize {
	case DeserializeNone, DeserializeJSON, DeserializeYAML:
	default:
		return Settings{}, fmt.Errorf("%w: unknown deserialize mode %q", ErrInvalidSettings, settings.Deserialize)
	}

	return settings, nil
}

// Backend answers lookups from Redis.
type Backend struct {
	name     string
	client   *goredis.Client
	settings Settings
	sources  *hierarchy.Builder
	logger   *slog.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, name string, settings Settings, sources *hierarchy.Builder, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := goredis.NewClient(&goredis.Options{ //nolint:exhaustruct // only relevant fields needed
		Addr:     settings.Address,
		Password: settings.Password,
		DB:       settings.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("connecting to redis at %s: %w", settings.Address, err)
	}

	logger.Info("redis backend connected", slog.String("backend", name), slog.String("address", settings.Address))

	return &Backend{
		name:     name,
		client:   client,
		settings: settings,
		sources:  sources,
		logger:   logger.With(slog.String("backend", name)),
	}, nil
}

// NewFactory returns a backend.Factory reading its settings from the section named name.
func NewFactory(name string, store config.Store, sources *hierarchy.Builder, logger *slog.Logger) backend.Factory {
	return func() (backend.Backend, error) {
		settings, err := SettingsFrom(store, name)
		if err != nil {
			return nil, err
		}

		return New(context.Background(), name, settings, sources, logger)
	}
}

// Lookup implements backend.Backend.
func (b *Backend) Lookup(
	ctx context.Context, key string, sc scope.Scope, orderOverride string, resolution backend.ResolutionType,
) (any, error) {
	acc := backend.NewAccumulator(resolution)

	err := b.sources.DataSources(sc, orderOverride, nil, func(source string) error {
		redisKey := source + b.settings.Separator + key

		raw, err := b.client.Get(ctx, redisKey).Result()
		if errors.Is(err, goredis.Nil) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading %q: %w", redisKey, err)
		}

		value, err := b.decode(raw)
		if err != nil {
			return fmt.Errorf("decoding %q: %w", redisKey, err)
		}

		answer, err := interpolate.ExpandDeep(value, sc)
		if err != nil {
			return fmt.Errorf("answer for %q: %w", redisKey, err)
		}

		done, err := acc.Add(answer)
		if err != nil {
			return fmt.Errorf("answer for %q: %w", redisKey, err)
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

// Close closes the Redis connection pool.
func (b *Backend) Close() error {
	err := b.client.Close()
	if err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}

	return nil
}

func (b *Backend) decode(raw string) (any, error) {
	var value any

	switch b.settings.Deserialize {
	case DeserializeJSON:
		err := json.Unmarshal([]byte(raw), &value)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
	case DeserializeYAML:
		err := yaml.Unmarshal([]byte(raw), &value)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
	default:
		return raw, nil
	}

	return value, nil
}

func toInt(value any) (int, error) {
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case uint64:
		return int(typed), nil //nolint:gosec // redis database numbers are small
	case float64:
		return int(typed), nil
	case string:
		return strconv.Atoi(typed) //nolint:wrapcheck
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
