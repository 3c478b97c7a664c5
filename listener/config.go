// Package listener runs the lookup API on an HTTP listener managed by Fx.
package listener

import (
	"errors"
	"fmt"
	"time"

	"github.com/0xalexb/hjarta-hiera/config"
)

const (
	// DefaultAddress is where the lookup API listens when no address is configured.
	DefaultAddress = "127.0.0.1:8140"
	// DefaultReadHeaderTimeout bounds reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections between requests.
	DefaultIdleTimeout = 2 * time.Minute
	// Section is the hiera configuration section holding listener settings.
	Section = "server"
)

var (
	// ErrEmptyAddress is returned when the address is empty.
	ErrEmptyAddress = errors.New("address must not be empty")
	// ErrListenFailed is returned when the server fails to listen on the configured address.
	ErrListenFailed = errors.New("failed to listen")
	// ErrShutdownFailed is returned when the server fails to shut down gracefully.
	ErrShutdownFailed = errors.New("shutdown failed")
	// ErrEmptyName is returned when the listener name is empty.
	ErrEmptyName = errors.New("listener name must not be empty")
	// ErrNilHandler is returned when a nil http.Handler is provided.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrInvalidTimeout is returned for negative or unparsable timeouts.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Config holds the configuration for the lookup API listener.
//
//	server:
//	  address: "0.0.0.0:8140"
//	  read_header_timeout: 5s
//	  idle_timeout: 60
type Config struct {
	Address           string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

// SetDefaults sets default values for the Config.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}

	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
}

// Validate validates the Config.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrEmptyAddress
	}

	if c.ReadHeaderTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidTimeout)
	}

	return nil
}

// ConfigFrom reads the server section of the hiera configuration.
// Timeouts accept duration strings ("5s") or whole seconds.
func ConfigFrom(store config.Store) (Config, error) {
	var cfg Config

	if address, ok := config.StringSetting(store, Section, "address"); ok {
		cfg.Address = address
	}

	var err error

	cfg.ReadHeaderTimeout, err = config.DurationSetting(store, Section, "read_header_timeout")
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidTimeout, err)
	}

	cfg.IdleTimeout, err = config.DurationSetting(store, Section, "idle_timeout")
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidTimeout, err)
	}

	return cfg, nil
}
