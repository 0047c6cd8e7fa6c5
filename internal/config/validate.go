package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Spotify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("spotify: %w", err))
	}
	if err := c.Source.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("source: %w", err))
	}
	if err := c.Sonos.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sonos: %w", err))
	}
	if err := c.File.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("file: %w", err))
	}
	if err := c.SQLite.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sqlite: %w", err))
	}
	if err := c.Postgres.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("postgres: %w", err))
	}
	if err := c.Redis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if err := c.Discord.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("discord: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks SpotifyConfig for errors.
func (c *SpotifyConfig) Validate() error {
	if c.RedirectURI != "" {
		u, err := url.Parse(c.RedirectURI)
		if err != nil {
			return fmt.Errorf("invalid redirect_uri: %w", err)
		}
		if u.Scheme != "http" || u.Host == "" {
			return fmt.Errorf("redirect_uri must be an http URL on this machine, got %q", c.RedirectURI)
		}
	}
	return nil
}

// Validate checks SourceConfig for errors.
func (c *SourceConfig) Validate() error {
	switch c.Player {
	case "", PlayerSpotify, PlayerSonos:
		// valid
	default:
		return fmt.Errorf("invalid player: %s (must be %s or %s)", c.Player, PlayerSpotify, PlayerSonos)
	}
	if c.Interval < 0 {
		return errors.New("interval must be non-negative")
	}
	if c.MaxFailures < 0 {
		return errors.New("max_failures must be non-negative")
	}
	if strings.Contains(c.SourceID, "/") || strings.Contains(c.DataType, "/") {
		return errors.New("source_id and data_type must not contain '/'")
	}
	return nil
}

// Validate checks SonosConfig for errors.
func (c *SonosConfig) Validate() error {
	if c.DiscoveryTimeout < 0 {
		return errors.New("discovery_timeout must be non-negative")
	}
	return nil
}

// Validate checks FileConfig for errors.
func (c *FileConfig) Validate() error {
	if c.Enabled && c.Dir == "" {
		return errors.New("dir is required when enabled")
	}
	return nil
}

// Validate checks SQLiteConfig for errors.
func (c *SQLiteConfig) Validate() error {
	if c.Enabled && c.Path == "" {
		return errors.New("path is required when enabled")
	}
	return nil
}

// Validate checks PostgresConfig for errors.
func (c *PostgresConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.BufferSize < 0 {
		return errors.New("buffer_size must be non-negative")
	}
	switch c.SSLMode {
	case "", "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		// valid
	default:
		return fmt.Errorf("invalid sslmode: %s", c.SSLMode)
	}
	if c.Enabled && (c.Host == "" || c.User == "" || c.DBName == "") {
		return errors.New("host, user and dbname are required when enabled")
	}
	return nil
}

// Validate checks RedisConfig for errors.
func (c *RedisConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DB < 0 {
		return errors.New("db must be non-negative")
	}
	if c.BufferSize < 0 {
		return errors.New("buffer_size must be non-negative")
	}
	if c.Enabled && c.Host == "" {
		return errors.New("host is required when enabled")
	}
	return nil
}

// Validate checks DiscordConfig for errors.
func (c *DiscordConfig) Validate() error {
	if c.BufferSize < 0 {
		return errors.New("buffer_size must be non-negative")
	}
	if c.Enabled && c.WebhookURL == "" {
		return errors.New("webhook_url is required when enabled")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
