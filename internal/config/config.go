// Package config loads tracklog settings from TOML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	tlerrors "github.com/tessro/tracklog/internal/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRACKLOG_"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.tracklogrc, $XDG_CONFIG_HOME/tracklog/config.toml,
// ~/.config/tracklog/config.toml. A missing file is not an error.
func Load() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		return finish(Default()), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, tlerrors.WithSuggestion(
				fmt.Errorf("%w: %s", tlerrors.ErrConfigNotFound, path),
				"Run 'tracklog config path' to see where tracklog looks for its config",
			)
		}
		return nil, fmt.Errorf("%w: %s: %v", tlerrors.ErrInvalidConfig, path, err)
	}
	return finish(cfg), nil
}

func finish(cfg *Config) *Config {
	// A .env in the working directory feeds the overrides below; variables
	// already set in the environment win.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)
	cfg.ApplyDefaults()
	return cfg
}

// FindConfigFile returns the first existing config file path, or "".
func FindConfigFile() string {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// SearchPaths lists the config file locations in the order they are tried.
func SearchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".tracklogrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "tracklog", "config.toml"))
}

// applyEnvOverrides applies TRACKLOG_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	envString("SPOTIFY_CLIENT_ID", &cfg.Spotify.ClientID)
	envString("SPOTIFY_REDIRECT_URI", &cfg.Spotify.RedirectURI)
	envString("SPOTIFY_TOKEN_FILE", &cfg.Spotify.TokenFile)

	// Source
	envString("SOURCE_PLAYER", &cfg.Source.Player)
	envInt("SOURCE_INTERVAL", &cfg.Source.Interval)
	envInt("SOURCE_MAX_FAILURES", &cfg.Source.MaxFailures)
	envString("SOURCE_ID", &cfg.Source.SourceID)
	envString("SOURCE_DATA_TYPE", &cfg.Source.DataType)

	envString("SONOS_ROOM", &cfg.Sonos.Room)
	envInt("SONOS_DISCOVERY_TIMEOUT", &cfg.Sonos.DiscoveryTimeout)

	// Sinks
	envBool("FILE_ENABLED", &cfg.File.Enabled)
	envString("FILE_DIR", &cfg.File.Dir)

	envBool("SQLITE_ENABLED", &cfg.SQLite.Enabled)
	envString("SQLITE_PATH", &cfg.SQLite.Path)

	envBool("POSTGRES_ENABLED", &cfg.Postgres.Enabled)
	envString("POSTGRES_HOST", &cfg.Postgres.Host)
	envInt("POSTGRES_PORT", &cfg.Postgres.Port)
	envString("POSTGRES_USER", &cfg.Postgres.User)
	envString("POSTGRES_PASSWORD", &cfg.Postgres.Password)
	envString("POSTGRES_DBNAME", &cfg.Postgres.DBName)
	envString("POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)

	envBool("REDIS_ENABLED", &cfg.Redis.Enabled)
	envString("REDIS_HOST", &cfg.Redis.Host)
	envInt("REDIS_PORT", &cfg.Redis.Port)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envInt("REDIS_DB", &cfg.Redis.DB)
	envString("REDIS_PREFIX", &cfg.Redis.Prefix)

	envBool("DISCORD_ENABLED", &cfg.Discord.Enabled)
	envString("DISCORD_WEBHOOK_URL", &cfg.Discord.WebhookURL)

	// Log
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FILE", &cfg.Log.File)
}

func envString(key string, dst *string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
