package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults. The source id
// and display label are left empty; ApplyDefaults derives them from the player.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8888/callback",
		},
		Source: SourceConfig{
			Player:      PlayerSpotify,
			Interval:    1000,
			MaxFailures: 10,
			DataType:    "track_info",
		},
		Sonos: SonosConfig{
			DiscoveryTimeout: 3000,
		},
		Display: DisplayConfig{
			Emoji: true,
		},
		File: FileConfig{
			Dir: filepath.Join(dataDir(), "events"),
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(dataDir(), "tracklog.db"),
		},
		Postgres: PostgresConfig{
			Port:       5432,
			SSLMode:    "disable",
			BufferSize: 64,
		},
		Redis: RedisConfig{
			Port:       6379,
			Prefix:     "tracklog",
			BufferSize: 64,
		},
		Discord: DiscordConfig{
			Username:   "tracklog",
			BufferSize: 64,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Spotify
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}

	// Source
	if c.Source.Player == "" {
		c.Source.Player = d.Source.Player
	}
	if c.Source.Interval == 0 {
		c.Source.Interval = d.Source.Interval
	}
	// Events are tagged with, and displayed under, the player they come from
	// unless configured otherwise.
	if c.Source.SourceID == "" {
		c.Source.SourceID = c.Source.Player
	}
	if c.Source.DataType == "" {
		c.Source.DataType = d.Source.DataType
	}

	if c.Sonos.DiscoveryTimeout == 0 {
		c.Sonos.DiscoveryTimeout = d.Sonos.DiscoveryTimeout
	}

	if c.Display.Label == "" {
		c.Display.Label = PlayerLabel(c.Source.Player)
	}

	// Sinks
	if c.File.Dir == "" {
		c.File.Dir = d.File.Dir
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = d.SQLite.Path
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = d.Postgres.Port
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = d.Postgres.SSLMode
	}
	if c.Postgres.BufferSize == 0 {
		c.Postgres.BufferSize = d.Postgres.BufferSize
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = d.Redis.Port
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = d.Redis.Prefix
	}
	if c.Redis.BufferSize == 0 {
		c.Redis.BufferSize = d.Redis.BufferSize
	}
	if c.Discord.Username == "" {
		c.Discord.Username = d.Discord.Username
	}
	if c.Discord.BufferSize == 0 {
		c.Discord.BufferSize = d.Discord.BufferSize
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// dataDir is $XDG_DATA_HOME/tracklog, falling back to ~/.local/share/tracklog.
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tracklog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tracklog"
	}
	return filepath.Join(home, ".local", "share", "tracklog")
}
