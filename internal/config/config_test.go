package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tlerrors "github.com/tessro/tracklog/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
[spotify]
client_id = "abc"

[source]
interval = 500

[display]
emoji = false

[sqlite]
enabled = true
path = "/tmp/events.db"

[redis]
enabled = true
host = "cache"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Spotify.ClientID != "abc" {
		t.Errorf("ClientID = %q, want %q", cfg.Spotify.ClientID, "abc")
	}
	if cfg.Source.Interval != 500 {
		t.Errorf("Interval = %d, want 500", cfg.Source.Interval)
	}
	if cfg.Source.SourceID != "spotify" || cfg.Source.DataType != "track_info" {
		t.Errorf("source identity = %s/%s", cfg.Source.SourceID, cfg.Source.DataType)
	}
	if cfg.Display.Emoji {
		t.Error("Emoji = true, want explicit false kept")
	}
	if !cfg.SQLite.Enabled || cfg.SQLite.Path != "/tmp/events.db" {
		t.Errorf("SQLite = %+v", cfg.SQLite)
	}
	if cfg.Redis.Port != 6379 || cfg.Redis.Prefix != "tracklog" {
		t.Errorf("Redis defaults not applied: %+v", cfg.Redis)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, tlerrors.ErrConfigNotFound) {
		t.Errorf("LoadFrom() error = %v, want ErrConfigNotFound", err)
	}
	if tlerrors.GetSuggestion(err) == "" {
		t.Error("missing config error carries no suggestion")
	}
}

func TestLoadFromInvalid(t *testing.T) {
	_, err := LoadFrom(writeConfig(t, "[source\ninterval = "))
	if !errors.Is(err, tlerrors.ErrInvalidConfig) {
		t.Errorf("LoadFrom() error = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRACKLOG_SPOTIFY_CLIENT_ID", "from-env")
	t.Setenv("TRACKLOG_SOURCE_INTERVAL", "250")
	t.Setenv("TRACKLOG_POSTGRES_ENABLED", "true")
	t.Setenv("TRACKLOG_POSTGRES_HOST", "db")
	t.Setenv("TRACKLOG_REDIS_PORT", "not-a-number")
	t.Setenv("TRACKLOG_LOG_LEVEL", "debug")
	t.Setenv("TRACKLOG_SOURCE_PLAYER", "sonos")
	t.Setenv("TRACKLOG_SONOS_ROOM", "Kitchen")

	cfg, err := LoadFrom(writeConfig(t, "[spotify]\nclient_id = \"from-file\"\n"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Spotify.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want env to win", cfg.Spotify.ClientID)
	}
	if cfg.Source.Interval != 250 {
		t.Errorf("Interval = %d, want 250", cfg.Source.Interval)
	}
	if !cfg.Postgres.Enabled || cfg.Postgres.Host != "db" {
		t.Errorf("Postgres = %+v", cfg.Postgres)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want malformed override ignored", cfg.Redis.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Source.Player != PlayerSonos || cfg.Sonos.Room != "Kitchen" {
		t.Errorf("player = %q room = %q", cfg.Source.Player, cfg.Sonos.Room)
	}
	if cfg.Sonos.DiscoveryTimeout != 3000 {
		t.Errorf("DiscoveryTimeout = %d, want default 3000", cfg.Sonos.DiscoveryTimeout)
	}
	if cfg.Source.SourceID != "sonos" || cfg.Display.Label != "Sonos" {
		t.Errorf("identity = %q label = %q, want the player from the environment", cfg.Source.SourceID, cfg.Display.Label)
	}
}

func TestPlayerIdentityDefaults(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantID    string
		wantLabel string
	}{
		{"spotify by default", "", "spotify", "Spotify"},
		{"sonos", "[source]\nplayer = \"sonos\"\n", "sonos", "Sonos"},
		{
			"explicit identity kept",
			"[source]\nplayer = \"sonos\"\nsource_id = \"kitchen\"\n[display]\nlabel = \"Kitchen\"\n",
			"kitchen", "Kitchen",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(writeConfig(t, tt.body))
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			if cfg.Source.SourceID != tt.wantID {
				t.Errorf("SourceID = %q, want %q", cfg.Source.SourceID, tt.wantID)
			}
			if cfg.Source.DataType != "track_info" {
				t.Errorf("DataType = %q, want track_info", cfg.Source.DataType)
			}
			if cfg.Display.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", cfg.Display.Label, tt.wantLabel)
			}
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Interval != Default().Source.Interval {
		t.Errorf("Interval = %d, want default", cfg.Source.Interval)
	}
}

func TestSearchPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	paths := SearchPaths()
	want := []string{
		filepath.Join(home, ".tracklogrc"),
		filepath.Join(home, "xdg", "tracklog", "config.toml"),
	}
	if len(paths) != len(want) {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}

	if FindConfigFile() != "" {
		t.Error("FindConfigFile() found a file in an empty home")
	}
	if err := os.MkdirAll(filepath.Dir(want[1]), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want[1], nil, 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != want[1] {
		t.Errorf("FindConfigFile() = %q, want %q", got, want[1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log:"},
		{"negative interval", func(c *Config) { c.Source.Interval = -1 }, "source:"},
		{"unknown player", func(c *Config) { c.Source.Player = "winamp" }, "source:"},
		{"negative discovery timeout", func(c *Config) { c.Sonos.DiscoveryTimeout = -1 }, "sonos:"},
		{"slash in source id", func(c *Config) { c.Source.SourceID = "a/b" }, "source:"},
		{"https redirect", func(c *Config) { c.Spotify.RedirectURI = "https://example.com/cb" }, "spotify:"},
		{"postgres missing host", func(c *Config) { c.Postgres.Enabled = true }, "postgres:"},
		{"bad sslmode", func(c *Config) { c.Postgres.SSLMode = "sometimes" }, "postgres:"},
		{"redis missing host", func(c *Config) { c.Redis.Enabled = true }, "redis:"},
		{"discord missing url", func(c *Config) { c.Discord.Enabled = true }, "discord:"},
		{"sqlite missing path", func(c *Config) { c.SQLite.Enabled = true; c.SQLite.Path = "" }, "sqlite:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
