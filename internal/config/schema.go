package config

// Players a source can poll.
const (
	PlayerSpotify = "spotify"
	PlayerSonos   = "sonos"
)

// PlayerLabel returns the display name of player.
func PlayerLabel(player string) string {
	switch player {
	case PlayerSonos:
		return "Sonos"
	case PlayerSpotify:
		return "Spotify"
	}
	return player
}

// Config is the root configuration structure.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Source   SourceConfig   `toml:"source"`
	Sonos    SonosConfig    `toml:"sonos"`
	Display  DisplayConfig  `toml:"display"`
	File     FileConfig     `toml:"file"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Discord  DiscordConfig  `toml:"discord"`
	Log      LogConfig      `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
	TokenFile   string `toml:"token_file"`
}

// SourceConfig controls how the player is polled and how events are tagged.
type SourceConfig struct {
	Player      string `toml:"player"`
	Interval    int    `toml:"interval"`
	MaxFailures int    `toml:"max_failures"`
	SourceID    string `toml:"source_id,omitempty"`
	DataType    string `toml:"data_type"`
}

// SonosConfig selects the speaker read when source.player is "sonos".
type SonosConfig struct {
	Room             string `toml:"room"`
	DiscoveryTimeout int    `toml:"discovery_timeout"`
}

// DisplayConfig holds console output settings.
type DisplayConfig struct {
	Emoji     bool   `toml:"emoji"`
	Timestamp bool   `toml:"timestamp"`
	Label     string `toml:"label,omitempty"`
	Template  string `toml:"template"`
}

// FileConfig holds settings for the JSONL file sink.
type FileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// SQLiteConfig holds settings for the SQLite sink.
type SQLiteConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// PostgresConfig holds settings for the Postgres sink.
type PostgresConfig struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	DBName     string `toml:"dbname"`
	SSLMode    string `toml:"sslmode"`
	BufferSize int    `toml:"buffer_size"`
}

// RedisConfig holds settings for the Redis sink.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	Prefix     string `toml:"prefix"`
	BufferSize int    `toml:"buffer_size"`
}

// DiscordConfig holds settings for the Discord webhook sink.
type DiscordConfig struct {
	Enabled    bool   `toml:"enabled"`
	WebhookURL string `toml:"webhook_url"`
	Username   string `toml:"username"`
	BufferSize int    `toml:"buffer_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
