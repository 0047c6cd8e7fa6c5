package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/tessro/tracklog/internal/config"
	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
	"github.com/tessro/tracklog/internal/sink"
	"github.com/tessro/tracklog/internal/sonos"
	"github.com/tessro/tracklog/internal/spotify/auth"
	"github.com/tessro/tracklog/internal/spotify/player"
	"github.com/tessro/tracklog/internal/tail"
)

// sinkEntry pairs a sink with whether its config section turns it on.
type sinkEntry struct {
	sink    sink.Sink
	enabled bool
}

// buildSinks creates every delivery sink from c, in delivery order.
func buildSinks(c *config.Config, log *slog.Logger) []sinkEntry {
	return []sinkEntry{
		{sink.NewFile(c.File.Dir, log), c.File.Enabled},
		{sink.NewSQLite(c.SQLite.Path, log), c.SQLite.Enabled},
		{sink.NewPostgres(sink.PostgresConfig{
			Host:       c.Postgres.Host,
			Port:       c.Postgres.Port,
			User:       c.Postgres.User,
			Password:   c.Postgres.Password,
			DBName:     c.Postgres.DBName,
			SSLMode:    c.Postgres.SSLMode,
			BufferSize: c.Postgres.BufferSize,
		}, log), c.Postgres.Enabled},
		{sink.NewRedis(sink.RedisConfig{
			Host:       c.Redis.Host,
			Port:       c.Redis.Port,
			Password:   c.Redis.Password,
			DB:         c.Redis.DB,
			Prefix:     c.Redis.Prefix,
			BufferSize: c.Redis.BufferSize,
		}, log), c.Redis.Enabled},
		{sink.NewDiscord(sink.DiscordConfig{
			WebhookURL: c.Discord.WebhookURL,
			Username:   c.Discord.Username,
			BufferSize: c.Discord.BufferSize,
		}, log), c.Discord.Enabled},
	}
}

// newDisplay creates the console sink from the display section.
func newDisplay(c *config.Config, out io.Writer, log *slog.Logger, extra ...tail.FormatterOption) *sink.DisplaySink {
	opts := []tail.FormatterOption{
		tail.WithEmoji(c.Display.Emoji),
		tail.WithTimestamp(c.Display.Timestamp),
		tail.WithLabel(c.Display.Label),
		tail.WithTemplate(c.Display.Template),
	}
	return sink.NewDisplay(out, log, append(opts, extra...)...)
}

// newRegistry builds a registry holding the display and the sinks switched
// on in config.
func newRegistry(c *config.Config, display sink.Display, log *slog.Logger) *sink.Registry {
	var sinks []sink.Sink
	for _, e := range buildSinks(c, log) {
		if e.enabled {
			sinks = append(sinks, e.sink)
		}
	}
	return sink.NewRegistry(display, log, sinks...)
}

// sourceIdentity returns the identity events are tagged with.
func sourceIdentity(c *config.Config) core.SourceIdentity {
	return core.SourceIdentity{SourceID: c.Source.SourceID, DataType: c.Source.DataType}
}

func newAuthenticator(c *config.Config) (*auth.Authenticator, error) {
	storage, err := auth.NewTokenStorage(c.Spotify.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}
	return auth.NewAuthenticator(c.Spotify.ClientID, c.Spotify.RedirectURI, storage), nil
}

// newStateSource returns the player the watcher polls.
func newStateSource(ctx context.Context, c *config.Config, log *slog.Logger) (core.StateSource, error) {
	if c.Source.Player == config.PlayerSonos {
		timeout := time.Duration(c.Sonos.DiscoveryTimeout) * time.Millisecond
		return sonos.NewSource(c.Sonos.Room, timeout, sonos.WithLogger(log)), nil
	}

	if c.Spotify.ClientID == "" {
		return nil, tlerrors.WithSuggestion(
			fmt.Errorf("spotify.client_id not configured"),
			"Set it in ~/.tracklogrc or via TRACKLOG_SPOTIFY_CLIENT_ID",
		)
	}

	a, err := newAuthenticator(c)
	if err != nil {
		return nil, err
	}
	httpClient, err := a.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return player.New(spotify.New(httpClient, spotify.WithRetry(true))), nil
}
