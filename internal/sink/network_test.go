package sink

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tlerrors "github.com/tessro/tracklog/internal/errors"
)

func TestPostgresConfig(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "rec", DBName: "tracks"}
	want := "host=db port=5432 user=rec dbname=tracks sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}

	cfg.Password = "secret"
	cfg.SSLMode = "require"
	got := cfg.ConnectionString()
	if !strings.Contains(got, "sslmode=require") || !strings.HasSuffix(got, " password=secret") {
		t.Errorf("ConnectionString() = %q", got)
	}

	if !NewPostgres(cfg, nil).IsConfigured() {
		t.Error("IsConfigured() = false for a complete config")
	}
	if NewPostgres(PostgresConfig{Host: "db"}, nil).IsConfigured() {
		t.Error("IsConfigured() = true without user and database")
	}
}

func TestRedisConfig(t *testing.T) {
	cfg := RedisConfig{Host: "localhost", Port: 6379}
	if cfg.Addr() != "localhost:6379" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if got := cfg.Channel(trackInfo); got != "tracklog:spotify:track_info" {
		t.Errorf("Channel() = %q", got)
	}
	cfg.Prefix = "lab"
	if got := cfg.LastKey(trackInfo); got != "lab:spotify:track_info:last" {
		t.Errorf("LastKey() = %q", got)
	}

	if NewRedis(RedisConfig{Host: "localhost"}, nil).IsConfigured() {
		t.Error("IsConfigured() = true without a port")
	}
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		url     string
		id      string
		token   string
		wantErr bool
	}{
		{url: "https://discord.com/api/webhooks/123/abc", id: "123", token: "abc"},
		{url: "https://discord.com/api/v10/webhooks/9/tok/", id: "9", token: "tok"},
		{url: "https://discord.com/api/webhooks/123", wantErr: true},
		{url: "https://example.com/", wantErr: true},
	}
	for _, tt := range tests {
		id, token, err := ParseWebhookURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseWebhookURL(%q) error = nil, want error", tt.url)
			}
			continue
		}
		if err != nil || id != tt.id || token != tt.token {
			t.Errorf("ParseWebhookURL(%q) = %q, %q, %v", tt.url, id, token, err)
		}
	}
}

func TestDiscordSink(t *testing.T) {
	s := NewDiscord(DiscordConfig{WebhookURL: "https://discord.com/api/webhooks/1/t", Username: "tracklog"}, nil)
	if !s.IsConfigured() {
		t.Fatal("IsConfigured() = false for valid webhook")
	}
	if err := NewDiscord(DiscordConfig{WebhookURL: "nope"}, nil).Enable(); !errors.Is(err, tlerrors.ErrNotConfigured) {
		t.Errorf("Enable() with bad url error = %v, want ErrNotConfigured", err)
	}

	p := s.Params("rec", testEvent("a", true))
	if p.Username != "tracklog" || len(p.Embeds) != 1 {
		t.Fatalf("Params() = %+v", p)
	}
	if !strings.Contains(p.Content, "Song a by Artist - Paused") {
		t.Errorf("Content = %q", p.Content)
	}
	if p.Embeds[0].Footer == nil || p.Embeds[0].Footer.Text != "a" {
		t.Errorf("embed footer = %+v, want track id", p.Embeds[0].Footer)
	}
}

func TestNetworkSinksStopWithoutStart(t *testing.T) {
	sinks := []Sink{
		NewPostgres(PostgresConfig{}, nil),
		NewRedis(RedisConfig{}, nil),
		NewDiscord(DiscordConfig{}, nil),
	}
	for _, s := range sinks {
		if err := s.StopSaving(); err != nil {
			t.Errorf("%s.StopSaving() error = %v", s.Name(), err)
		}
	}
}

func TestNetworkDeliverDoesNotBlock(t *testing.T) {
	// The worker owns the I/O; Deliver only enqueues, even when the server
	// is unreachable.
	s := NewRedis(RedisConfig{Host: "127.0.0.1", Port: 1, BufferSize: 1}, nil)
	t.Cleanup(func() { _ = s.StopSaving() })
	if err := s.Deliver(context.Background(), trackInfo, "rec", testEvent("a", false)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
}

func TestRedisInitSavingIsBounded(t *testing.T) {
	s := NewRedis(RedisConfig{Host: "127.0.0.1", Port: 1}, nil)
	s.initTimeout = 100 * time.Millisecond
	t.Cleanup(func() { _ = s.StopSaving() })

	start := time.Now()
	err := s.InitSaving("rec", sources(trackInfo))
	if err == nil {
		t.Fatal("InitSaving() error = nil, want connection failure")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("InitSaving() took %v, want it cut off by the init timeout", elapsed)
	}
	if s.InitState() != Failed {
		t.Errorf("InitState() = %v, want failed", s.InitState())
	}
}
