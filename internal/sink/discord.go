package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tessro/tracklog/internal/core"
	"github.com/tessro/tracklog/internal/tail"
)

// DiscordName is the registry name of the Discord webhook sink.
const DiscordName = "discord"

// DiscordConfig holds settings for the Discord webhook sink.
type DiscordConfig struct {
	WebhookURL string
	Username   string
	BufferSize int
}

// ParseWebhookURL splits a Discord webhook URL into its id and token.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url path: %q", u.Path)
}

// DiscordSink posts a message to a Discord webhook for every event.
type DiscordSink struct {
	*Base
	cfg       DiscordConfig
	id        string
	token     string
	session   *discordgo.Session
	formatter *tail.Formatter
	worker    *worker
}

// NewDiscord creates a Discord webhook sink.
func NewDiscord(cfg DiscordConfig, logger *slog.Logger) *DiscordSink {
	s := &DiscordSink{
		Base:      NewBase(DiscordName, logger),
		cfg:       cfg,
		formatter: tail.NewFormatter(tail.WithEmoji(true)),
	}
	if cfg.WebhookURL != "" {
		id, token, err := ParseWebhookURL(cfg.WebhookURL)
		if err != nil {
			s.Logger().Warn("ignoring webhook url", "err", err)
		} else {
			s.id, s.token = id, token
		}
	}
	// Webhook execution is authorized by the token in the URL, so the session
	// carries no bot token.
	session, err := discordgo.New("")
	if err != nil {
		s.Logger().Warn("create discord session", "err", err)
	}
	s.session = session
	s.worker = newWorker(cfg.BufferSize, s.Logger(), s.post, func(j job) { s.MarkDelivered(j.src) })
	return s
}

// IsConfigured returns true when a valid webhook URL is set.
func (s *DiscordSink) IsConfigured() bool {
	return s.id != "" && s.token != "" && s.session != nil
}

// Enable turns the sink on.
func (s *DiscordSink) Enable() error {
	return s.EnableIf(s.IsConfigured())
}

// InitSaving starts the worker.
func (s *DiscordSink) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	s.ResetSources(sources)
	s.worker.start()
	s.Logger().Info("discord sink ready", "recording", recording)
	return nil
}

// Deliver queues ev for posting.
func (s *DiscordSink) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	s.worker.start()
	return s.worker.submit(job{src: src, recording: recording, event: ev, queuedAt: time.Now()})
}

// StopSaving drains queued posts.
func (s *DiscordSink) StopSaving() error {
	s.worker.stop()
	s.Reset()
	return nil
}

// Params builds the webhook payload for an event.
func (s *DiscordSink) Params(recording string, ev core.TrackEvent) *discordgo.WebhookParams {
	embed := &discordgo.MessageEmbed{
		Title:       s.formatter.Describe(ev),
		Description: ev.Album,
		Timestamp:   ev.CapturedAt.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Recording", Value: recording, Inline: true},
			{Name: "Status", Value: ev.Status(), Inline: true},
		},
	}
	if ev.TrackID != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: ev.TrackID}
	}
	return &discordgo.WebhookParams{
		Content:  s.formatter.Format(recording, ev),
		Username: s.cfg.Username,
		Embeds:   []*discordgo.MessageEmbed{embed},
	}
}

func (s *DiscordSink) post(ctx context.Context, j job) error {
	params := s.Params(j.recording, j.event)
	if _, err := s.session.WebhookExecute(s.id, s.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("execute webhook: %w", err)
	}
	return nil
}
