package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tessro/tracklog/internal/config"
)

// ErrCancelled is returned when the user backs out of a question.
var ErrCancelled = errors.New("setup cancelled")

// RoomLister returns the Sonos rooms reachable from this machine.
type RoomLister func(ctx context.Context) ([]string, error)

// Setup walks the user through choosing a player and sinks, filling in cfg.
func Setup(ctx context.Context, cfg *config.Config, ui UI, rooms RoomLister) error {
	player, err := pickOne(ui, "Which player should tracklog watch?", []Choice{
		{Label: "Spotify", Detail: "Web API, needs a client ID"},
		{Label: "Sonos", Detail: "speaker on the local network"},
	})
	if err != nil {
		return err
	}

	if player == 0 {
		if err := setupSpotify(cfg, ui); err != nil {
			return err
		}
	} else {
		if err := setupSonos(ctx, cfg, ui, rooms); err != nil {
			return err
		}
	}
	if err := setupSinks(cfg, ui); err != nil {
		return err
	}

	ok, err := ui.Confirm("Write this configuration?", Summary(cfg))
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// Summary describes the player and sinks cfg selects.
func Summary(cfg *config.Config) string {
	var b strings.Builder
	switch cfg.Source.Player {
	case config.PlayerSonos:
		room := cfg.Sonos.Room
		if room == "" {
			room = "any room"
		}
		fmt.Fprintf(&b, "Player: Sonos (%s)\n", room)
	default:
		fmt.Fprintf(&b, "Player: Spotify (client %s)\n", cfg.Spotify.ClientID)
	}

	var sinks []string
	for _, s := range []struct {
		name    string
		enabled bool
	}{
		{"file", cfg.File.Enabled},
		{"sqlite", cfg.SQLite.Enabled},
		{"postgres", cfg.Postgres.Enabled},
		{"redis", cfg.Redis.Enabled},
		{"discord", cfg.Discord.Enabled},
	} {
		if s.enabled {
			sinks = append(sinks, s.name)
		}
	}
	if len(sinks) == 0 {
		b.WriteString("Sinks: display only")
	} else {
		b.WriteString("Sinks: " + strings.Join(sinks, ", "))
	}
	return b.String()
}

func setupSpotify(cfg *config.Config, ui UI) error {
	cfg.Source.Player = config.PlayerSpotify
	hint := fmt.Sprintf("Create an app at https://developer.spotify.com/dashboard with redirect URI %s", cfg.Spotify.RedirectURI)
	id, err := prompt(ui, "Spotify client ID", "client id", hint, cfg.Spotify.ClientID)
	if err != nil {
		return err
	}
	cfg.Spotify.ClientID = id
	return nil
}

func setupSonos(ctx context.Context, cfg *config.Config, ui UI, rooms RoomLister) error {
	cfg.Source.Player = config.PlayerSonos
	cfg.Source.SourceID = config.PlayerSonos
	cfg.Display.Label = config.PlayerLabel(config.PlayerSonos)

	var names []string
	var listErr error
	if rooms != nil {
		names, listErr = rooms(ctx)
	}
	if len(names) == 0 {
		hint := "Leave empty to use the first group found."
		if listErr != nil {
			hint = fmt.Sprintf("Discovery failed: %v. %s", listErr, hint)
		}
		room, err := prompt(ui, "Sonos room", "Living Room", hint, cfg.Sonos.Room)
		if err != nil {
			return err
		}
		cfg.Sonos.Room = room
		return nil
	}

	choices := []Choice{{Label: "Any", Detail: "first group found"}}
	for _, n := range names {
		choices = append(choices, Choice{Label: n})
	}
	i, err := pickOne(ui, "Which Sonos room?", choices)
	if err != nil {
		return err
	}
	cfg.Sonos.Room = ""
	if i > 0 {
		cfg.Sonos.Room = names[i-1]
	}
	return nil
}

func setupSinks(cfg *config.Config, ui UI) error {
	type sinkChoice struct {
		label   string
		detail  string
		enabled *bool
	}
	sinks := []sinkChoice{
		{"file", "JSONL files under " + cfg.File.Dir, &cfg.File.Enabled},
		{"sqlite", cfg.SQLite.Path, &cfg.SQLite.Enabled},
		{"postgres", "events table", &cfg.Postgres.Enabled},
		{"redis", "stream and pub/sub", &cfg.Redis.Enabled},
		{"discord", "webhook posts", &cfg.Discord.Enabled},
	}

	choices := make([]Choice, len(sinks))
	for i, s := range sinks {
		choices[i] = Choice{Label: s.label, Detail: s.detail, Checked: *s.enabled}
	}
	selected, err := ui.Pick("Which sinks should record events?", choices, true)
	if err != nil {
		return err
	}
	if selected == nil {
		return ErrCancelled
	}

	for _, s := range sinks {
		*s.enabled = false
	}
	for _, i := range selected {
		*sinks[i].enabled = true
	}

	if cfg.Postgres.Enabled {
		for _, f := range []struct {
			title string
			dst   *string
		}{
			{"Postgres host", &cfg.Postgres.Host},
			{"Postgres user", &cfg.Postgres.User},
			{"Postgres database", &cfg.Postgres.DBName},
		} {
			if err := promptInto(ui, f.title, f.dst); err != nil {
				return err
			}
		}
	}
	if cfg.Redis.Enabled {
		if err := promptInto(ui, "Redis host", &cfg.Redis.Host); err != nil {
			return err
		}
	}
	if cfg.Discord.Enabled {
		if err := promptInto(ui, "Discord webhook URL", &cfg.Discord.WebhookURL); err != nil {
			return err
		}
	}
	return nil
}

func pickOne(ui UI, title string, choices []Choice) (int, error) {
	selected, err := ui.Pick(title, choices, false)
	if err != nil {
		return 0, err
	}
	if len(selected) == 0 {
		return 0, ErrCancelled
	}
	return selected[0], nil
}

func prompt(ui UI, title, placeholder, hint, value string) (string, error) {
	v, ok, err := ui.Prompt(title, placeholder, hint, value)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrCancelled
	}
	return v, nil
}

// promptInto asks for a required value unless dst already has one.
func promptInto(ui UI, title string, dst *string) error {
	if *dst != "" {
		return nil
	}
	v, err := prompt(ui, title, "", "Required for this sink.", "")
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
