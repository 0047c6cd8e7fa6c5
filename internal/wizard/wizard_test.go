package wizard

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/tracklog/internal/config"
)

// scriptedUI answers questions from fixed lists and records the titles.
type scriptedUI struct {
	picks   [][]int
	prompts []string
	asked   []string

	declined bool
	summary  string
}

func (s *scriptedUI) Pick(title string, choices []Choice, multi bool) ([]int, error) {
	s.asked = append(s.asked, title)
	if len(s.picks) == 0 {
		return nil, nil
	}
	p := s.picks[0]
	s.picks = s.picks[1:]
	return p, nil
}

func (s *scriptedUI) Prompt(title, placeholder, hint, value string) (string, bool, error) {
	s.asked = append(s.asked, title)
	if len(s.prompts) == 0 {
		return "", false, nil
	}
	p := s.prompts[0]
	s.prompts = s.prompts[1:]
	return p, true, nil
}

func (s *scriptedUI) Confirm(title, description string) (bool, error) {
	s.summary = description
	return !s.declined, nil
}

func TestSetupSpotify(t *testing.T) {
	cfg := config.Default()
	ui := &scriptedUI{
		picks:   [][]int{{0}, {0, 3}},
		prompts: []string{"my-client-id", "cache.local"},
	}

	if err := Setup(context.Background(), cfg, ui, nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if cfg.Source.Player != config.PlayerSpotify || cfg.Spotify.ClientID != "my-client-id" {
		t.Errorf("spotify = %+v, player = %q", cfg.Spotify, cfg.Source.Player)
	}
	if !cfg.File.Enabled || !cfg.Redis.Enabled || cfg.SQLite.Enabled || cfg.Postgres.Enabled || cfg.Discord.Enabled {
		t.Errorf("enabled sinks wrong: file=%v sqlite=%v postgres=%v redis=%v discord=%v",
			cfg.File.Enabled, cfg.SQLite.Enabled, cfg.Postgres.Enabled, cfg.Redis.Enabled, cfg.Discord.Enabled)
	}
	if cfg.Redis.Host != "cache.local" {
		t.Errorf("Redis.Host = %q", cfg.Redis.Host)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if want := "Player: Spotify (client my-client-id)\nSinks: file, redis"; ui.summary != want {
		t.Errorf("summary = %q, want %q", ui.summary, want)
	}
}

func TestSetupSonosRooms(t *testing.T) {
	cfg := config.Default()
	ui := &scriptedUI{picks: [][]int{{1}, {2}, {}}}
	rooms := func(ctx context.Context) ([]string, error) {
		return []string{"Kitchen", "Office"}, nil
	}

	if err := Setup(context.Background(), cfg, ui, rooms); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if cfg.Source.Player != config.PlayerSonos || cfg.Sonos.Room != "Office" {
		t.Errorf("player = %q room = %q", cfg.Source.Player, cfg.Sonos.Room)
	}
	if cfg.Source.SourceID != "sonos" || cfg.Display.Label != "Sonos" {
		t.Errorf("identity = %q label = %q", cfg.Source.SourceID, cfg.Display.Label)
	}
}

func TestSetupSonosDiscoveryFails(t *testing.T) {
	cfg := config.Default()
	ui := &scriptedUI{picks: [][]int{{1}, {}}, prompts: []string{"Den"}}
	rooms := func(ctx context.Context) ([]string, error) {
		return nil, errors.New("no network")
	}

	if err := Setup(context.Background(), cfg, ui, rooms); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if cfg.Sonos.Room != "Den" {
		t.Errorf("Room = %q, want prompted value", cfg.Sonos.Room)
	}
}

func TestSetupRequiredFields(t *testing.T) {
	cfg := config.Default()
	ui := &scriptedUI{
		picks:   [][]int{{0}, {2, 4}},
		prompts: []string{"", "db", "me", "events", "https://discord.example/webhook"},
	}

	if err := Setup(context.Background(), cfg, ui, nil); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	p := cfg.Postgres
	if p.Host != "db" || p.User != "me" || p.DBName != "events" {
		t.Errorf("postgres = %+v", p)
	}
	if cfg.Discord.WebhookURL != "https://discord.example/webhook" {
		t.Errorf("WebhookURL = %q", cfg.Discord.WebhookURL)
	}
	want := []string{
		"Which player should tracklog watch?",
		"Spotify client ID",
		"Which sinks should record events?",
		"Postgres host",
		"Postgres user",
		"Postgres database",
		"Discord webhook URL",
	}
	if !reflect.DeepEqual(ui.asked, want) {
		t.Errorf("asked = %q\nwant  %q", ui.asked, want)
	}
}

func TestSetupCancelled(t *testing.T) {
	tests := []struct {
		name string
		ui   *scriptedUI
	}{
		{"player", &scriptedUI{}},
		{"client id", &scriptedUI{picks: [][]int{{0}}}},
		{"sinks", &scriptedUI{picks: [][]int{{0}}, prompts: []string{"id"}}},
		{"confirm", &scriptedUI{picks: [][]int{{0}, {}}, prompts: []string{"id"}, declined: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Setup(context.Background(), config.Default(), tt.ui, nil)
			if !errors.Is(err, ErrCancelled) {
				t.Errorf("Setup() error = %v, want ErrCancelled", err)
			}
		})
	}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestPicker(t *testing.T) {
	choices := []Choice{{Label: "a"}, {Label: "b", Checked: true}, {Label: "c"}}

	single := press(NewPicker("Pick", choices, false), "j", "j", "j", "k", "enter").(PickerModel)
	if got := single.Selected(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("single Selected() = %v, want [1]", got)
	}

	multi := press(NewPicker("Pick", choices, true), " ", "j", " ", "j", " ", "enter").(PickerModel)
	if got := multi.Selected(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("multi Selected() = %v, want [0 2]", got)
	}

	none := press(NewPicker("Pick", choices, true), " ", " ", "j", " ", "enter").(PickerModel)
	if got := none.Selected(); got == nil || len(got) != 0 {
		t.Errorf("empty multi Selected() = %#v, want empty non-nil", got)
	}

	cancelled := press(NewPicker("Pick", choices, false), "j", "esc").(PickerModel)
	if got := cancelled.Selected(); got != nil {
		t.Errorf("cancelled Selected() = %v, want nil", got)
	}

	view := NewPicker("Pick a sink", choices, true).View()
	if !strings.Contains(view, "Pick a sink") || !strings.Contains(view, "[x] b") {
		t.Errorf("View() = %q", view)
	}
}

func TestPrompt(t *testing.T) {
	m := press(NewPrompt("Room", "", "", ""), "D", "e", "n", " ", "enter").(PromptModel)
	if v, ok := m.Value(); !ok || v != "Den" {
		t.Errorf("Value() = %q, %v; want Den, true", v, ok)
	}
	if v, _ := NewPrompt("Room", "", "", "Office").Value(); v != "Office" {
		t.Errorf("prefilled Value() = %q", v)
	}

	m = press(NewPrompt("Room", "", "", "Kit"), "esc").(PromptModel)
	if _, ok := m.Value(); ok {
		t.Error("cancelled prompt confirmed")
	}
}
