package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/tracklog/internal/core"
)

// Formatter formats track events for output.
type Formatter struct {
	label         string
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithLabel sets the prefix naming the player, e.g. "Spotify".
func WithLabel(label string) FormatterOption {
	return func(f *Formatter) {
		if label != "" {
			f.label = label
		}
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		label:         "Spotify",
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(recording string, e core.TrackEvent) string {
	if f.template != nil {
		return f.formatTemplate(recording, e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e core.TrackEvent) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.CapturedAt.Local().Format("15:04:05"))
	}

	if f.showEmoji {
		parts = append(parts, eventEmoji(e))
	}

	parts = append(parts, f.Describe(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(recording string, e core.TrackEvent) string {
	data := templateData{
		Label:        f.label,
		Emoji:        eventEmoji(e),
		Status:       e.Status(),
		Timestamp:    e.CapturedAt,
		Time:         e.CapturedAt.Local().Format("15:04:05"),
		Recording:    recording,
		TrackID:      e.TrackID,
		Title:        e.Title,
		Artist:       e.Artist,
		Album:        e.Album,
		Position:     formatClock(e.Position),
		Duration:     formatClock(e.Duration),
		PlaybackRate: e.PlaybackRate,
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Label        string
	Emoji        string
	Status       string
	Timestamp    time.Time
	Time         string
	Recording    string
	TrackID      string
	Title        string
	Artist       string
	Album        string
	Position     string
	Duration     string
	PlaybackRate float64
}

// Describe returns a human-readable description of the event.
func (f *Formatter) Describe(e core.TrackEvent) string {
	if !e.HasTrack() {
		return fmt.Sprintf("%s: nothing playing", f.label)
	}
	return fmt.Sprintf("%s: %s by %s - %s", f.label, e.Title, e.Artist, e.Status())
}

func eventEmoji(e core.TrackEvent) string {
	switch {
	case !e.HasTrack():
		return "⏹️"
	case e.Paused:
		return "⏸️"
	default:
		return "🎵"
	}
}

// formatClock formats a duration as m:ss or h:mm:ss.
func formatClock(d time.Duration) string {
	seconds := int(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
