package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tracklog/internal/core"
	"github.com/tessro/tracklog/internal/styles"
)

// NowPlaying displays the most recent track event.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel. ev is nil before the first event.
func (n *NowPlaying) Render(ev *core.TrackEvent, recording string, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if ev == nil || !ev.HasTrack() {
		content = styles.Muted.Render("No track playing")
	} else {
		content = n.renderTrack(*ev, now, width-4)
	}

	footer := styles.Dim.Render("Not recording")
	if recording != "" {
		footer = styles.Label.Render("● REC ") + recording
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			content,
			"",
			footer,
		))
}

func (n *NowPlaying) renderTrack(ev core.TrackEvent, now time.Time, width int) string {
	icon := styles.StatusIcon(!ev.Paused)
	title := styles.Title.Width(max(width-4, 1)).Render(ev.Title)
	artist := styles.Subtitle.Render(ev.Artist)
	album := styles.Dim.Render(ev.Album)

	position := EstimatePosition(ev, now)
	var percent float64
	if ev.Duration > 0 {
		percent = float64(position) / float64(ev.Duration) * 100
	}
	bar := styles.ProgressBar(percent, max(width-14, 10))
	progress := fmt.Sprintf("%s %s %s", formatDuration(position), bar, formatDuration(ev.Duration))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
	)
}

// EstimatePosition extrapolates the playback position from when ev was
// captured, clamped to the track duration.
func EstimatePosition(ev core.TrackEvent, now time.Time) time.Duration {
	pos := ev.Position
	if !ev.Paused && ev.PlaybackRate > 0 && !ev.CapturedAt.IsZero() {
		if elapsed := now.Sub(ev.CapturedAt); elapsed > 0 {
			pos += time.Duration(float64(elapsed) * ev.PlaybackRate)
		}
	}
	if ev.Duration > 0 && pos > ev.Duration {
		pos = ev.Duration
	}
	return pos
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
