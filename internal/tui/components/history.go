package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tracklog/internal/core"
	"github.com/tessro/tracklog/internal/styles"
)

// HistoryEntry is one delivered track event.
type HistoryEntry struct {
	Event     core.TrackEvent
	Recording string
}

// History displays delivered events, newest first.
type History struct {
	offset int
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// ScrollDown moves the view one entry towards older events.
func (h *History) ScrollDown(total int) {
	if h.offset < total-1 {
		h.offset++
	}
}

// ScrollUp moves the view one entry towards newer events.
func (h *History) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

// Offset returns the index of the first visible entry.
func (h *History) Offset() int {
	return h.offset
}

// Render renders the history panel
func (h *History) Render(entries []HistoryEntry, now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("History (%d)", len(entries)), focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No events yet")
	} else {
		content = h.renderHistory(entries, now, width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			content,
		))
}

func (h *History) renderHistory(entries []HistoryEntry, now time.Time, width, maxLines int) string {
	if h.offset >= len(entries) {
		h.offset = max(len(entries)-1, 0)
	}
	lines := make([]string, 0, maxLines)

	// icon (2) + separator (3) + gap before the time (1)
	const overhead = 6

	for _, entry := range entries[h.offset:] {
		if len(lines) >= maxLines {
			break
		}
		ev := entry.Event

		timeAgo := FormatTimeAgo(ev.CapturedAt, now)
		timeWidth := lipgloss.Width(timeAgo)

		icon := styles.Playing.Render("▶")
		if ev.Paused {
			icon = styles.Paused.Render("⏸")
		}

		title, artist := fitTitleArtist(ev.Title, ev.Artist, width-overhead-timeWidth)
		info := fmt.Sprintf("%s — %s", title, artist)

		padding := max(width-2-lipgloss.Width(info)-timeWidth, 1)
		lines = append(lines, fmt.Sprintf("%s %s%*s%s",
			icon,
			info,
			padding, "",
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fitTitleArtist truncates title and artist to share available cells,
// keeping at least a third for the artist.
func fitTitleArtist(title, artist string, available int) (string, string) {
	titleLen := lipgloss.Width(title)
	artistLen := lipgloss.Width(artist)
	if titleLen+artistLen <= available {
		return title, artist
	}

	artistSpace := max(available/3, 8)
	artistSpace = max(min(artistSpace, available-8, artistLen), 0)
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// FormatTimeAgo renders the age of t compactly: now, 5m, 3h or a date.
func FormatTimeAgo(t, now time.Time) string {
	d := now.Sub(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
