package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tracklog/internal/styles"
)

// Message is a status line raised by a sink or the broadcaster.
type Message struct {
	Text string
	At   time.Time
}

// Messages shows the most recent status lines, oldest at the top.
type Messages struct{}

// NewMessages creates a new Messages component
func NewMessages() *Messages {
	return &Messages{}
}

// Render renders the messages panel
func (m *Messages) Render(msgs []Message, width, height int, focused bool) string {
	title := styles.PanelTitle("Messages", focused)

	maxLines := max(height-4, 1)
	if len(msgs) > maxLines {
		msgs = msgs[len(msgs)-maxLines:]
	}

	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		line := styles.Dim.Render(msg.At.Format("15:04:05")) + " " + truncate(msg.Text, width-13)
		lines = append(lines, line)
	}
	content := styles.Muted.Render("Nothing yet")
	if len(lines) > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
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
