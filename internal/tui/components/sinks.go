package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tracklog/internal/styles"
)

// SinkRow is the dashboard view of one registered sink.
type SinkRow struct {
	Name    string
	Enabled bool
	State   string
}

// Sinks lists the registry's sinks and lets one be selected.
type Sinks struct {
	selected int
}

// NewSinks creates a new Sinks component
func NewSinks() *Sinks {
	return &Sinks{}
}

// SelectNext selects the next sink
func (s *Sinks) SelectNext(total int) {
	if s.selected < total-1 {
		s.selected++
	}
}

// SelectPrev selects the previous sink
func (s *Sinks) SelectPrev() {
	if s.selected > 0 {
		s.selected--
	}
}

// Selected returns the selected sink index
func (s *Sinks) Selected() int {
	return s.selected
}

// Render renders the sinks panel
func (s *Sinks) Render(rows []SinkRow, width, height int, focused bool) string {
	title := styles.PanelTitle("Sinks", focused)

	var content string
	if len(rows) == 0 {
		content = styles.Muted.Render("No sinks registered")
	} else {
		content = s.renderRows(rows, height-4, focused)
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

func (s *Sinks) renderRows(rows []SinkRow, maxLines int, focused bool) string {
	if s.selected >= len(rows) {
		s.selected = len(rows) - 1
	}

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(lines) >= maxLines {
			break
		}

		selector := "  "
		name := row.Name
		if focused && i == s.selected {
			selector = "▸ "
			name = styles.Highlight.Render(name)
		}

		dot := styles.Dim.Render("○")
		if row.Enabled {
			dot = styles.Playing.Render("●")
		}

		lines = append(lines, fmt.Sprintf("%s%s %-10s %s", selector, dot, name, styles.StateStyle(row.State).Render(row.State)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
