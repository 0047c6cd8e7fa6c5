package wizard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is one entry in a picker.
type Choice struct {
	Label  string
	Detail string
	// Checked preselects the choice in a multi-select picker.
	Checked bool
}

// PickerModel is the bubbletea model for choosing one or several entries.
type PickerModel struct {
	title     string
	choices   []Choice
	multi     bool
	cursor    int
	confirmed bool
	width     int
	height    int
}

// Styles for the picker
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	pickerItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	pickerCheckedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	pickerDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewPicker creates a picker. With multi set, space toggles entries and
// enter confirms the checked set.
func NewPicker(title string, choices []Choice, multi bool) PickerModel {
	return PickerModel{
		title:   title,
		choices: append([]Choice(nil), choices...),
		multi:   multi,
		width:   80,
		height:  20,
	}
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter":
			if len(m.choices) > 0 {
				m.confirmed = true
				return m, tea.Quit
			}

		case " ":
			if m.multi && m.cursor < len(m.choices) {
				m.choices[m.cursor].Checked = !m.choices[m.cursor].Checked
			} else if !m.multi && len(m.choices) > 0 {
				m.confirmed = true
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(len(m.choices)-1, 0)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteString("\n\n")

	if len(m.choices) == 0 {
		b.WriteString(pickerDetailStyle.Render("Nothing to choose from"))
		b.WriteString("\n")
	}
	for i, c := range m.choices {
		var line strings.Builder
		if m.multi {
			if c.Checked {
				line.WriteString(pickerCheckedStyle.Render("[x] "))
			} else {
				line.WriteString(pickerDetailStyle.Render("[ ] "))
			}
		}
		line.WriteString(c.Label)
		if c.Detail != "" {
			line.WriteString(" " + pickerDetailStyle.Render("("+c.Detail+")"))
		}

		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("▸ " + line.String()))
		} else {
			b.WriteString(pickerItemStyle.Render("  " + line.String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.multi {
		b.WriteString(pickerDetailStyle.Render("↑/↓ navigate • space toggle • enter confirm • esc cancel"))
	} else {
		b.WriteString(pickerDetailStyle.Render("↑/↓ navigate • enter select • esc cancel"))
	}
	return b.String()
}

// Selected returns the chosen indexes: the cursor for a single picker, the
// checked entries for a multi picker. It is nil when cancelled.
func (m PickerModel) Selected() []int {
	if !m.confirmed {
		return nil
	}
	if !m.multi {
		return []int{m.cursor}
	}
	selected := []int{}
	for i, c := range m.choices {
		if c.Checked {
			selected = append(selected, i)
		}
	}
	return selected
}

// RunPicker runs a picker and returns the chosen indexes, or nil if the user
// cancelled.
func RunPicker(title string, choices []Choice, multi bool) ([]int, error) {
	p := tea.NewProgram(NewPicker(title, choices, multi))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(PickerModel).Selected(), nil
}
