package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PromptModel is the bubbletea model for a single line of text input.
type PromptModel struct {
	title     string
	hint      string
	input     textinput.Model
	confirmed bool
}

var promptHintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("243"))

// NewPrompt creates a prompt prefilled with value.
func NewPrompt(title, placeholder, hint, value string) PromptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 50
	ti.SetValue(value)
	ti.Focus()

	return PromptModel{
		title: title,
		hint:  hint,
		input: ti,
	}
}

// Init initializes the model.
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model.
func (m PromptModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.hint != "" {
		b.WriteString(promptHintStyle.Render(m.hint))
		b.WriteString("\n")
	}
	b.WriteString(promptHintStyle.Render("enter confirm • esc cancel"))
	return b.String()
}

// Value returns the entered text and whether the user confirmed it.
func (m PromptModel) Value() (string, bool) {
	return strings.TrimSpace(m.input.Value()), m.confirmed
}

// RunPrompt asks for one line of text. ok is false when cancelled.
func RunPrompt(title, placeholder, hint, value string) (string, bool, error) {
	p := tea.NewProgram(NewPrompt(title, placeholder, hint, value))
	finalModel, err := p.Run()
	if err != nil {
		return "", false, err
	}
	v, ok := finalModel.(PromptModel).Value()
	return v, ok, nil
}
