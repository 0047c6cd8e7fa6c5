// Package tui is a live terminal dashboard of track events and sink status.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tracklog/internal/core"
	"github.com/tessro/tracklog/internal/sink"
	"github.com/tessro/tracklog/internal/styles"
	"github.com/tessro/tracklog/internal/tui/components"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelSinks
	PanelHistory
	PanelMessages
	panelCount
)

const (
	maxHistory  = 200
	maxMessages = 200
)

// Options configures the dashboard.
type Options struct {
	// Recording is shown in the now playing panel; empty means not recording.
	Recording string
	// Activate asks the watcher to resubscribe.
	Activate    func()
	RefreshRate time.Duration
}

// Model is the main TUI model
type Model struct {
	registry *sink.Registry
	display  *Display
	opts     Options
	keys     keyMap
	help     help.Model
	now      func() time.Time

	width        int
	height       int
	focusedPanel Panel

	current  *core.TrackEvent
	history  []components.HistoryEntry
	messages []components.Message
	sinks    []components.SinkRow

	nowPlaying   *components.NowPlaying
	sinksView    *components.Sinks
	historyView  *components.History
	messagesView *components.Messages

	showHelp bool
	quitting bool
}

// NewModel creates a dashboard over registry, fed by display.
func NewModel(registry *sink.Registry, display *Display, opts Options) Model {
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = time.Second
	}
	m := Model{
		registry:     registry,
		display:      display,
		opts:         opts,
		keys:         defaultKeys(),
		help:         help.New(),
		now:          time.Now,
		nowPlaying:   components.NewNowPlaying(),
		sinksView:    components.NewSinks(),
		historyView:  components.NewHistory(),
		messagesView: components.NewMessages(),
	}
	m.sinks = m.sinkRows()
	return m
}

type tickMsg time.Time

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.display.listen())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.sinks = m.sinkRows()
		return m, m.tick()

	case eventMsg:
		ev := msg.event
		m.current = &ev
		if ev.HasTrack() {
			m.history = append([]components.HistoryEntry{{Event: ev, Recording: msg.recording}}, m.history...)
			if len(m.history) > maxHistory {
				m.history = m.history[:maxHistory]
			}
		}
		m.sinks = m.sinkRows()
		return m, m.display.listen()

	case messageMsg:
		m.addMessage(msg.text, msg.at)
		return m, m.display.listen()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.NextPanel):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
	case key.Matches(msg, m.keys.PrevPanel):
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
	case key.Matches(msg, m.keys.Resubscribe):
		if m.opts.Activate != nil {
			m.opts.Activate()
			m.addMessage("Resubscribing to player", m.now())
		}
	case key.Matches(msg, m.keys.Down):
		switch m.focusedPanel {
		case PanelSinks:
			m.sinksView.SelectNext(len(m.sinks))
		case PanelHistory:
			m.historyView.ScrollDown(len(m.history))
		}
	case key.Matches(msg, m.keys.Up):
		switch m.focusedPanel {
		case PanelSinks:
			m.sinksView.SelectPrev()
		case PanelHistory:
			m.historyView.ScrollUp()
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.focusedPanel == PanelSinks {
			m.toggleSelectedSink()
		}
	}
	return m, nil
}

// toggleSelectedSink enables or disables the selected sink. The display
// stays on.
func (m *Model) toggleSelectedSink() {
	i := m.sinksView.Selected()
	if i < 0 || i >= len(m.sinks) {
		return
	}
	s, ok := m.registry.Get(m.sinks[i].Name)
	if !ok || s.Name() == sink.DisplayName {
		return
	}

	if s.Enabled() {
		s.Disable()
		m.addMessage(fmt.Sprintf("Disabled %s", s.Name()), m.now())
	} else if err := s.Enable(); err != nil {
		m.addMessage(fmt.Sprintf("Cannot enable %s: %v", s.Name(), err), m.now())
	} else {
		m.addMessage(fmt.Sprintf("Enabled %s", s.Name()), m.now())
	}
	m.sinks = m.sinkRows()
}

func (m *Model) addMessage(text string, at time.Time) {
	m.messages = append(m.messages, components.Message{Text: text, At: at})
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
}

func (m Model) sinkRows() []components.SinkRow {
	var rows []components.SinkRow
	if d := m.registry.Display(); d != nil {
		rows = append(rows, components.SinkRow{Name: d.Name(), Enabled: d.Enabled(), State: d.InitState().String()})
	}
	for _, s := range m.registry.Sinks() {
		rows = append(rows, components.SinkRow{Name: s.Name(), Enabled: s.Enabled(), State: s.InitState().String()})
	}
	return rows
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Left: now playing over messages. Right: sinks over history.
	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 3

	now := m.now()
	nowPlaying := m.nowPlaying.Render(m.current, m.opts.Recording, now, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	messages := m.messagesView.Render(m.messages, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelMessages)
	sinks := m.sinksView.Render(m.sinks, rightWidth-2, topHeight-2, m.focusedPanel == PanelSinks)
	history := m.historyView.Render(m.history, now, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, messages)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, sinks, history)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	statusBar := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(m.help.ShortHelpView(m.keys.ShortHelp()))

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderHelp() string {
	title := styles.Title.Render("tracklog - Keyboard Shortcuts")
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(body))
}

// NewProgram returns a full-screen program running m.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}
