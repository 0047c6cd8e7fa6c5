package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/tracklog/internal/core"
	"github.com/tessro/tracklog/internal/sink"
)

type eventMsg struct {
	event     core.TrackEvent
	recording string
}

type messageMsg struct {
	text string
	at   time.Time
}

// Display is the dashboard's display sink. Events and messages are queued for
// the program and dropped once the dashboard has closed.
type Display struct {
	*sink.Base

	msgs      chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewDisplay creates a display sink that feeds a dashboard.
func NewDisplay(logger *slog.Logger) *Display {
	return &Display{
		Base: sink.NewBase(sink.DisplayName, logger),
		msgs: make(chan tea.Msg, 64),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// IsConfigured is always true.
func (d *Display) IsConfigured() bool {
	return true
}

// Enable turns on event forwarding.
func (d *Display) Enable() error {
	if err := d.EnableIf(true); err != nil {
		return err
	}
	d.Message("Display logging enabled")
	return nil
}

// InitSaving resets first-message tracking for a recording.
func (d *Display) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	d.ResetSources(sources)
	d.Message(fmt.Sprintf("Display initialized for recording: %s", recording))
	return nil
}

// Deliver does nothing; events reach the dashboard through Log.
func (d *Display) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	return nil
}

// Log forwards ev to the dashboard.
func (d *Display) Log(src core.SourceIdentity, recording string, ev core.TrackEvent) {
	if !d.Enabled() {
		return
	}
	if d.MarkDelivered(src) {
		d.Message("Display initialized successfully")
	}
	d.send(eventMsg{event: ev, recording: recording})
}

// Message forwards a status line to the dashboard.
func (d *Display) Message(msg string) {
	d.send(messageMsg{text: msg, at: d.now()})
}

// StopSaving resets initialization state.
func (d *Display) StopSaving() error {
	if d.InitState() == sink.Uninitialized {
		return nil
	}
	d.Reset()
	d.Message("Display stopped")
	return nil
}

// Close stops forwarding. Pending and later sends are discarded.
func (d *Display) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

func (d *Display) send(msg tea.Msg) {
	select {
	case d.msgs <- msg:
	case <-d.done:
	}
}

// listen waits for the next forwarded message.
func (d *Display) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-d.msgs:
			return msg
		case <-d.done:
			return nil
		}
	}
}

var _ sink.Display = (*Display)(nil)
