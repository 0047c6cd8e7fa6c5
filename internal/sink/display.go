package sink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tessro/tracklog/internal/core"
	"github.com/tessro/tracklog/internal/styles"
	"github.com/tessro/tracklog/internal/tail"
)

// DisplayName is the registry name of the display sink.
const DisplayName = "display"

// DisplaySink writes one human-readable line per event. It persists nothing,
// so Deliver is a no-op and events reach it through Log.
type DisplaySink struct {
	*Base
	formatter *tail.Formatter
	color     bool

	mu  sync.Mutex
	out io.Writer
}

// NewDisplay creates a display sink writing to out. Lines are colored only
// when out is a terminal.
func NewDisplay(out io.Writer, logger *slog.Logger, opts ...tail.FormatterOption) *DisplaySink {
	if out == nil {
		out = os.Stdout
	}
	return &DisplaySink{
		Base:      NewBase(DisplayName, logger),
		formatter: tail.NewFormatter(opts...),
		color:     isTerminal(out),
		out:       out,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsConfigured is always true; the display needs no setup.
func (d *DisplaySink) IsConfigured() bool {
	return true
}

// Enable turns on event lines.
func (d *DisplaySink) Enable() error {
	if err := d.EnableIf(true); err != nil {
		return err
	}
	d.Message("Display logging enabled")
	return nil
}

// InitSaving resets first-message tracking for a recording.
func (d *DisplaySink) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	d.ResetSources(sources)
	d.Message(fmt.Sprintf("Display initialized for recording: %s", recording))
	return nil
}

// Deliver does nothing; see Log.
func (d *DisplaySink) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	return nil
}

// Log writes a line for ev and counts it as the stream's first message.
func (d *DisplaySink) Log(src core.SourceIdentity, recording string, ev core.TrackEvent) {
	if !d.Enabled() {
		return
	}
	if d.MarkDelivered(src) {
		d.Message("Display initialized successfully")
	}

	line := d.formatter.Format(recording, ev)
	switch {
	case !ev.HasTrack():
		line = d.render(styles.Stopped, line)
	case ev.Paused:
		line = d.render(styles.Paused, line)
	default:
		line = d.render(styles.Playing, line)
	}
	d.writeLine(line)
}

// Message writes a status line regardless of the enabled flag.
func (d *DisplaySink) Message(msg string) {
	d.writeLine(d.render(styles.Message, msg))
}

// StopSaving resets initialization state.
func (d *DisplaySink) StopSaving() error {
	if d.InitState() == Uninitialized {
		return nil
	}
	d.Reset()
	d.Message("Display stopped")
	return nil
}

func (d *DisplaySink) render(style lipgloss.Style, s string) string {
	if !d.color {
		return s
	}
	return style.Render(s)
}

func (d *DisplaySink) writeLine(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := fmt.Fprintln(d.out, line); err != nil {
		d.Logger().Warn("write display line", "err", err)
	}
}

var _ Display = (*DisplaySink)(nil)
