// Package sink defines the destinations track events are fanned out to and
// the registry that holds them.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
)

// InitState tracks whether a sink has received the first message of every
// stream it was prepared for.
type InitState int

const (
	Uninitialized InitState = iota
	Pending
	Success
	Failed
)

func (s InitState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sink is a destination for track events.
type Sink interface {
	Name() string
	// IsConfigured reports whether the sink has everything it needs to run.
	IsConfigured() bool
	Enabled() bool
	// Enable turns the sink on. It fails with ErrNotConfigured when the sink
	// is missing configuration.
	Enable() error
	Disable()
	// InitSaving prepares the sink for a recording and resets its
	// first-message bookkeeping for the given sources.
	InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error
	// Deliver hands an event to the sink. Implementations must not block on
	// network I/O.
	Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error
	// StopSaving flushes pending work. Safe to call when never started.
	StopSaving() error
	InitState() InitState
}

// Display is the sink used for user-facing log lines.
type Display interface {
	Sink
	Log(src core.SourceIdentity, recording string, ev core.TrackEvent)
	Message(msg string)
}

// Base carries the state every sink shares: the enabled flag, the
// initialization state and the per-stream first-message flags.
type Base struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	enabled bool
	state   InitState
	first   map[core.SourceIdentity]bool
}

// NewBase returns bookkeeping for a sink with the given name.
func NewBase(name string, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		name:   name,
		logger: logger.With("sink", name),
		first:  make(map[core.SourceIdentity]bool),
	}
}

// Name returns the sink name.
func (b *Base) Name() string {
	return b.name
}

// Logger returns the sink's logger.
func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// Enabled returns true if the sink accepts events.
func (b *Base) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// InitState returns the current initialization state.
func (b *Base) InitState() InitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// EnableIf enables the sink when configured is true.
func (b *Base) EnableIf(configured bool) error {
	if !configured {
		return tlerrors.NewSinkError(b.name, tlerrors.ErrNotConfigured)
	}
	b.mu.Lock()
	changed := !b.enabled
	b.enabled = true
	b.mu.Unlock()

	if changed {
		b.logger.Info("sink enabled")
	}
	return nil
}

// Disable stops the sink from accepting events.
func (b *Base) Disable() {
	b.mu.Lock()
	changed := b.enabled
	b.enabled = false
	b.mu.Unlock()

	if changed {
		b.logger.Info("sink disabled")
	}
}

// ResetSources marks every stream in sources as not yet delivered and moves
// the sink to Pending.
func (b *Base) ResetSources(sources map[core.SourceIdentity]core.SourceInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.first = make(map[core.SourceIdentity]bool, len(sources))
	for src := range sources {
		b.first[src] = false
	}
	b.state = Pending
}

// MarkDelivered records a delivery for src. It returns true exactly when this
// delivery completed initialization.
func (b *Base) MarkDelivered(src core.SourceIdentity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen, known := b.first[src]
	if !known || seen {
		return false
	}
	b.first[src] = true

	// A sink that failed InitSaving but later delivers on every stream has
	// recovered.
	if b.state != Pending && b.state != Failed {
		return false
	}
	for _, ok := range b.first {
		if !ok {
			return false
		}
	}
	b.state = Success
	b.logger.Info("sink initialized", "streams", len(b.first))
	return true
}

// Fail moves the sink to the Failed state.
func (b *Base) Fail(err error) error {
	b.mu.Lock()
	b.state = Failed
	b.mu.Unlock()

	err = fmt.Errorf("init %s: %w", b.name, err)
	b.logger.Error("sink initialization failed", "err", err)
	return err
}

// Reset returns the sink to Uninitialized.
func (b *Base) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Uninitialized
	b.first = make(map[core.SourceIdentity]bool)
}
