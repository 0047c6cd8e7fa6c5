// Package broadcast turns a stream of raw player states into deduplicated
// track events and fans each one out to the enabled sinks.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
	"github.com/tessro/tracklog/internal/sink"
)

// Result describes what a single raw state caused.
type Result struct {
	Emitted   bool
	Event     core.TrackEvent
	Recording string
	Delivered int
	Errors    []error
}

// Broadcaster owns the recording session and the dedup state. OnRawState
// calls are serialized, so a source that delivers concurrently is safe.
type Broadcaster struct {
	registry *sink.Registry
	source   core.SourceIdentity
	logger   *slog.Logger
	now      func() time.Time
	onActive func()

	// emit serializes OnRawState end to end so deliveries keep the order
	// in which states were detected.
	emit sync.Mutex

	mu        sync.Mutex
	recording string
	tracking  bool
	lastSeen  *StateKey
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithSource sets the identity deliveries are tagged with.
func WithSource(id core.SourceIdentity) Option {
	return func(b *Broadcaster) {
		b.source = id
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Broadcaster) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock sets the clock used for CapturedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Broadcaster) {
		if now != nil {
			b.now = now
		}
	}
}

// WithActivation sets the callback run when the host reports that the
// player became active, typically the subscriber's resubscribe hook.
func WithActivation(fn func()) Option {
	return func(b *Broadcaster) {
		b.onActive = fn
	}
}

// New creates a broadcaster delivering to the sinks in registry.
func New(registry *sink.Registry, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		registry: registry,
		source:   core.SpotifyTrackInfo,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Source returns the identity deliveries are tagged with.
func (b *Broadcaster) Source() core.SourceIdentity {
	return b.source
}

// SourceInfo returns the metadata sinks receive for this broadcaster's stream.
func (b *Broadcaster) SourceInfo() map[core.SourceIdentity]core.SourceInfo {
	return map[core.SourceIdentity]core.SourceInfo{
		b.source: {Name: b.source.SourceID, DataTypes: []string{b.source.DataType}},
	}
}

// StartTracking begins a recording session. The next state is always
// emitted, whatever was seen before.
func (b *Broadcaster) StartTracking(recording string) {
	b.mu.Lock()
	b.recording = recording
	b.tracking = true
	b.lastSeen = nil
	b.mu.Unlock()

	b.logger.Debug("started tracking", "recording", recording)
}

// StopTracking ends the session. Calling it when not tracking is a no-op.
func (b *Broadcaster) StopTracking() {
	b.mu.Lock()
	wasTracking := b.tracking
	b.recording = ""
	b.tracking = false
	b.lastSeen = nil
	b.mu.Unlock()

	if wasTracking {
		b.logger.Debug("stopped tracking")
	}
}

// Recording returns the current recording name and whether one is active.
func (b *Broadcaster) Recording() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording, b.tracking
}

// Activated forwards the "player became active" signal.
func (b *Broadcaster) Activated() {
	b.logger.Debug("player became active")
	if b.onActive != nil {
		b.onActive()
	}
}

// Cleanup forgets the session and dedup state.
func (b *Broadcaster) Cleanup() {
	b.StopTracking()
	b.logger.Debug("broadcaster cleaned up")
}

// OnRawState is the player callback. States that do not change the track or
// the pause state are dropped without side effects. Sink failures are
// collected in the result and never stop delivery to later sinks.
func (b *Broadcaster) OnRawState(ctx context.Context, raw core.RawState) Result {
	b.emit.Lock()
	defer b.emit.Unlock()

	key := KeyOf(raw)

	b.mu.Lock()
	if !ShouldEmit(b.lastSeen, key) {
		b.mu.Unlock()
		return Result{}
	}
	b.lastSeen = &key
	recording := core.NoRecording
	if b.tracking {
		recording = b.recording
	}
	b.mu.Unlock()

	ev := core.NewTrackEvent(raw, b.now())
	b.logger.Debug("track state changed",
		"track_id", ev.TrackID,
		"title", ev.Title,
		"artist", ev.Artist,
		"paused", ev.Paused,
		"position", ev.Position,
		"recording", recording)

	res := b.deliver(ctx, recording, ev)
	res.Emitted = true
	res.Event = ev
	res.Recording = recording
	return res
}

func (b *Broadcaster) deliver(ctx context.Context, recording string, ev core.TrackEvent) Result {
	display := b.registry.Display()
	if display != nil {
		if err := guard(func() error {
			display.Log(b.source, recording, ev)
			return nil
		}); err != nil {
			b.logger.Warn("display log failed", "err", err)
		}
	}

	result := &tlerrors.PartialResult[int]{}
	b.registry.ForEachEnabled(func(s sink.Sink) {
		err := guard(func() error {
			return s.Deliver(ctx, b.source, recording, ev)
		})
		if err != nil {
			result.AddError(tlerrors.NewSinkError(s.Name(), err))
			return
		}
		result.Data++
	})

	for _, err := range result.Errors {
		b.logger.Warn("sink delivery failed", "err", err, "track_id", ev.TrackID)
		if display != nil {
			_ = guard(func() error {
				display.Message(fmt.Sprintf("Delivery failed: %v", err))
				return nil
			})
		}
	}

	return Result{Delivered: result.Data, Errors: result.Errors}
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
