package tail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
)

// Handler receives every raw state the watcher observes.
type Handler func(ctx context.Context, state core.RawState)

// Watcher polls a player and hands each observed state to a handler. It is
// the subscription to the player: it can drop itself after repeated failures
// and be resubscribed when the player becomes active again.
type Watcher struct {
	source      core.StateSource
	handler     Handler
	interval    time.Duration
	maxFailures int
	logger      *slog.Logger

	mu     sync.Mutex
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithMaxFailures sets how many consecutive poll errors end the subscription.
// Zero keeps polling forever.
func WithMaxFailures(n int) WatcherOption {
	return func(w *Watcher) {
		if n >= 0 {
			w.maxFailures = n
		}
	}
}

// WithLogger sets the logger used for poll errors.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source core.StateSource, handler Handler, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:      source,
		handler:     handler,
		interval:    time.Second,
		maxFailures: 10,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe starts polling in the background. Calling it while already
// subscribed is a no-op.
func (w *Watcher) Subscribe(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return nil
	}
	if w.source == nil || w.handler == nil {
		return tlerrors.SubscriptionError(errors.New("no player source"))
	}

	w.parent = ctx
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go w.run(runCtx, done)

	w.logger.Debug("subscribed to player state", "interval", w.interval)
	return nil
}

// Activated resubscribes using the context of the last Subscribe call. It is
// meant to be wired to a "player became active" signal.
func (w *Watcher) Activated() {
	w.mu.Lock()
	parent := w.parent
	w.mu.Unlock()

	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		return
	}
	if err := w.Subscribe(parent); err != nil {
		w.logger.Error("resubscribe failed", "err", err)
	}
}

// Unsubscribe stops polling and waits for the poll loop to exit.
func (w *Watcher) Unsubscribe() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Subscribed returns true while the poll loop is running.
func (w *Watcher) Subscribed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Done returns a channel closed when the current poll loop exits, or nil if
// there is none.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer w.release(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failures := 0
	for {
		if !w.poll(ctx, &failures) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll fetches one state and reports whether the loop should continue.
func (w *Watcher) poll(ctx context.Context, failures *int) bool {
	state, err := w.source.GetState(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		*failures++
		w.logger.Warn("poll player state", "err", err, "failures", *failures)
		if w.maxFailures > 0 && *failures >= w.maxFailures {
			w.logger.Error("dropping player subscription",
				"err", tlerrors.SubscriptionError(err), "failures", *failures)
			return false
		}
		return true
	}

	*failures = 0
	if state != nil {
		w.handler(ctx, *state)
	}
	return true
}

// release clears the subscription if it still belongs to this loop.
func (w *Watcher) release(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == done {
		w.cancel()
		w.cancel = nil
	}
}
