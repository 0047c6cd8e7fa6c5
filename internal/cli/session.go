package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tessro/tracklog/internal/broadcast"
	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
	"github.com/tessro/tracklog/internal/sink"
	"github.com/tessro/tracklog/internal/tail"
)

// session wires a player source through a watcher and a broadcaster into a
// sink registry.
type session struct {
	registry    *sink.Registry
	source      core.StateSource
	identity    core.SourceIdentity
	interval    time.Duration
	maxFailures int
	logger      *slog.Logger

	// recording is empty for an untracked session.
	recording string
	// activations resubscribes the watcher, like the activation signal.
	activations <-chan struct{}
}

// run blocks until ctx is cancelled or a stop signal arrives. Activation
// signals resubscribe the watcher.
func (s *session) run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, err := range s.registry.EnableConfigured() {
		if !errors.Is(err, tlerrors.ErrNotConfigured) {
			return err
		}
	}

	var watcher *tail.Watcher
	b := broadcast.New(s.registry,
		broadcast.WithSource(s.identity),
		broadcast.WithLogger(s.logger),
		broadcast.WithActivation(func() { watcher.Activated() }),
	)
	watcher = tail.NewWatcher(s.source, func(ctx context.Context, raw core.RawState) {
		b.OnRawState(ctx, raw)
	},
		tail.WithInterval(s.interval),
		tail.WithMaxFailures(s.maxFailures),
		tail.WithLogger(s.logger),
	)

	if s.recording != "" {
		s.logger.Info("recording", "name", s.recording, "sinks", s.registry.EnabledCount())
		if err := s.registry.InitSaving(s.recording, b.SourceInfo()); err != nil {
			// Failed sinks still receive events and recover on delivery.
			s.logger.Warn("some sinks failed to initialize", "err", err)
			if d := s.registry.Display(); d != nil {
				d.Message(fmt.Sprintf("Initialization failed: %v", err))
			}
		}
		b.StartTracking(s.recording)
	}
	defer s.shutdown(b, watcher)

	if err := watcher.Subscribe(ctx); err != nil {
		return err
	}

	activate := make(chan os.Signal, 1)
	if sigs := activationSignals(); len(sigs) > 0 {
		signal.Notify(activate, sigs...)
		defer signal.Stop(activate)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-activate:
			b.Activated()
		case <-s.activations:
			b.Activated()
		}
	}
}

func (s *session) shutdown(b *broadcast.Broadcaster, watcher *tail.Watcher) {
	watcher.Unsubscribe()
	b.StopTracking()
	if err := s.registry.StopSaving(); err != nil {
		s.logger.Warn("stop sinks", "err", err)
	}
	b.Cleanup()
}
