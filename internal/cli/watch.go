package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/tracklog/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch [name]",
	Short: "Live dashboard of playback, sinks and events",
	Long: `Open a full-screen dashboard that shows the current track, every
delivered event and the state of each sink. With a name, the session records
exactly like 'tracklog record <name>'.

Sinks can be switched on and off from the dashboard. Log lines go to
log.file when set and are discarded otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var recording string
	if len(args) == 1 {
		recording = args[0]
	}

	// Anything written to stderr would tear the full-screen view.
	log := logger
	if cfg.Log.File == "" {
		log = slog.New(slog.DiscardHandler)
	}

	source, err := newStateSource(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	display := tui.NewDisplay(log)
	registry := newRegistry(cfg, display, log)
	activations := make(chan struct{}, 1)

	s := &session{
		registry:    registry,
		source:      source,
		identity:    sourceIdentity(cfg),
		interval:    time.Duration(cfg.Source.Interval) * time.Millisecond,
		maxFailures: cfg.Source.MaxFailures,
		logger:      log,
		recording:   recording,
		activations: activations,
	}

	model := tui.NewModel(registry, display, tui.Options{
		Recording: recording,
		Activate: func() {
			select {
			case activations <- struct{}{}:
			default:
			}
		},
	})
	p := tui.NewProgram(model)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		err := s.run(ctx)
		errc <- err
		if err != nil {
			p.Quit()
		}
	}()

	_, uiErr := p.Run()
	cancel()
	display.Close()
	if err := <-errc; err != nil {
		return err
	}
	return uiErr
}
