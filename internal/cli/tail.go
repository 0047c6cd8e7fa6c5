package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/tracklog/internal/sink"
	"github.com/tessro/tracklog/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch the player and print track changes and pause/resume as they
happen. Nothing is recorded; no sinks other than the console are used.

Template fields: {{.Recording}} {{.Title}} {{.Artist}} {{.Album}}
{{.Status}} {{.Position}} {{.Duration}} {{.TrackID}}`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default from config)")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	source, err := newStateSource(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	var extra []tail.FormatterOption
	if tailNoEmoji {
		extra = append(extra, tail.WithEmoji(false))
	}
	if tailTimestamp {
		extra = append(extra, tail.WithTimestamp(true))
	}
	if tailFormat != "" {
		extra = append(extra, tail.WithTemplate(tailFormat))
	}

	interval := tailInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Source.Interval) * time.Millisecond
	}

	display := newDisplay(cfg, os.Stdout, logger, extra...)
	s := &session{
		registry:    sink.NewRegistry(display, logger),
		source:      source,
		identity:    sourceIdentity(cfg),
		interval:    interval,
		maxFailures: cfg.Source.MaxFailures,
		logger:      logger,
	}
	return s.run(cmd.Context())
}
