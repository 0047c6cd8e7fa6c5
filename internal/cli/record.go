package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record track changes under a recording name",
	Long: `Start a recording session and deliver every track change and
pause/resume to the sinks enabled in the config, tagged with <name>.

The session runs until interrupted. Send SIGUSR1 after reopening Spotify to
resubscribe without restarting.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	name := args[0]
	if name == "" {
		return fmt.Errorf("recording name must not be empty")
	}

	source, err := newStateSource(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	display := newDisplay(cfg, os.Stdout, logger)
	s := &session{
		registry:    newRegistry(cfg, display, logger),
		source:      source,
		identity:    sourceIdentity(cfg),
		interval:    time.Duration(cfg.Source.Interval) * time.Millisecond,
		maxFailures: cfg.Source.MaxFailures,
		logger:      logger,
		recording:   name,
	}
	return s.run(cmd.Context())
}
