package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/tracklog/internal/config"
	"github.com/tessro/tracklog/internal/sink"
	"github.com/tessro/tracklog/internal/styles"
)

var sinksCmd = &cobra.Command{
	Use:   "sinks",
	Short: "List sinks and whether they are configured",
	RunE:  runSinks,
}

func init() {
	rootCmd.AddCommand(sinksCmd)
}

type sinkStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Enabled    bool   `json:"enabled"`
	Target     string `json:"target,omitempty"`
}

// Status is the one-word summary shown in the table.
func (s sinkStatus) Status() string {
	switch {
	case s.Enabled && !s.Configured:
		return "misconfigured"
	case s.Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

func sinkStatuses(c *config.Config) []sinkStatus {
	statuses := []sinkStatus{{Name: sink.DisplayName, Configured: true, Enabled: true, Target: "stdout"}}
	for _, e := range buildSinks(c, logger) {
		statuses = append(statuses, sinkStatus{
			Name:       e.sink.Name(),
			Configured: e.sink.IsConfigured(),
			Enabled:    e.enabled,
			Target:     sinkTarget(c, e.sink.Name()),
		})
	}
	return statuses
}

func sinkTarget(c *config.Config, name string) string {
	switch name {
	case sink.FileName:
		return c.File.Dir
	case sink.SQLiteName:
		return c.SQLite.Path
	case sink.PostgresName:
		if c.Postgres.Host == "" {
			return ""
		}
		return fmt.Sprintf("%s:%d/%s", c.Postgres.Host, c.Postgres.Port, c.Postgres.DBName)
	case sink.RedisName:
		if c.Redis.Host == "" {
			return ""
		}
		return fmt.Sprintf("%s:%d/%d", c.Redis.Host, c.Redis.Port, c.Redis.DB)
	case sink.DiscordName:
		if c.Discord.WebhookURL == "" {
			return ""
		}
		return TruncateString(c.Discord.WebhookURL, 40)
	}
	return ""
}

func runSinks(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	statuses := sinkStatuses(cfg)

	if JSONOutput() {
		return printJSON(out, statuses)
	}

	table := NewTableWriter(out, "", "SINK", "STATUS", "TARGET")
	for _, s := range statuses {
		status := s.Status()
		style := styles.StateStyle("uninitialized")
		switch status {
		case "enabled":
			style = styles.StateStyle("success")
		case "misconfigured":
			style = styles.StateStyle("failed")
		}
		table.Row(StatusIcon(s.Enabled), s.Name, style.Render(status), s.Target)
	}
	table.Flush()
	return nil
}
