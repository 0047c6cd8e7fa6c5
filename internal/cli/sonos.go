package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/tracklog/internal/sonos"
)

var sonosCmd = &cobra.Command{
	Use:   "sonos",
	Short: "Inspect Sonos speakers",
}

var sonosRoomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List Sonos rooms on the local network",
	Long: `Discover Sonos speakers and list their groups. Use a room name as
sonos.room to record what that room's group is playing.`,
	RunE: runSonosRooms,
}

func init() {
	sonosCmd.AddCommand(sonosRoomsCmd)
	rootCmd.AddCommand(sonosCmd)
}

func discoveryTimeout() time.Duration {
	return time.Duration(cfg.Sonos.DiscoveryTimeout) * time.Millisecond
}

func runSonosRooms(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	groups, err := sonos.Groups(cmd.Context(), discoveryTimeout())
	if err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(out, groups)
	}

	table := NewTableWriter(out, "", "GROUP", "COORDINATOR", "MEMBERS")
	for _, g := range groups {
		var members []string
		selected := false
		for _, m := range g.Members {
			members = append(members, m.Name)
			selected = selected || strings.EqualFold(m.Name, cfg.Sonos.Room)
		}
		coordinator := ""
		if g.Coordinator != nil {
			coordinator = g.Coordinator.IP
		}
		table.Row(StatusIcon(selected), g.Name, coordinator, strings.Join(members, ", "))
	}
	table.Flush()
	if Verbose() {
		fmt.Fprintf(out, "\n%d group(s) found\n", len(groups))
	}
	return nil
}

// sonosRooms lists room names for the setup wizard.
func sonosRooms(ctx context.Context) ([]string, error) {
	groups, err := sonos.Groups(ctx, discoveryTimeout())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, g := range groups {
		for _, m := range g.Members {
			names = append(names, m.Name)
		}
	}
	return names, nil
}
