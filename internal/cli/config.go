package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/tracklog/internal/config"
	"github.com/tessro/tracklog/internal/wizard"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and creating tracklog configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, with secrets redacted.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where configuration is read from",
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values.

With --interactive, ask which player to watch and which sinks to enable first.`,
	RunE: runConfigInit,
}

var configInitInteractive bool

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configInitCmd.Flags().BoolVarP(&configInitInteractive, "interactive", "i", false, "choose player and sinks interactively")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := redacted(cfg)
	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), shown)
	}

	encoder := toml.NewEncoder(cmd.OutOrStdout())
	encoder.Indent = "  "
	return encoder.Encode(shown)
}

// redacted returns a copy of c with credentials masked.
func redacted(c *config.Config) config.Config {
	out := *c
	mask := func(s *string) {
		if *s != "" {
			*s = "********"
		}
	}
	mask(&out.Postgres.Password)
	mask(&out.Redis.Password)
	mask(&out.Discord.WebhookURL)
	return out
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	active := activeConfigPath()

	if JSONOutput() {
		return printJSON(out, map[string]any{
			"active":       active,
			"search_paths": config.SearchPaths(),
		})
	}

	if active == "" {
		fmt.Fprintln(out, "No config file found; using defaults and environment.")
	} else {
		fmt.Fprintln(out, active)
	}
	if Verbose() {
		fmt.Fprintln(out, "\nSearch order:")
		for _, p := range config.SearchPaths() {
			fmt.Fprintf(out, "  %s %s\n", StatusIcon(p == active), p)
		}
	}
	return nil
}

func activeConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.FindConfigFile()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	initial := config.Default()
	if configInitInteractive {
		if !wizard.IsTerminal() {
			return fmt.Errorf("--interactive needs a terminal")
		}
		if err := wizard.Setup(cmd.Context(), initial, wizard.Terminal(), sonosRooms); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# tracklog configuration")
	_, _ = fmt.Fprintln(f, "# Every setting can be overridden with TRACKLOG_<SECTION>_<KEY>.")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(initial); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(out, map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}
	fmt.Fprintf(out, "Created config file: %s\n", configPath)
	fmt.Fprintln(out, "\nNext steps:")
	if initial.Source.Player == config.PlayerSonos {
		fmt.Fprintln(out, "  1. Run 'tracklog sonos rooms' to check the speaker is reachable")
	} else {
		fmt.Fprintln(out, "  1. Set your Spotify client ID in the config file or via TRACKLOG_SPOTIFY_CLIENT_ID")
		fmt.Fprintln(out, "     and run 'tracklog auth login' to authenticate with Spotify")
	}
	fmt.Fprintln(out, "  2. Run 'tracklog sinks' to check the enabled sinks")
	fmt.Fprintln(out, "  3. Run 'tracklog record <name>' or 'tracklog watch'")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".tracklogrc"
	}
	return filepath.Join(home, ".tracklogrc")
}
