package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/nightfall/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create the Nightfall configuration",
	Long: `View or create the Nightfall configuration.

Without arguments, displays the current configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/nightfall/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	if _, err := config.Load(); err != nil {
		var verrs config.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fmt.Fprintln(out, "# Problems:")
		for _, e := range verrs {
			fmt.Fprintf(out, "#   %s\n", e.Error())
		}
	}
	return writeSettings(out, viper.AllSettings())
}

// writeSettings prints the effective settings as YAML.
func writeSettings(out io.Writer, settings map[string]any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigFile), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize Nightfall.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: NIGHTFALL_* (e.g., NIGHTFALL_AGENT_BACKEND)")
	fmt.Fprintln(out, "A .env file in the current directory is loaded first.")
	return nil
}

const defaultConfigFile = `# Nightfall Configuration

game:
  # Seating order, which is also the speaking order.
  # roster: [Alder, Briar, Cedar, Dahlia, Ember, Fern]
  # Saboteurs to deal (0 = a quarter of the table, at least one)
  saboteurs: 0
  # Fixed seed for reproducible games (0 = random)
  seed: 0
  # Optional personalities added to an actor's prompts
  # personas:
  #   Hazel: Dry humour, distrusts anyone who talks first.

player:
  # The actor you play or watch; must be on the roster
  name: Alder
  # Options: player, character_view, omniscient
  mode: player

dispatch:
  # Attempts per decision before the turn fails
  max_attempts: 3
  retry_wait_ms: 1000
  # Concurrent requests in night and trial votes (0 = unbounded)
  max_parallel: 0
  # Keep the successful votes of a round when some actors fail
  allow_partial: false

agent:
  # Options: scripted (offline), claude (CLI), anthropic, openai
  backend: scripted
  command: claude
  model: ""
  # OpenAI-compatible endpoint, e.g. a local server
  base_url: ""
  # Environment variable holding the API key
  api_key_env: ""
  timeout_seconds: 120

display:
  # Scale for pauses between entries (0 = none)
  pacing: 1
  color: true

store:
  # SQLite journal for replay ("" = off)
  path: ""
  # One JSONL transcript per game ("" = off)
  transcript_dir: ""

logging:
  # debug, info, warn, error. Edits apply to a running game.
  level: info
  # Where debug.log is written (default: the state directory)
  dir: ""
`
