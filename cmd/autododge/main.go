// autododge generates auto-played "dodger" gameplay videos and optionally
// publishes them.
//
// Usage:
//
//	autododge config             - Print freshly generated run configs
//	autododge themes             - List the themes of a settings profile
//	autododge render [output]    - Render one video
//	autododge serve              - Serve generation over HTTP (and SSH)
//	autododge upload <file>      - Publish a rendered video
//	autododge runs               - Show the run ledger
//
// Global flags:
//
//	--settings <path>   - Settings file (default search: ~/.autododge, ./configs, embedded)
//	--profile <name>    - Settings profile (default: table default)
//	--db <path>         - Run ledger database (default: ~/.autododge/runs.db)
//	--log-level <lvl>   - debug, info, warn, error
//	--env <path>        - Dotenv file to load (default: .env)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/autododge/internal/config"
)

var (
	// Global flags
	flagSettings string
	flagProfile  string
	flagDBPath   string
	flagLogLevel string
	flagEnvFile  string

	logger   *log.Logger
	settings config.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autododge",
	Short: "Auto Dodge - procedurally generated gameplay videos",
	Long: `Auto Dodge renders short videos of an auto-playing dodger game:
an AI pilot weaves through gap pairs while score, chat and a reaction cam
are drawn on top, with a synthesized soundtrack muxed in by ffmpeg.

Available commands:
  config   - Print generated run configs
  themes   - List theme palettes
  render   - Render one video to a file
  serve    - Serve POST /generate_video over HTTP (and ssh generate)
  upload   - Publish a rendered video
  runs     - Show the run ledger

Examples:
  autododge render clip.mp4
  autododge render --seed 12345 --duration 15 --profile v1 golden.mp4
  autododge serve --http :8080 --ssh :23234
  autododge runs --limit 5`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Path to settings YAML (default search order if empty)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Settings profile (default: table default)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.autododge/runs.db", "Path to run ledger database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env", ".env", "Dotenv file with PORT, AUTODODGE_FFMPEG and YT_* variables")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(runsCmd)
}

// setup loads the environment, builds the logger and resolves the settings profile.
func setup(_ *cobra.Command, _ []string) error {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot load %s: %w", flagEnvFile, err)
		}
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "autododge",
		Level:           level,
	})

	table, err := config.LoadSettings(flagSettings)
	if err != nil {
		return err
	}
	settings, err = table.Profile(flagProfile)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, table.Versions())
	}
	logger.Debug("settings loaded", "profile", settings.Version,
		"size", fmt.Sprintf("%dx%d", settings.Render.Width, settings.Render.Height))
	return nil
}
