// stage runs gridstage scenes in the terminal.
//
// Usage:
//
//	stage list                  - List registered scenes
//	stage play [scene]          - Play a scene, or pick one from a menu
//	stage serve                 - Start an SSH server for remote play
//	stage scores [scene]        - Show high scores
//	stage prefs show|check      - Inspect a preference file
//
// Global flags:
//
//	--config <path>     - Engine config YAML
//	--fps <rate>        - Override the frame rate
//	--seed <value>      - RNG seed for reproducible runs
//	--db <path>         - Scores database (default: ~/.gridstage/scores.db)
//	--log-level <level> - debug, info, warn or error
//	--log-file <path>   - Write logs to a file instead of discarding them
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/version"

	// Import games to register them
	_ "github.com/vovakirdan/gridstage/internal/games/maze"
)

var (
	// Global flags
	flagConfig   string
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "stage",
	Short:   "gridstage - scene-driven grid games in your terminal",
	Version: version.String(),
	Long: `gridstage runs scene stacks of grid games directly in your terminal.

Available commands:
  list     - Show all registered scenes
  play     - Play a scene directly or pick one from the menu
  serve    - Start SSH server for remote play
  scores   - View high scores
  prefs    - Show or check a preference file

Examples:
  stage list
  stage play maze --level corridors
  stage play
  stage serve --ssh :2222
  stage scores maze`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate override (0 keeps the config value)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/"+config.UserDir+"/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(prefsCmd)
}

// engineConfig loads the engine config and applies the global overrides.
func engineConfig() (config.EngineConfig, error) {
	cfg, err := config.LoadEngine(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.Loop.FrameRate = flagFPS
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// sceneOptions builds the factory options shared by every command.
func sceneOptions(cfg config.EngineConfig) registry.Options {
	return registry.Options{
		Seed:       flagSeed,
		ConfigPath: flagGameConfig,
		LevelsDir:  cfg.Levels,
		Level:      flagLevel,
		Difficulty: flagDifficulty,
		Spacing:    cfg.Spacing,
	}
}

// newLogger returns a logger writing to --log-file, or to fallback when no
// file is given. The returned closer is never nil.
func newLogger(cfg config.EngineConfig, fallback io.Writer) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}

	w, closer := fallback, io.Closer(nopCloser{})
	if flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "gridstage",
		Level:           level,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
