package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/engine"
	"github.com/vovakirdan/gridstage/internal/platform/tui"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/storage"
)

var (
	flagGameConfig string
	flagLevel      string
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play [scene]",
	Short: "Play a scene",
	Long: `Start playing the specified scene. Without a scene a menu lists the
registered ones; after a run ends you return to the menu.

Controls:
  Arrows/WASD/HJKL - Move
  P/Esc            - Pause
  Ctrl+S           - Screenshot
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  stage play
  stage play maze
  stage play maze --level corridors --difficulty hard
  stage play maze --game-config ./my-maze.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagGameConfig, "game-config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagLevel, "level", "", "Level id (default: first level)")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runPlay(_ *cobra.Command, args []string) error {
	if len(args) == 1 && !registry.Exists(args[0]) {
		return fmt.Errorf("unknown scene %q, run 'stage list' to see available scenes", args[0])
	}

	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	if cfg.Prefs == "" {
		cfg.Prefs = config.UserPrefsPath()
	}
	logger, logCloser, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	// Scores are optional; the game still works without them.
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	width, height := terminalSize()
	if len(args) == 1 {
		return playScene(args[0], cfg, width, height, logger, store)
	}

	// Menu loop
	for {
		res, err := tui.RunMenu(width, height)
		if err != nil {
			return err
		}
		switch {
		case res.Quit:
			return nil
		case res.WantsScoreboard:
			if store == nil {
				return errors.New("scores database unavailable")
			}
			goBack, err := tui.RunScoreboard(store, "", width, height)
			if err != nil || !goBack {
				return err
			}
		default:
			if err := playScene(res.SceneID, cfg, width, height, logger, store); err != nil {
				return err
			}
		}
	}
}

// playScene runs one scene on a fresh engine until it quits.
func playScene(id string, cfg config.EngineConfig, width, height int, logger *log.Logger, store *storage.Store) error {
	s, err := registry.Create(id, sceneOptions(cfg))
	if err != nil {
		return err
	}

	cfg.Screen.Width = width
	cfg.Screen.Height = max(height-1, 1) // status line
	e, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		store.Attach(e.Dispatcher(), logger)
	}
	if err := e.PushScene(s); err != nil {
		return err
	}
	return tui.Run(e)
}

func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}
