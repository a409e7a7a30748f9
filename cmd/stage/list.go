package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/games/maze"
	"github.com/vovakirdan/gridstage/internal/registry"
)

var flagListLevels bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered scenes",
	Long: `Shows a list of all scenes registered with the engine.

With --levels the maze levels are listed too, read from levels_dir when
the engine config sets one.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagListLevels, "levels", false, "Also list maze levels")
}

func runList(_ *cobra.Command, _ []string) error {
	scenes := registry.List()

	if len(scenes) == 0 {
		fmt.Println("No scenes available.")
		return nil
	}

	fmt.Println("Available scenes:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range scenes {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, s := range scenes {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}
	fmt.Println()

	if flagListLevels {
		cfg, err := engineConfig()
		if err != nil {
			return err
		}
		levels, err := maze.Levels(cfg.Levels)
		if err != nil {
			return err
		}
		fmt.Println("Maze levels:")
		for _, lvl := range levels {
			size := lvl.Size()
			fmt.Printf("  %-12s  %-16s  %dx%d\n", lvl.ID, lvl.Name, size.X, size.Y)
		}
		fmt.Println()
	}

	fmt.Println("Run 'stage play <id>' to play a scene.")
	return nil
}
