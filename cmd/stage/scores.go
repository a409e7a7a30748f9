package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridstage/internal/platform/tui"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/storage"
)

var flagScoresPlain bool

var scoresCmd = &cobra.Command{
	Use:   "scores [scene]",
	Short: "Show high scores",
	Long: `Display high scores. On a terminal the interactive scoreboard opens,
otherwise (or with --plain) the top 10 runs are printed. Without a scene a
summary of every scene with recorded runs is printed.

Examples:
  stage scores
  stage scores maze
  stage scores maze --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print scores instead of opening the scoreboard")
}

func runScores(_ *cobra.Command, args []string) error {
	sceneID := ""
	if len(args) == 1 {
		sceneID = args[0]
		if !registry.Exists(sceneID) {
			return fmt.Errorf("unknown scene %q, run 'stage list' to see available scenes", sceneID)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	if !flagScoresPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := terminalSize()
		_, err := tui.RunScoreboard(store, sceneID, width, height)
		return err
	}

	if sceneID == "" {
		return printSummary(store)
	}
	return printTopScores(store, sceneID)
}

func printTopScores(store *storage.Store, sceneID string) error {
	scores, err := store.TopScores(sceneID, 10)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", titleOf(sceneID))
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'stage play %s' to set the first high score!\n", sceneID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %-12s  %-8s  %s\n", "Rank", "Score", "Level", "Time", "Date")
	fmt.Printf("  %-4s  %-10s  %-12s  %-8s  %s\n", "----", "-----", "-----", "----", "----")
	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %-12s  %-8s  %s\n", i+1, entry.Score, entry.Level, entry.Played.Round(time.Second), dateStr)
	}

	fmt.Println()
	if best, err := store.HighScore(sceneID); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
	return nil
}

func printSummary(store *storage.Store) error {
	stats, err := store.GetAllScenesStats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No scores recorded yet.")
		return nil
	}

	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-16s  %-6s  %-8s  %-8s  %s\n", "Scene", "Runs", "Best", "Average", "Last played")
	fmt.Printf("  %-16s  %-6s  %-8s  %-8s  %s\n", "-----", "----", "----", "-------", "-----------")
	for _, id := range ids {
		st := stats[id]
		fmt.Printf("  %-16s  %-6d  %-8d  %-8.1f  %s\n",
			titleOf(id), st.RunsCount, st.HighScore, st.AvgScore, st.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}

// titleOf returns the registered title of a scene, or its id.
func titleOf(sceneID string) string {
	for _, info := range registry.List() {
		if info.ID == sceneID {
			return info.Title
		}
	}
	return sceneID
}
