package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridstage/internal/config"
	"github.com/vovakirdan/gridstage/internal/pref"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or check a preference file",
	Long: `Inspect the KEY:TYPE=VALUE preference files the engine loads and saves.

Examples:
  stage prefs show
  stage prefs show ./game.prefs
  stage prefs check ./game.prefs`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a preference file in canonical form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := loadPrefs(args)
		if err != nil {
			return err
		}
		_, err = c.WriteTo(os.Stdout)
		return err
	},
}

var prefsCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a preference file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := loadPrefs(args)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d preferences OK\n", args[0], c.Count())
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsCheckCmd)
}

// loadPrefs loads args[0], or the user preference file when args is empty.
func loadPrefs(args []string) (*pref.Container, error) {
	path := config.UserPrefsPath()
	if len(args) == 1 {
		path = args[0]
	}
	c := pref.NewContainer()
	if err := c.Load(path); err != nil {
		return nil, err
	}
	return c, nil
}
