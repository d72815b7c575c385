package mealplan

import (
	"fmt"
	"os"

	"github.com/saadjs/mealplan-cli/internal/app"
	"github.com/spf13/cobra"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mealplan",
	Short: "mealplan plans meals against what is in your pantry",
	Long:  "mealplan is a local-first meal planning CLI: recipes, pantry inventory, a meal calendar, and a shopping list generated from planned meals.",
}

func Execute() {
	if err := app.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default $MEALPLAN_DB or user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log planner decisions to stderr")
}
