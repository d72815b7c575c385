package mealplan

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage planning preferences",
}

var (
	prefsLookahead int
	prefsSlots     string
	prefsBreakfast string
	prefsLunch     string
	prefsDinner    string
)

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.GetPreferences(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Meal slots: %s\n", strings.Join(p.DefaultMealSlots, ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "Shopping lookahead: %d days\n", p.ShoppingLookaheadDays)
			fmt.Fprintf(cmd.OutOrStdout(), "Breakfast: %s\nLunch: %s\nDinner: %s\n", p.BreakfastTime, p.LunchTime, p.DinnerTime)
			return nil
		})
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in service.PreferencesUpdate
		updates := 0
		if cmd.Flags().Changed("lookahead") {
			in.ShoppingLookaheadDays = &prefsLookahead
			updates++
		}
		if cmd.Flags().Changed("slots") {
			in.DefaultMealSlots = strings.Split(prefsSlots, ",")
			updates++
		}
		if cmd.Flags().Changed("breakfast") {
			in.BreakfastTime = &prefsBreakfast
			updates++
		}
		if cmd.Flags().Changed("lunch") {
			in.LunchTime = &prefsLunch
			updates++
		}
		if cmd.Flags().Changed("dinner") {
			in.DinnerTime = &prefsDinner
			updates++
		}
		if updates == 0 {
			return fmt.Errorf("set at least one flag")
		}
		return withDB(func(sqldb *sql.DB) error {
			if _, err := service.UpdatePreferences(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d preference(s)\n", updates)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)

	prefsSetCmd.Flags().IntVar(&prefsLookahead, "lookahead", 7, "Shopping lookahead in days (1-30)")
	prefsSetCmd.Flags().StringVar(&prefsSlots, "slots", "", "Default meal slots (comma-separated)")
	prefsSetCmd.Flags().StringVar(&prefsBreakfast, "breakfast", "", "Breakfast time hint (HH:MM)")
	prefsSetCmd.Flags().StringVar(&prefsLunch, "lunch", "", "Lunch time hint (HH:MM)")
	prefsSetCmd.Flags().StringVar(&prefsDinner, "dinner", "", "Dinner time hint (HH:MM)")
}
