package mealplan

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage the meal calendar",
}

var (
	planRecipe   string
	planDate     string
	planSlot     string
	planServings int

	planListDate  string
	planListWeek  string
	planListMonth string

	overdueLookback int
	overdueAll      bool
)

var planAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a recipe on a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(planDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			slot := planSlot
			if slot == "" {
				prefs, err := service.GetPreferences(sqldb)
				if err != nil {
					return err
				}
				slot = model.SlotDinner
				if len(prefs.DefaultMealSlots) > 0 && !containsSlot(prefs.DefaultMealSlots, slot) {
					slot = prefs.DefaultMealSlots[0]
				}
			}
			id, err := service.PlanMeal(sqldb, service.PlanMealInput{
				RecipeIdentifier: planRecipe,
				Date:             date,
				Slot:             slot,
				Servings:         planServings,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Planned entry %d on %s\n", id, date.Format(model.DateLayout))
			return nil
		})
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show planned meals for a day, week (default) or month",
	RunE: func(cmd *cobra.Command, args []string) error {
		set := 0
		for _, name := range []string{"date", "week", "month"} {
			if cmd.Flags().Changed(name) {
				set++
			}
		}
		if set > 1 {
			return fmt.Errorf("use only one of --date, --week, --month")
		}
		var from, to time.Time
		switch {
		case cmd.Flags().Changed("date"):
			day, err := parseDateOrToday(planListDate)
			if err != nil {
				return err
			}
			from, to = service.DayRange(day)
		case cmd.Flags().Changed("month"):
			day, err := parseDateOrToday(planListMonth)
			if err != nil {
				return err
			}
			from, to = service.MonthRange(day)
		default:
			day, err := parseDateOrToday(planListWeek)
			if err != nil {
				return err
			}
			from, to = service.WeekRange(day)
		}
		return withDB(func(sqldb *sql.DB) error {
			entries, err := service.ListPlanEntries(sqldb, planner.EntryFilter{From: from, To: to})
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var planCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a planned meal as cooked and deduct its ingredients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(_ *sql.DB, engine *planner.Engine) error {
			res, err := engine.MarkCompleted(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed {
				fmt.Fprintf(out, "Entry %d is already %s\n", id, res.Entry.Status)
				return nil
			}
			fmt.Fprintf(out, "Completed entry %d (%s)\n", id, res.Entry.RecipeTitle)
			for _, d := range res.Deductions {
				if d.Remove {
					fmt.Fprintf(out, "  %s: used %s, now out of stock\n", d.Ingredient, formatQuantity(d.Used, ""))
					continue
				}
				fmt.Fprintf(out, "  %s: used %s, %s left\n", d.Ingredient, formatQuantity(d.Used, ""), formatQuantity(d.After, ""))
			}
			return nil
		})
	},
}

var planSkipCmd = &cobra.Command{
	Use:   "skip <id>",
	Short: "Mark a planned meal as skipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(_ *sql.DB, engine *planner.Engine) error {
			res, err := engine.MarkSkipped(id)
			if err != nil {
				return err
			}
			if !res.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %d is already %s\n", id, res.Entry.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped entry %d\n", id)
			return nil
		})
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a meal from the calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeletePlanEntry(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

var planOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List past meals that still need a cooked/skipped decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(_ *sql.DB, engine *planner.Engine) error {
			var entries []model.MealPlanEntry
			var err error
			if overdueAll {
				entries, err = engine.OverdueAll()
			} else {
				entries, err = engine.Overdue(overdueLookback)
			}
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

func printEntries(out io.Writer, entries []model.MealPlanEntry) {
	fmt.Fprintln(out, "ID\tDATE\tSLOT\tRECIPE\tSERVINGS\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%d\t%s\n", e.ID, e.Date.Format(model.DateLayout), e.MealSlot, e.RecipeTitle, e.Servings, e.Status)
	}
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planAddCmd, planListCmd, planCompleteCmd, planSkipCmd, planDeleteCmd, planOverdueCmd)

	planAddCmd.Flags().StringVar(&planRecipe, "recipe", "", "Recipe id or title")
	planAddCmd.Flags().StringVar(&planDate, "date", "", "Day to cook (YYYY-MM-DD, default today)")
	planAddCmd.Flags().StringVar(&planSlot, "slot", "", "Meal slot (default Dinner)")
	planAddCmd.Flags().IntVar(&planServings, "servings", 0, "Servings to cook (default: the recipe's yield)")
	_ = planAddCmd.MarkFlagRequired("recipe")

	planListCmd.Flags().StringVar(&planListDate, "date", "", "Show a single day (YYYY-MM-DD)")
	planListCmd.Flags().StringVar(&planListWeek, "week", "", "Show the Monday-based week containing this day")
	planListCmd.Flags().StringVar(&planListMonth, "month", "", "Show the month containing this day")

	planOverdueCmd.Flags().IntVar(&overdueLookback, "lookback", planner.DefaultLookbackDays, "Days to look back")
	planOverdueCmd.Flags().BoolVar(&overdueAll, "all", false, "Ignore the lookback window")
}
