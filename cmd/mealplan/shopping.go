package mealplan

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/mealplan-cli/internal/export"
	"github.com/saadjs/mealplan-cli/internal/planner"
	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var shoppingCmd = &cobra.Command{
	Use:   "shopping",
	Short: "Manage the shopping list",
}

var (
	shoppingDays int
	shoppingOut  string
)

var shoppingGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Add what upcoming planned meals need beyond the current inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("days") && (shoppingDays < service.MinLookaheadDays || shoppingDays > service.MaxLookaheadDays) {
			return fmt.Errorf("lookahead days must be between %d and %d", service.MinLookaheadDays, service.MaxLookaheadDays)
		}
		return withEngine(cmd, func(sqldb *sql.DB, engine *planner.Engine) error {
			days := shoppingDays
			if !cmd.Flags().Changed("days") {
				prefs, err := service.GetPreferences(sqldb)
				if err != nil {
					return err
				}
				days = prefs.ShoppingLookaheadDays
			}
			plan, err := engine.GenerateShoppingList(days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if plan.Empty() {
				fmt.Fprintf(out, "Shopping list already covers the next %d day(s)\n", days)
				return nil
			}
			fmt.Fprintf(out, "Shopping list for the next %d day(s): %d added, %d updated, %d removed\n", days, len(plan.Insert), len(plan.Update), len(plan.Delete))
			return nil
		})
	},
}

var shoppingListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the shopping list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListShoppingItems(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDONE\tINGREDIENT\tQUANTITY\tSOURCE")
			for _, it := range items {
				done := " "
				if it.Checked {
					done = "x"
				}
				source := "manual"
				if it.AutoGenerated {
					source = "plan"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t[%s]\t%s\t%s\t%s\n", it.ID, done, it.Ingredient, formatQuantity(it.Quantity, it.Unit), source)
			}
			return nil
		})
	},
}

var shoppingAddCmd = &cobra.Command{
	Use:   "add <name> <qty> [unit]",
	Short: "Add a manual shopping item",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := parseQuantityArg(args[1])
		if err != nil {
			return err
		}
		unit := ""
		if len(args) == 3 {
			unit = args[2]
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.AddShoppingItem(sqldb, service.ShoppingItemInput{Name: args[0], Quantity: qty, Unit: unit, At: time.Now()})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added shopping item %d\n", id)
			return nil
		})
	},
}

var shoppingCheckCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Mark an item purchased and add it to inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("item id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			it, changed, err := service.CheckOffShoppingItem(sqldb, id, time.Now())
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d was already checked\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Checked %s; added %s to inventory\n", it.Ingredient, formatQuantity(it.Quantity, it.Unit))
			return nil
		})
	},
}

var shoppingRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a shopping item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("item id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.RemoveShoppingItem(sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed shopping item %d\n", id)
			return nil
		})
	},
}

var shoppingClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all purchased items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.ClearCheckedItems(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d purchased item(s)\n", n)
			return nil
		})
	},
}

var shoppingExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the shopping list to .xlsx or .csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := export.FormatFromPath(shoppingOut); err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListShoppingItems(sqldb)
			if err != nil {
				return err
			}
			if err := export.WriteFile(shoppingOut, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d item(s) to %s\n", len(items), shoppingOut)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(shoppingCmd)
	shoppingCmd.AddCommand(shoppingGenerateCmd, shoppingListCmd, shoppingAddCmd, shoppingCheckCmd, shoppingRemoveCmd, shoppingClearCmd, shoppingExportCmd)

	shoppingGenerateCmd.Flags().IntVar(&shoppingDays, "days", 0, "Lookahead in days (default: preference)")
	shoppingExportCmd.Flags().StringVar(&shoppingOut, "out", "", "Output file (.xlsx or .csv)")
	_ = shoppingExportCmd.MarkFlagRequired("out")
}
