package mealplan

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"pantry"},
	Short:   "Manage what is on hand",
}

var inventoryCategory string

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListInventory(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "INGREDIENT\tQUANTITY\tUPDATED")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", it.Ingredient, formatQuantity(it.Quantity, it.Unit), it.LastUpdated.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var inventorySetCmd = &cobra.Command{
	Use:   "set <name> <qty> [unit]",
	Short: "Set the on-hand quantity (0 removes the item)",
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
			it, err := service.SetInventory(sqldb, service.InventoryInput{
				Name:     args[0],
				Category: inventoryCategory,
				Quantity: qty,
				Unit:     unit,
				At:       time.Now(),
			})
			if err != nil {
				return err
			}
			if it == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from inventory\n", strings.TrimSpace(args[0]))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", it.Ingredient, formatQuantity(it.Quantity, it.Unit))
			return nil
		})
	},
}

var inventoryRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an ingredient from inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.RemoveInventory(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from inventory\n", strings.TrimSpace(args[0]))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryListCmd, inventorySetCmd, inventoryRemoveCmd)

	inventorySetCmd.Flags().StringVar(&inventoryCategory, "category", "", "Category for a new ingredient")
}
