package mealplan

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var ingredientCmd = &cobra.Command{
	Use:   "ingredient",
	Short: "Manage the ingredient catalog",
}

var ingredientCategory string

var ingredientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingredients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListIngredients(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCATEGORY")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", it.ID, it.DisplayName, it.Category)
			}
			return nil
		})
	},
}

var ingredientAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an ingredient (existing names are reused)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ing, err := service.FindOrCreateIngredient(sqldb, service.IngredientInput{Name: args[0], Category: ingredientCategory})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingredient %d: %s (%s)\n", ing.ID, ing.DisplayName, ing.Category)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ingredientCmd)
	ingredientCmd.AddCommand(ingredientListCmd, ingredientAddCmd)

	ingredientAddCmd.Flags().StringVar(&ingredientCategory, "category", "", "Category: Protein, Vegetable, Dairy, Spice, Grain, Other")
}
