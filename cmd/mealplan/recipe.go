package mealplan

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage recipes",
}

var (
	recipeTitle       string
	recipeSummary     string
	recipeServings    int
	recipeType        string
	recipePrep        int
	recipeCook        int
	recipeIngredients []string
	recipeSteps       []string
	recipeListMode    string
	recipeOverwrite   bool
)

func recipeInputFromFlags() (service.RecipeInput, error) {
	in := service.RecipeInput{
		Title:       recipeTitle,
		Summary:     recipeSummary,
		PrepMinutes: recipePrep,
		CookMinutes: recipeCook,
		Servings:    recipeServings,
		RecipeType:  recipeType,
		Steps:       recipeSteps,
	}
	for _, raw := range recipeIngredients {
		line, err := parseIngredientLine(raw)
		if err != nil {
			return in, err
		}
		in.Ingredients = append(in.Ingredients, line)
	}
	return in, nil
}

var recipeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := recipeInputFromFlags()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateRecipe(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created recipe %d\n", id)
			return nil
		})
	},
}

var recipeUpdateCmd = &cobra.Command{
	Use:   "update <id|title>",
	Short: "Replace a recipe, including all its steps and ingredient lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := recipeInputFromFlags()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.UpdateRecipe(sqldb, args[0], in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated recipe %s\n", args[0])
			return nil
		})
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes, optionally ranked by what the pantry can cover",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := planner.ParseRankMode(recipeListMode)
		if err != nil {
			return err
		}
		return withEngine(cmd, func(_ *sql.DB, engine *planner.Engine) error {
			ranked, err := engine.RankRecipes(mode)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTITLE\tTYPE\tSERVINGS\tMATCH\tCOOKABLE")
			for _, r := range ranked {
				cookable := "no"
				if r.Cookable {
					cookable = "yes"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%.0f%%\t%s\n", r.Recipe.ID, r.Recipe.Title, r.Recipe.RecipeType, r.Recipe.Servings, r.MatchRatio*100, cookable)
			}
			return nil
		})
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <id|title>",
	Short: "Show recipe details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			r, err := service.ResolveRecipe(sqldb, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\nTitle: %s\nType: %s\nServings: %d\nPrep: %d min\nCook: %d min\n", r.ID, r.Title, r.RecipeType, r.Servings, r.PrepMinutes, r.CookMinutes)
			if r.Summary != "" {
				fmt.Fprintf(out, "Summary: %s\n", r.Summary)
			}
			fmt.Fprintln(out, "Ingredients:")
			for _, l := range r.Ingredients {
				line := fmt.Sprintf("  - %s %s", formatQuantity(l.Quantity, l.Unit), l.Ingredient)
				if l.Notes != "" {
					line += " (" + l.Notes + ")"
				}
				fmt.Fprintln(out, line)
			}
			if len(r.Steps) > 0 {
				fmt.Fprintln(out, "Steps:")
				for i, s := range r.Steps {
					fmt.Fprintf(out, "  %d. %s\n", i+1, s)
				}
			}
			return nil
		})
	},
}

var recipeDeleteCmd = &cobra.Command{
	Use:   "delete <id|title>",
	Short: "Delete a recipe (planned meals keep their slot as an unknown recipe)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteRecipe(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %s\n", args[0])
			return nil
		})
	},
}

var recipeImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import recipes from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ImportRecipes(sqldb, f, recipeOverwrite)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported recipes: %d created, %d updated, %d skipped\n", report.Created, report.Updated, report.Skipped)
			return nil
		})
	},
}

var recipeExportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Write all recipes to a YAML file that import accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			n, err := service.ExportRecipes(sqldb, f)
			if err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d recipe(s) to %s\n", n, args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeAddCmd, recipeUpdateCmd, recipeListCmd, recipeShowCmd, recipeDeleteCmd, recipeImportCmd, recipeExportCmd)

	for _, c := range []*cobra.Command{recipeAddCmd, recipeUpdateCmd} {
		c.Flags().StringVar(&recipeTitle, "title", "", "Recipe title")
		c.Flags().StringVar(&recipeSummary, "summary", "", "Short description")
		c.Flags().IntVar(&recipeServings, "servings", 1, "Servings the ingredient quantities yield")
		c.Flags().StringVar(&recipeType, "type", "dinner", "Recipe type: "+strings.Join(model.RecipeTypes, ", "))
		c.Flags().IntVar(&recipePrep, "prep", 0, "Prep time in minutes")
		c.Flags().IntVar(&recipeCook, "cook", 0, "Cook time in minutes")
		c.Flags().StringArrayVar(&recipeIngredients, "ingredient", nil, `Ingredient line "name=qty unit" (repeatable)`)
		c.Flags().StringArrayVar(&recipeSteps, "step", nil, "Instruction step (repeatable, in order)")
	}
	_ = recipeAddCmd.MarkFlagRequired("title")
	_ = recipeUpdateCmd.MarkFlagRequired("title")
	recipeListCmd.Flags().StringVar(&recipeListMode, "mode", "all", "Listing mode: all, can-cook, by-availability")
	recipeImportCmd.Flags().BoolVar(&recipeOverwrite, "overwrite", false, "Replace recipes whose title already exists")
}
