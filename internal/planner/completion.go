package planner

import (
	"math"

	"github.com/saadjs/mealplan-cli/internal/model"
)

// Deduction describes the inventory change for one consumed ingredient line.
type Deduction struct {
	IngredientID int64
	Ingredient   string
	Used         float64
	Before       float64
	After        float64
	Remove       bool
}

// Deductions computes the inventory changes for cooking entry from recipe.
// Lines whose ingredient is not stocked are skipped. Several lines referencing
// the same ingredient draw from the same running balance.
func Deductions(entry model.MealPlanEntry, recipe *model.Recipe, inv InventoryLookup) []Deduction {
	if recipe == nil {
		return nil
	}
	scale := ScaleFactor(entry.Servings, recipe.Servings)
	balance := make(map[int64]float64)
	out := make([]Deduction, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		before, ok := balance[line.IngredientID]
		if !ok {
			before, ok = inv.Quantity(line.IngredientID)
			if !ok {
				continue
			}
		}
		if before <= 0 {
			continue
		}
		used := line.Quantity * scale
		after := math.Max(0, before-used)
		if after <= quantityEpsilon {
			after = 0
		}
		balance[line.IngredientID] = after
		out = append(out, Deduction{
			IngredientID: line.IngredientID,
			Ingredient:   line.Ingredient,
			Used:         used,
			Before:       before,
			After:        after,
			Remove:       after <= 0,
		})
	}
	return out
}
