package planner

import "github.com/saadjs/mealplan-cli/internal/model"

// InventoryLookup resolves the on-hand quantity for an ingredient.
type InventoryLookup interface {
	Quantity(ingredientID int64) (float64, bool)
}

// Inventory is an in-memory snapshot keyed by ingredient id.
type Inventory map[int64]float64

func NewInventory(items []model.InventoryItem) Inventory {
	inv := make(Inventory, len(items))
	for _, it := range items {
		inv[it.IngredientID] += it.Quantity
	}
	return inv
}

func (inv Inventory) Quantity(ingredientID int64) (float64, bool) {
	q, ok := inv[ingredientID]
	return q, ok
}

// ScaleFactor returns the ratio of planned to canonical servings.
// A recipe with no servings scales by 1.
func ScaleFactor(entryServings, recipeServings int) float64 {
	if recipeServings <= 0 {
		return 1.0
	}
	return float64(entryServings) / float64(recipeServings)
}
