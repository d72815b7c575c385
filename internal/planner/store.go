package planner

import (
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
)

// EntryFilter selects plan entries. Zero times leave that side of the range open;
// To is exclusive. An empty Status matches every status.
type EntryFilter struct {
	From   time.Time
	To     time.Time
	Status string
}

// Store is the record store the engine reads and mutates. Lookups of missing
// records return an error wrapping ErrNotFound.
type Store interface {
	GetPlanEntry(id int64) (*model.MealPlanEntry, error)
	ListPlanEntries(f EntryFilter) ([]model.MealPlanEntry, error)
	SetPlanStatus(id int64, status string, at time.Time) error

	GetRecipe(id int64) (*model.Recipe, error)
	ListRecipes() ([]model.Recipe, error)

	ListInventory() ([]model.InventoryItem, error)
	SetInventoryQuantity(ingredientID int64, quantity float64, at time.Time) error
	DeleteInventory(ingredientID int64) error

	ListShoppingItems() ([]model.ShoppingListItem, error)
	InsertShoppingItem(item model.ShoppingListItem) (int64, error)
	UpdateShoppingItem(item model.ShoppingListItem) error
	DeleteShoppingItem(id int64) error
}

// Transactor runs fn against a Store whose writes commit together or not at all.
type Transactor interface {
	Store
	WithTx(fn func(Store) error) error
}
