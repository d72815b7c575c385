package model

import "time"

const (
	StatusPlanned   = "planned"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
)

const (
	SlotBreakfast = "Breakfast"
	SlotLunch     = "Lunch"
	SlotDinner    = "Dinner"
	SlotSnack     = "Snack"
)

var DefaultMealSlots = []string{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

const (
	CategoryProtein   = "Protein"
	CategoryVegetable = "Vegetable"
	CategoryDairy     = "Dairy"
	CategorySpice     = "Spice"
	CategoryGrain     = "Grain"
	CategoryOther     = "Other"
)

var IngredientCategories = []string{CategoryProtein, CategoryVegetable, CategoryDairy, CategorySpice, CategoryGrain, CategoryOther}

var RecipeTypes = []string{"breakfast", "lunch", "dinner", "snack", "dessert", "side", "other"}

// DateLayout is the day-granularity format used for plan dates.
const DateLayout = "2006-01-02"

type Ingredient struct {
	ID          int64
	Name        string
	DisplayName string
	Category    string
	CreatedAt   time.Time
}

type RecipeIngredient struct {
	ID           int64
	RecipeID     int64
	IngredientID int64
	Ingredient   string
	Position     int
	Quantity     float64
	Unit         string
	Notes        string
}

type Recipe struct {
	ID          int64
	Title       string
	Summary     string
	PrepMinutes int
	CookMinutes int
	Servings    int
	RecipeType  string
	Steps       []string
	Ingredients []RecipeIngredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InventoryItem struct {
	ID           int64
	IngredientID int64
	Ingredient   string
	Quantity     float64
	Unit         string
	LastUpdated  time.Time
}

type MealPlanEntry struct {
	ID          int64
	RecipeID    *int64
	RecipeTitle string
	Date        time.Time
	MealSlot    string
	Servings    int
	Status      string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// IsPlanned reports whether the entry still awaits a completion decision.
func (e MealPlanEntry) IsPlanned() bool {
	return e.Status == StatusPlanned
}

type ShoppingListItem struct {
	ID            int64
	IngredientID  int64
	Ingredient    string
	Quantity      float64
	Unit          string
	Checked       bool
	AutoGenerated bool
	AddedAt       time.Time
	CheckedAt     *time.Time
}

type Preferences struct {
	DefaultMealSlots      []string
	ShoppingLookaheadDays int
	BreakfastTime         string
	LunchTime             string
	DinnerTime            string
}

func DefaultPreferences() Preferences {
	slots := make([]string, len(DefaultMealSlots))
	copy(slots, DefaultMealSlots)
	return Preferences{
		DefaultMealSlots:      slots,
		ShoppingLookaheadDays: 7,
		BreakfastTime:         "08:00",
		LunchTime:             "12:00",
		DinnerTime:            "18:00",
	}
}
