package planner

import (
	"math"
	"sort"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
)

const quantityEpsilon = 1e-9

// PlannedMeal is a plan entry joined with its recipe. Recipe is nil for orphaned entries.
type PlannedMeal struct {
	Entry  model.MealPlanEntry
	Recipe *model.Recipe
}

// Requirement is a cumulative ingredient quantity. Unit is taken from the first
// contributing line; units are never converted.
type Requirement struct {
	IngredientID int64
	Ingredient   string
	Quantity     float64
	Unit         string
}

// ShoppingPlan lists the writes that bring the shopping list in line with the plan.
type ShoppingPlan struct {
	Requirements []Requirement
	Shortfalls   []Requirement
	Insert       []model.ShoppingListItem
	Update       []model.ShoppingListItem
	Delete       []int64
}

// Empty reports whether applying the plan would change nothing.
func (p ShoppingPlan) Empty() bool {
	return len(p.Insert) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Window returns the half-open day range [today, today+lookaheadDays).
func Window(now time.Time, lookaheadDays int) (time.Time, time.Time) {
	start := StartOfDay(now)
	if lookaheadDays < 0 {
		lookaheadDays = 0
	}
	return start, start.AddDate(0, 0, lookaheadDays)
}

// Aggregate sums scaled ingredient requirements of planned meals dated inside [start, end).
func Aggregate(meals []PlannedMeal, start, end time.Time) []Requirement {
	byID := make(map[int64]*Requirement)
	order := make([]int64, 0)
	for _, m := range meals {
		if !m.Entry.IsPlanned() || m.Recipe == nil {
			continue
		}
		if m.Entry.Date.Before(start) || !m.Entry.Date.Before(end) {
			continue
		}
		scale := ScaleFactor(m.Entry.Servings, m.Recipe.Servings)
		for _, line := range m.Recipe.Ingredients {
			req, ok := byID[line.IngredientID]
			if !ok {
				req = &Requirement{IngredientID: line.IngredientID, Ingredient: line.Ingredient, Unit: line.Unit}
				byID[line.IngredientID] = req
				order = append(order, line.IngredientID)
			}
			req.Quantity += line.Quantity * scale
		}
	}
	out := make([]Requirement, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ingredient < out[j].Ingredient
	})
	return out
}

// Shortfalls nets each requirement against inventory and keeps what is still missing.
func Shortfalls(reqs []Requirement, inv InventoryLookup) []Requirement {
	out := make([]Requirement, 0, len(reqs))
	for _, req := range reqs {
		missing := req.Quantity
		if have, ok := inv.Quantity(req.IngredientID); ok {
			if have >= req.Quantity {
				continue
			}
			missing = req.Quantity - have
		}
		if missing <= quantityEpsilon {
			continue
		}
		req.Quantity = missing
		out = append(out, req)
	}
	return out
}

// Reconcile computes shopping list writes for the given shortfalls.
//
// Unchecked manual items count toward a shortfall; only the remainder is
// carried by a single unchecked auto-generated item per ingredient. Auto items
// that no longer correspond to a remainder are removed. Checked items are
// already reflected in inventory and are ignored.
func Reconcile(shortfalls []Requirement, existing []model.ShoppingListItem, now time.Time) ShoppingPlan {
	manual := make(map[int64]float64)
	auto := make(map[int64][]model.ShoppingListItem)
	for _, it := range existing {
		if it.Checked {
			continue
		}
		if it.AutoGenerated {
			auto[it.IngredientID] = append(auto[it.IngredientID], it)
		} else {
			manual[it.IngredientID] += it.Quantity
		}
	}

	plan := ShoppingPlan{Shortfalls: shortfalls}
	seen := make(map[int64]bool, len(shortfalls))
	for _, s := range shortfalls {
		seen[s.IngredientID] = true
		remainder := s.Quantity - manual[s.IngredientID]
		items := auto[s.IngredientID]
		if remainder <= quantityEpsilon {
			for _, it := range items {
				plan.Delete = append(plan.Delete, it.ID)
			}
			continue
		}
		if len(items) == 0 {
			plan.Insert = append(plan.Insert, model.ShoppingListItem{
				IngredientID:  s.IngredientID,
				Ingredient:    s.Ingredient,
				Quantity:      remainder,
				Unit:          s.Unit,
				AutoGenerated: true,
				AddedAt:       now,
			})
			continue
		}
		keep := items[0]
		if math.Abs(keep.Quantity-remainder) > quantityEpsilon || keep.Unit != s.Unit {
			keep.Quantity = remainder
			keep.Unit = s.Unit
			plan.Update = append(plan.Update, keep)
		}
		for _, dup := range items[1:] {
			plan.Delete = append(plan.Delete, dup.ID)
		}
	}

	stale := make([]int64, 0)
	for id, items := range auto {
		if seen[id] {
			continue
		}
		for _, it := range items {
			stale = append(stale, it.ID)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })
	plan.Delete = append(plan.Delete, stale...)
	return plan
}

// Generate runs the full aggregation for the lookahead window starting today.
// An empty window produces no writes.
func Generate(now time.Time, lookaheadDays int, meals []PlannedMeal, inv InventoryLookup, existing []model.ShoppingListItem) ShoppingPlan {
	if lookaheadDays < 1 {
		return ShoppingPlan{}
	}
	start, end := Window(now, lookaheadDays)
	reqs := Aggregate(meals, start, end)
	plan := Reconcile(Shortfalls(reqs, inv), existing, now)
	plan.Requirements = reqs
	return plan
}
