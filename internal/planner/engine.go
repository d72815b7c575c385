package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"go.uber.org/zap"
)

// Engine runs the reconciliation operations against a store.
type Engine struct {
	store Transactor
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(store Transactor, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TransitionResult reports the outcome of a completion decision.
type TransitionResult struct {
	Entry      model.MealPlanEntry
	Changed    bool
	Deductions []Deduction
}

// MarkCompleted moves a planned entry to completed and deducts what was cooked
// from inventory. Terminal entries are returned unchanged.
func (e *Engine) MarkCompleted(entryID int64) (*TransitionResult, error) {
	return e.transition(entryID, model.StatusCompleted)
}

// MarkSkipped moves a planned entry to skipped. Inventory is untouched.
func (e *Engine) MarkSkipped(entryID int64) (*TransitionResult, error) {
	return e.transition(entryID, model.StatusSkipped)
}

func (e *Engine) transition(entryID int64, status string) (*TransitionResult, error) {
	var result *TransitionResult
	err := e.store.WithTx(func(s Store) error {
		entry, err := s.GetPlanEntry(entryID)
		if err != nil {
			return err
		}
		result = &TransitionResult{Entry: *entry}
		if !entry.IsPlanned() {
			e.log.Debug("entry already decided", zap.Int64("entry_id", entryID), zap.String("status", entry.Status))
			return nil
		}

		at := e.now()
		if err := s.SetPlanStatus(entryID, status, at); err != nil {
			return err
		}
		result.Changed = true
		result.Entry.Status = status
		result.Entry.CompletedAt = &at

		if status == model.StatusCompleted {
			deductions, err := e.deduct(s, *entry, at)
			if err != nil {
				return err
			}
			result.Deductions = deductions
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mark entry %d %s: %w", entryID, status, err)
	}
	if result.Changed {
		e.log.Info("meal decided", zap.Int64("entry_id", entryID), zap.String("status", status), zap.Int("deductions", len(result.Deductions)))
	}
	return result, nil
}

func (e *Engine) deduct(s Store, entry model.MealPlanEntry, at time.Time) ([]Deduction, error) {
	recipe, err := e.resolveRecipe(s, entry)
	if err != nil || recipe == nil {
		return nil, err
	}
	items, err := s.ListInventory()
	if err != nil {
		return nil, err
	}
	deductions := Deductions(entry, recipe, NewInventory(items))
	for _, d := range deductions {
		if d.Remove {
			if err := s.DeleteInventory(d.IngredientID); err != nil {
				return nil, err
			}
			e.log.Debug("inventory depleted", zap.String("ingredient", d.Ingredient), zap.Float64("used", d.Used))
			continue
		}
		if err := s.SetInventoryQuantity(d.IngredientID, d.After, at); err != nil {
			return nil, err
		}
		e.log.Debug("inventory deducted", zap.String("ingredient", d.Ingredient), zap.Float64("used", d.Used), zap.Float64("remaining", d.After))
	}
	return deductions, nil
}

// resolveRecipe returns nil without error when the entry's recipe is gone.
func (e *Engine) resolveRecipe(s Store, entry model.MealPlanEntry) (*model.Recipe, error) {
	if entry.RecipeID == nil {
		e.log.Debug("orphaned entry", zap.Int64("entry_id", entry.ID))
		return nil, nil
	}
	recipe, err := s.GetRecipe(*entry.RecipeID)
	if errors.Is(err, ErrNotFound) {
		e.log.Debug("recipe missing", zap.Int64("entry_id", entry.ID), zap.Int64("recipe_id", *entry.RecipeID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// GenerateShoppingList reconciles the shopping list with planned meals in the
// next lookaheadDays days and returns the applied plan.
func (e *Engine) GenerateShoppingList(lookaheadDays int) (*ShoppingPlan, error) {
	now := e.now()
	var plan ShoppingPlan
	err := e.store.WithTx(func(s Store) error {
		start, end := Window(now, lookaheadDays)
		entries, err := s.ListPlanEntries(EntryFilter{From: start, To: end, Status: model.StatusPlanned})
		if err != nil {
			return err
		}
		meals := make([]PlannedMeal, 0, len(entries))
		recipes := make(map[int64]*model.Recipe)
		for _, entry := range entries {
			var recipe *model.Recipe
			if entry.RecipeID != nil {
				cached, ok := recipes[*entry.RecipeID]
				if !ok {
					cached, err = e.resolveRecipe(s, entry)
					if err != nil {
						return err
					}
					recipes[*entry.RecipeID] = cached
				}
				recipe = cached
			}
			meals = append(meals, PlannedMeal{Entry: entry, Recipe: recipe})
		}
		inventory, err := s.ListInventory()
		if err != nil {
			return err
		}
		existing, err := s.ListShoppingItems()
		if err != nil {
			return err
		}

		plan = Generate(now, lookaheadDays, meals, NewInventory(inventory), existing)
		for i, it := range plan.Insert {
			id, err := s.InsertShoppingItem(it)
			if err != nil {
				return err
			}
			plan.Insert[i].ID = id
		}
		for _, it := range plan.Update {
			if err := s.UpdateShoppingItem(it); err != nil {
				return err
			}
		}
		for _, id := range plan.Delete {
			if err := s.DeleteShoppingItem(id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate shopping list: %w", err)
	}
	e.log.Info("shopping list generated",
		zap.Int("lookahead_days", lookaheadDays),
		zap.Int("requirements", len(plan.Requirements)),
		zap.Int("inserted", len(plan.Insert)),
		zap.Int("updated", len(plan.Update)),
		zap.Int("deleted", len(plan.Delete)),
	)
	return &plan, nil
}

// Overdue returns planned entries from the last lookbackDays days that still
// need a decision, oldest first.
func (e *Engine) Overdue(lookbackDays int) ([]model.MealPlanEntry, error) {
	now := e.now()
	today := StartOfDay(now)
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	entries, err := e.store.ListPlanEntries(EntryFilter{From: today.AddDate(0, 0, -lookbackDays), To: today, Status: model.StatusPlanned})
	if err != nil {
		return nil, fmt.Errorf("find overdue entries: %w", err)
	}
	return FindOverdueWithin(now, lookbackDays, entries), nil
}

// OverdueAll is Overdue without the lookback bound.
func (e *Engine) OverdueAll() ([]model.MealPlanEntry, error) {
	now := e.now()
	entries, err := e.store.ListPlanEntries(EntryFilter{To: StartOfDay(now), Status: model.StatusPlanned})
	if err != nil {
		return nil, fmt.Errorf("find overdue entries: %w", err)
	}
	return FindOverdue(now, entries), nil
}

// RankRecipes evaluates every stored recipe against current inventory.
func (e *Engine) RankRecipes(mode RankMode) ([]RankedRecipe, error) {
	recipes, err := e.store.ListRecipes()
	if err != nil {
		return nil, fmt.Errorf("rank recipes: %w", err)
	}
	items, err := e.store.ListInventory()
	if err != nil {
		return nil, fmt.Errorf("rank recipes: %w", err)
	}
	return Rank(recipes, mode, NewInventory(items)), nil
}
