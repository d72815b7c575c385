package service_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/saadjs/mealplan-cli/internal/logger"
	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
	"github.com/saadjs/mealplan-cli/internal/service"
)

var engineNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func newEngine(db *sql.DB) *planner.Engine {
	return planner.New(service.NewSQLStore(db), logger.Nop(), planner.WithClock(func() time.Time { return engineNow }))
}

func planOn(t *testing.T, db *sql.DB, recipe string, dayOffset, servings int) int64 {
	t.Helper()
	id, err := service.PlanMeal(db, service.PlanMealInput{
		RecipeIdentifier: recipe,
		Date:             planner.StartOfDay(engineNow).AddDate(0, 0, dayOffset),
		Slot:             model.SlotDinner,
		Servings:         servings,
	})
	if err != nil {
		t.Fatalf("plan %s: %v", recipe, err)
	}
	return id
}

func riceRecipe(t *testing.T, db *sql.DB) {
	t.Helper()
	mustCreateRecipe(t, db, service.RecipeInput{
		Title:       "Rice Pilaf",
		Servings:    4,
		Ingredients: []service.RecipeLineInput{{Name: "Rice", Quantity: 400, Unit: "g"}},
	})
}

func TestMarkCompletedDeductsScaledQuantity(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustSetInventory(t, db, "Rice", 1000, "g")
	id := planOn(t, db, "Rice Pilaf", 0, 2)

	res, err := newEngine(db).MarkCompleted(id)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !res.Changed || res.Entry.Status != model.StatusCompleted {
		t.Fatalf("expected completion, got %+v", res)
	}
	if got, _ := inventoryQuantity(t, db, "Rice"); got != 800 {
		t.Fatalf("expected 800 g rice left, got %v", got)
	}
	e, err := service.GetPlanEntry(db, id)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Status != model.StatusCompleted || e.CompletedAt == nil || !e.CompletedAt.Equal(engineNow) {
		t.Fatalf("expected persisted completion, got %+v", e)
	}
}

func TestMarkCompletedFloorsAtZeroAndRemoves(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustSetInventory(t, db, "Rice", 50, "g")
	id := planOn(t, db, "Rice Pilaf", 0, 4)

	res, err := newEngine(db).MarkCompleted(id)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if len(res.Deductions) != 1 || !res.Deductions[0].Remove {
		t.Fatalf("expected a removing deduction, got %+v", res.Deductions)
	}
	if _, ok := inventoryQuantity(t, db, "Rice"); ok {
		t.Fatalf("expected depleted rice record to be deleted")
	}
}

func TestTerminalTransitionsAreNoOps(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustSetInventory(t, db, "Rice", 1000, "g")
	id := planOn(t, db, "Rice Pilaf", 0, 4)
	engine := newEngine(db)

	for i := 0; i < 2; i++ {
		res, err := engine.MarkSkipped(id)
		if err != nil {
			t.Fatalf("mark skipped #%d: %v", i+1, err)
		}
		if res.Changed != (i == 0) {
			t.Fatalf("mark skipped #%d: unexpected changed=%v", i+1, res.Changed)
		}
	}
	res, err := engine.MarkCompleted(id)
	if err != nil {
		t.Fatalf("mark completed after skip: %v", err)
	}
	if res.Changed || res.Entry.Status != model.StatusSkipped {
		t.Fatalf("expected skipped entry to stay skipped, got %+v", res)
	}
	if got, _ := inventoryQuantity(t, db, "Rice"); got != 1000 {
		t.Fatalf("expected inventory untouched, got %v", got)
	}
}

func TestMarkCompletedOrphanedEntry(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustSetInventory(t, db, "Rice", 1000, "g")
	id := planOn(t, db, "Rice Pilaf", 0, 4)
	if err := service.DeleteRecipe(db, "Rice Pilaf"); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	res, err := newEngine(db).MarkCompleted(id)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !res.Changed || len(res.Deductions) != 0 {
		t.Fatalf("expected status-only completion, got %+v", res)
	}
	if got, _ := inventoryQuantity(t, db, "Rice"); got != 1000 {
		t.Fatalf("expected inventory untouched, got %v", got)
	}
}

func TestMarkCompletedUnknownEntry(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if _, err := newEngine(db).MarkCompleted(42); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type failingDeductions struct{ planner.Transactor }

func (f failingDeductions) WithTx(fn func(planner.Store) error) error {
	return f.Transactor.WithTx(func(s planner.Store) error {
		return fn(failingTxStore{Store: s})
	})
}

type failingTxStore struct{ planner.Store }

func (failingTxStore) SetInventoryQuantity(int64, float64, time.Time) error {
	return fmt.Errorf("%w: disk full", planner.ErrStorage)
}

func TestStorageFailureRollsBackCompletion(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustSetInventory(t, db, "Rice", 1000, "g")
	id := planOn(t, db, "Rice Pilaf", 0, 4)

	engine := planner.New(failingDeductions{service.NewSQLStore(db)}, logger.Nop(), planner.WithClock(func() time.Time { return engineNow }))
	if _, err := engine.MarkCompleted(id); !errors.Is(err, planner.ErrStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	e, err := service.GetPlanEntry(db, id)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Status != model.StatusPlanned || e.CompletedAt != nil {
		t.Fatalf("expected status change to roll back, got %+v", e)
	}
	if got, _ := inventoryQuantity(t, db, "Rice"); got != 1000 {
		t.Fatalf("expected inventory untouched, got %v", got)
	}
}

func TestGenerateShoppingListAgainstStore(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustSetInventory(t, db, "Rice", 100, "g")
	planOn(t, db, "Rice Pilaf", 1, 3)  // 300 g
	planOn(t, db, "Rice Pilaf", -1, 4) // yesterday: outside the window
	planOn(t, db, "Rice Pilaf", 7, 4)  // outside a 7 day window
	engine := newEngine(db)

	plan, err := engine.GenerateShoppingList(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(plan.Insert) != 1 || plan.Insert[0].ID == 0 || plan.Insert[0].Quantity != 200 {
		t.Fatalf("expected one 200 g insert with an id, got %+v", plan.Insert)
	}

	plan, err = engine.GenerateShoppingList(7)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected idempotent regeneration, got %+v", plan)
	}

	mustSetInventory(t, db, "Rice", 250, "g")
	if _, err := engine.GenerateShoppingList(7); err != nil {
		t.Fatalf("generate after restock: %v", err)
	}
	items, err := service.ListShoppingItems(db)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 50 || !items[0].AutoGenerated {
		t.Fatalf("expected auto item reduced to 50 g, got %+v", items)
	}

	if _, err := service.AddShoppingItem(db, service.ShoppingItemInput{Name: "rice", Quantity: 50, Unit: "g"}); err != nil {
		t.Fatalf("add manual item: %v", err)
	}
	if _, err := engine.GenerateShoppingList(7); err != nil {
		t.Fatalf("generate after manual add: %v", err)
	}
	items, err = service.ListShoppingItems(db)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].AutoGenerated {
		t.Fatalf("expected manual item to cover the shortfall alone, got %+v", items)
	}

	plan, err = engine.GenerateShoppingList(0)
	if err != nil {
		t.Fatalf("generate zero window: %v", err)
	}
	if !plan.Empty() || len(plan.Requirements) != 0 {
		t.Fatalf("expected empty plan for zero window, got %+v", plan)
	}
}

func TestOverdueAgainstStore(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	recent := planOn(t, db, "Rice Pilaf", -1, 4)
	old := planOn(t, db, "Rice Pilaf", -5, 4)
	planOn(t, db, "Rice Pilaf", 0, 4)
	decided := planOn(t, db, "Rice Pilaf", -2, 4)
	engine := newEngine(db)
	if _, err := engine.MarkSkipped(decided); err != nil {
		t.Fatalf("skip: %v", err)
	}

	bounded, err := engine.Overdue(planner.DefaultLookbackDays)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(bounded) != 1 || bounded[0].ID != recent {
		t.Fatalf("expected only the recent entry, got %+v", bounded)
	}
	all, err := engine.OverdueAll()
	if err != nil {
		t.Fatalf("overdue all: %v", err)
	}
	if len(all) != 2 || all[0].ID != old || all[1].ID != recent {
		t.Fatalf("expected oldest first, got %+v", all)
	}
}

func TestRankRecipesAgainstStore(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	riceRecipe(t, db)
	mustCreateRecipe(t, db, service.RecipeInput{Title: "Water", Servings: 1})
	mustSetInventory(t, db, "Rice", 100, "g")

	ranked, err := newEngine(db).RankRecipes(planner.RankCanCook)
	if err != nil {
		t.Fatalf("rank recipes: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Recipe.Title != "Water" {
		t.Fatalf("expected only the zero-line recipe to be cookable, got %+v", ranked)
	}
}
