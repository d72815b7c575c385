package planner_test

import (
	"testing"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

func TestDeductionsScaleProportionally(t *testing.T) {
	t.Parallel()
	entry := meal(1, riceAndBeans(), time.Now(), 2, model.StatusPlanned).Entry
	inv := planner.Inventory{riceID: 1000}

	got := planner.Deductions(entry, riceAndBeans(), inv)
	if len(got) != 1 {
		t.Fatalf("expected only stocked rice to be deducted, got %+v", got)
	}
	if !approx(got[0].Used, 200) || !approx(got[0].After, 800) || got[0].Remove {
		t.Fatalf("expected 200 used leaving 800, got %+v", got[0])
	}
}

func TestDeductionsFloorAtZeroAndRemove(t *testing.T) {
	t.Parallel()
	recipe := &model.Recipe{
		Servings: 1,
		Ingredients: []model.RecipeIngredient{
			{IngredientID: riceID, Ingredient: "rice", Quantity: 300},
			{IngredientID: beansID, Ingredient: "beans", Quantity: 100},
		},
	}
	entry := model.MealPlanEntry{Servings: 1, Status: model.StatusPlanned}
	inv := planner.Inventory{riceID: 100, beansID: 100}

	got := planner.Deductions(entry, recipe, inv)
	if len(got) != 2 {
		t.Fatalf("expected two deductions, got %+v", got)
	}
	for _, d := range got {
		if d.After != 0 || !d.Remove {
			t.Fatalf("expected %s to be depleted and removed, got %+v", d.Ingredient, d)
		}
	}
}

func TestDeductionsRepeatedIngredientDrawsFromRunningBalance(t *testing.T) {
	t.Parallel()
	recipe := &model.Recipe{
		Servings: 2,
		Ingredients: []model.RecipeIngredient{
			{IngredientID: onionID, Ingredient: "onion", Quantity: 2},
			{IngredientID: onionID, Ingredient: "onion", Quantity: 4},
		},
	}
	entry := model.MealPlanEntry{Servings: 2, Status: model.StatusPlanned}

	got := planner.Deductions(entry, recipe, planner.Inventory{onionID: 5})
	if len(got) != 2 || got[0].After != 3 || got[1].Before != 3 || got[1].After != 0 || !got[1].Remove {
		t.Fatalf("unexpected running balance: %+v", got)
	}
}

func TestDeductionsOrphanedEntry(t *testing.T) {
	t.Parallel()
	entry := model.MealPlanEntry{Servings: 1, Status: model.StatusPlanned}
	if got := planner.Deductions(entry, nil, planner.Inventory{riceID: 1}); len(got) != 0 {
		t.Fatalf("expected no deductions for orphaned entry, got %+v", got)
	}
}

func TestDeductionsFractionalServingsDepleteExactly(t *testing.T) {
	t.Parallel()
	recipe := &model.Recipe{
		Servings:    3,
		Ingredients: []model.RecipeIngredient{{IngredientID: riceID, Ingredient: "rice", Quantity: 1}},
	}
	entry := model.MealPlanEntry{Servings: 1, Status: model.StatusPlanned}
	inv := planner.Inventory{riceID: 1}

	var last planner.Deduction
	for i := 0; i < 3; i++ {
		got := planner.Deductions(entry, recipe, inv)
		if len(got) != 1 {
			t.Fatalf("cook %d: expected one deduction, got %+v", i+1, got)
		}
		last = got[0]
		if last.Remove {
			delete(inv, riceID)
			continue
		}
		inv[riceID] = last.After
	}
	if !last.Remove || last.After != 0 {
		t.Fatalf("expected third cook to deplete rice, got %+v", last)
	}
	if _, ok := inv[riceID]; ok {
		t.Fatalf("expected rice record removed, still have %v", inv[riceID])
	}
}
