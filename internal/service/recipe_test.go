package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/mealplan-cli/internal/planner"
	"github.com/saadjs/mealplan-cli/internal/service"
)

func TestCreateRecipeWithLinesAndSteps(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	id := mustCreateRecipe(t, db, service.RecipeInput{
		Title:    "Fried Rice",
		Servings: 2,
		Steps:    []string{"Cook rice", "  ", "Fry with egg"},
		Ingredients: []service.RecipeLineInput{
			{Name: "Rice", Category: "grain", Quantity: 200, Unit: "g"},
			{Name: "Eggs", Category: "Protein", Quantity: 2, Unit: "large", Notes: "beaten"},
		},
	})

	r, err := service.GetRecipe(db, id)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if r.RecipeType != "dinner" {
		t.Fatalf("expected default type dinner, got %q", r.RecipeType)
	}
	if len(r.Steps) != 2 || r.Steps[1] != "Fry with egg" {
		t.Fatalf("unexpected steps %v", r.Steps)
	}
	if len(r.Ingredients) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(r.Ingredients))
	}
	if r.Ingredients[0].Ingredient != "Rice" || r.Ingredients[0].Quantity != 200 || r.Ingredients[0].Unit != "g" {
		t.Fatalf("unexpected first line %+v", r.Ingredients[0])
	}
	if r.Ingredients[1].Notes != "beaten" {
		t.Fatalf("expected notes to persist, got %+v", r.Ingredients[1])
	}

	ings, err := service.ListIngredients(db)
	if err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(ings) != 2 || ings[1].Name != "rice" || ings[1].Category != "Grain" {
		t.Fatalf("unexpected ingredients %+v", ings)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	cases := []service.RecipeInput{
		{Title: "  "},
		{Title: "Negative", Servings: -1},
		{Title: "Bad type", RecipeType: "brunch"},
		{Title: "No name", Ingredients: []service.RecipeLineInput{{Name: " ", Quantity: 1}}},
		{Title: "Negative qty", Ingredients: []service.RecipeLineInput{{Name: "salt", Quantity: -1}}},
		{Title: "Bad category", Ingredients: []service.RecipeLineInput{{Name: "salt", Category: "mineral", Quantity: 1}}},
	}
	for _, in := range cases {
		if _, err := service.CreateRecipe(db, in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}
	n, err := service.CountRecipes(db)
	if err != nil {
		t.Fatalf("count recipes: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected failed creates to leave no recipes, got %d", n)
	}
}

func TestUpdateRecipeReplacesLinesWholesale(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	id := mustCreateRecipe(t, db, service.RecipeInput{
		Title:       "Soup",
		Servings:    4,
		Steps:       []string{"Boil"},
		Ingredients: []service.RecipeLineInput{{Name: "carrot", Quantity: 3}, {Name: "onion", Quantity: 1}},
	})
	if err := service.UpdateRecipe(db, "soup", service.RecipeInput{
		Title:       "Tomato Soup",
		Servings:    2,
		RecipeType:  "lunch",
		Ingredients: []service.RecipeLineInput{{Name: "tomatoes", Quantity: 400, Unit: "g"}},
	}); err != nil {
		t.Fatalf("update recipe: %v", err)
	}

	r, err := service.GetRecipe(db, id)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if r.Title != "Tomato Soup" || r.Servings != 2 || r.RecipeType != "lunch" {
		t.Fatalf("unexpected recipe after update %+v", r)
	}
	if len(r.Steps) != 0 {
		t.Fatalf("expected steps replaced, got %v", r.Steps)
	}
	if len(r.Ingredients) != 1 || r.Ingredients[0].Ingredient != "tomatoes" {
		t.Fatalf("expected lines replaced, got %+v", r.Ingredients)
	}
}

func TestResolveRecipeRejectsPartialNumericIdentifier(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	mustCreateRecipe(t, db, service.RecipeInput{Title: "Pancakes"})
	if _, err := service.ResolveRecipe(db, "1abc"); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("expected not found for partial numeric identifier, got %v", err)
	}
	r, err := service.ResolveRecipe(db, "1")
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if r.Title != "Pancakes" {
		t.Fatalf("unexpected recipe %q", r.Title)
	}
	if _, err := service.ResolveRecipe(db, "PANCAKES"); err != nil {
		t.Fatalf("resolve by title should ignore case: %v", err)
	}
}

func TestListRecipesLoadsChildren(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	mustCreateRecipe(t, db, service.RecipeInput{Title: "B", Ingredients: []service.RecipeLineInput{{Name: "x", Quantity: 1}}})
	mustCreateRecipe(t, db, service.RecipeInput{Title: "A", Steps: []string{"one"}})

	items, err := service.ListRecipes(db)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(items) != 2 || items[0].Title != "A" || items[1].Title != "B" {
		t.Fatalf("expected recipes ordered by title, got %+v", items)
	}
	if len(items[0].Steps) != 1 || len(items[0].Ingredients) != 0 {
		t.Fatalf("unexpected children for A: %+v", items[0])
	}
	if len(items[1].Ingredients) != 1 || len(items[1].Steps) != 0 {
		t.Fatalf("unexpected children for B: %+v", items[1])
	}
}

func TestDeleteRecipeOrphansPlanEntries(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	mustCreateRecipe(t, db, service.RecipeInput{Title: "Stew", Servings: 2})
	day, _ := service.ParseDate("2026-03-05")
	entryID, err := service.PlanMeal(db, service.PlanMealInput{RecipeIdentifier: "Stew", Date: day, Slot: "dinner"})
	if err != nil {
		t.Fatalf("plan meal: %v", err)
	}
	if err := service.DeleteRecipe(db, "Stew"); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	entry, err := service.GetPlanEntry(db, entryID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.RecipeID != nil || entry.RecipeTitle != service.UnknownRecipeTitle {
		t.Fatalf("expected orphaned entry, got %+v", entry)
	}
	if err := service.DeleteRecipe(db, "Stew"); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
