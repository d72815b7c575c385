package planner_test

import (
	"testing"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

const (
	flourID int64 = iota + 1
	sugarID
	butterID
)

func line(id int64, name string, qty float64) model.RecipeIngredient {
	return model.RecipeIngredient{IngredientID: id, Ingredient: name, Quantity: qty, Unit: "g"}
}

func bakingLines() []model.RecipeIngredient {
	return []model.RecipeIngredient{line(flourID, "flour", 200), line(sugarID, "sugar", 100), line(butterID, "butter", 50)}
}

func TestEmptyRecipeIsVacuouslyCookable(t *testing.T) {
	t.Parallel()
	r := model.Recipe{Title: "Water"}
	for _, inv := range []planner.Inventory{{}, {flourID: 1000}} {
		if !planner.IsCookable(r, inv) {
			t.Fatalf("expected recipe without lines to be cookable")
		}
		if got := planner.MatchRatio(r, inv); got != 1.0 {
			t.Fatalf("expected match ratio 1.0, got %v", got)
		}
	}
}

func TestCookableRequiresEveryLine(t *testing.T) {
	t.Parallel()
	r := model.Recipe{Title: "Cookies", Ingredients: bakingLines()}

	full := planner.Inventory{flourID: 200, sugarID: 150, butterID: 50}
	if !planner.IsCookable(r, full) {
		t.Fatalf("expected exact quantities to be enough")
	}

	short := planner.Inventory{flourID: 200, sugarID: 150, butterID: 49.5}
	if planner.IsCookable(r, short) {
		t.Fatalf("expected short butter to block cooking")
	}
	if got := planner.MatchRatio(r, short); got < 0.66 || got > 0.67 {
		t.Fatalf("expected 2/3 match ratio, got %v", got)
	}

	if got := planner.MatchRatio(r, planner.Inventory{}); got != 0 {
		t.Fatalf("expected zero match ratio on empty inventory, got %v", got)
	}
}

func TestRankByAvailabilityOrdersDescending(t *testing.T) {
	t.Parallel()
	lines := bakingLines()
	recipes := []model.Recipe{
		{Title: "Shortbread", Ingredients: lines},
		{Title: "Sugar dough", Ingredients: lines[:2]},
		{Title: "Flatbread", Ingredients: lines[:1]},
	}
	inv := planner.Inventory{flourID: 1000}

	ranked := planner.Rank(recipes, planner.RankByAvailability, inv)
	want := []string{"Flatbread", "Sugar dough", "Shortbread"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d ranked recipes, got %d", len(want), len(ranked))
	}
	for i, title := range want {
		if ranked[i].Recipe.Title != title {
			t.Fatalf("position %d: expected %s, got %s", i, title, ranked[i].Recipe.Title)
		}
	}
	if ranked[0].MatchRatio != 1.0 || ranked[1].MatchRatio != 0.5 {
		t.Fatalf("unexpected ratios: %v, %v", ranked[0].MatchRatio, ranked[1].MatchRatio)
	}
	if recipes[0].Title != "Shortbread" {
		t.Fatalf("expected input slice to be left untouched")
	}
}

func TestRankByAvailabilityIsStable(t *testing.T) {
	t.Parallel()
	recipes := []model.Recipe{
		{Title: "A", Ingredients: []model.RecipeIngredient{line(sugarID, "sugar", 1)}},
		{Title: "B", Ingredients: []model.RecipeIngredient{line(flourID, "flour", 1)}},
		{Title: "C", Ingredients: []model.RecipeIngredient{line(butterID, "butter", 1)}},
		{Title: "D"},
	}
	inv := planner.Inventory{flourID: 5}

	ranked := planner.Rank(recipes, planner.RankByAvailability, inv)
	got := ""
	for _, r := range ranked {
		got += r.Recipe.Title
	}
	if got != "BDAC" {
		t.Fatalf("expected stable order BDAC, got %s", got)
	}
}

func TestRankModes(t *testing.T) {
	t.Parallel()
	recipes := []model.Recipe{
		{Title: "Cookies", Ingredients: bakingLines()},
		{Title: "Toast", Ingredients: []model.RecipeIngredient{line(butterID, "butter", 10)}},
		{Title: "Water"},
	}
	inv := planner.Inventory{butterID: 20}

	all := planner.Rank(recipes, planner.RankAll, inv)
	if len(all) != 3 || all[0].Recipe.Title != "Cookies" {
		t.Fatalf("expected identity ordering for all mode, got %+v", all)
	}

	cookable := planner.Rank(recipes, planner.RankCanCook, inv)
	if len(cookable) != 2 || cookable[0].Recipe.Title != "Toast" || cookable[1].Recipe.Title != "Water" {
		t.Fatalf("expected Toast and Water to be cookable in order, got %+v", cookable)
	}
}

func TestParseRankMode(t *testing.T) {
	t.Parallel()
	cases := map[string]planner.RankMode{
		"":                 planner.RankAll,
		"ALL":              planner.RankAll,
		"can-cook":         planner.RankCanCook,
		" by-availability": planner.RankByAvailability,
	}
	for in, want := range cases {
		got, err := planner.ParseRankMode(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := planner.ParseRankMode("partial"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestScaleFactorFallsBackForZeroServings(t *testing.T) {
	t.Parallel()
	if got := planner.ScaleFactor(2, 4); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := planner.ScaleFactor(3, 0); got != 1.0 {
		t.Fatalf("expected fallback 1.0, got %v", got)
	}
}
