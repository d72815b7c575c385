package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/model"
)

type RankMode string

const (
	RankAll            RankMode = "all"
	RankCanCook        RankMode = "can-cook"
	RankByAvailability RankMode = "by-availability"
)

func ParseRankMode(value string) (RankMode, error) {
	switch RankMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", RankAll:
		return RankAll, nil
	case RankCanCook:
		return RankCanCook, nil
	case RankByAvailability:
		return RankByAvailability, nil
	default:
		return "", fmt.Errorf("unknown rank mode %q (expected all, can-cook, by-availability)", value)
	}
}

// RankedRecipe pairs a recipe with its availability against an inventory snapshot.
type RankedRecipe struct {
	Recipe     model.Recipe
	MatchRatio float64
	Cookable   bool
}

func lineSatisfied(line model.RecipeIngredient, inv InventoryLookup) bool {
	have, ok := inv.Quantity(line.IngredientID)
	if !ok {
		return false
	}
	return have >= line.Quantity
}

// IsCookable reports whether every ingredient line is covered by inventory.
// Units are not compared.
func IsCookable(recipe model.Recipe, inv InventoryLookup) bool {
	for _, line := range recipe.Ingredients {
		if !lineSatisfied(line, inv) {
			return false
		}
	}
	return true
}

// MatchRatio is the fraction of lines covered by inventory; 1 for a recipe without lines.
func MatchRatio(recipe model.Recipe, inv InventoryLookup) float64 {
	total := len(recipe.Ingredients)
	if total == 0 {
		return 1.0
	}
	available := 0
	for _, line := range recipe.Ingredients {
		if lineSatisfied(line, inv) {
			available++
		}
	}
	return float64(available) / float64(total)
}

// Rank orders recipes for the given mode. The input slice is not modified.
func Rank(recipes []model.Recipe, mode RankMode, inv InventoryLookup) []RankedRecipe {
	ranked := make([]RankedRecipe, 0, len(recipes))
	for _, r := range recipes {
		ratio := MatchRatio(r, inv)
		cookable := IsCookable(r, inv)
		if mode == RankCanCook && !cookable {
			continue
		}
		ranked = append(ranked, RankedRecipe{Recipe: r, MatchRatio: ratio, Cookable: cookable})
	}
	if mode == RankByAvailability {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].MatchRatio > ranked[j].MatchRatio
		})
	}
	return ranked
}
