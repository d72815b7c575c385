package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

type IngredientInput struct {
	Name     string
	Category string
}

// FindOrCreateIngredient returns the ingredient whose normalized name matches,
// creating it when absent.
func FindOrCreateIngredient(db Querier, in IngredientInput) (*model.Ingredient, error) {
	name := normalizeName(in.Name)
	if name == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}
	existing, err := ingredientByName(db, name)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lookup ingredient %q: %w", name, err)
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, err
	}
	display := strings.TrimSpace(in.Name)
	if _, err := db.Exec(`INSERT INTO ingredients(name, display_name, category) VALUES(?, ?, ?)`, name, display, category); err != nil {
		return nil, fmt.Errorf("create ingredient %q: %w", name, err)
	}
	created, err := ingredientByName(db, name)
	if err != nil {
		return nil, fmt.Errorf("reload ingredient %q: %w", name, err)
	}
	return created, nil
}

// ResolveIngredient looks an ingredient up by normalized name.
func ResolveIngredient(db Querier, name string) (*model.Ingredient, error) {
	norm := normalizeName(name)
	if norm == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}
	ing, err := ingredientByName(db, norm)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ingredient %q: %w", norm, planner.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve ingredient %q: %w", norm, err)
	}
	return ing, nil
}

func ListIngredients(db Querier) ([]model.Ingredient, error) {
	rows, err := db.Query(`
SELECT id, name, display_name, category, created_at
FROM ingredients
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	items := make([]model.Ingredient, 0)
	for rows.Next() {
		var it model.Ingredient
		if err := rows.Scan(&it.ID, &it.Name, &it.DisplayName, &it.Category, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return items, nil
}

func ingredientByName(db Querier, norm string) (*model.Ingredient, error) {
	var it model.Ingredient
	err := db.QueryRow(`
SELECT id, name, display_name, category, created_at
FROM ingredients WHERE name = ?
`, norm).Scan(&it.ID, &it.Name, &it.DisplayName, &it.Category, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func normalizeCategory(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.CategoryOther, nil
	}
	for _, c := range model.IngredientCategories {
		if strings.EqualFold(c, value) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown ingredient category %q (expected one of %s)", value, strings.Join(model.IngredientCategories, ", "))
}
