package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

type RecipeLineInput struct {
	Name     string
	Category string
	Quantity float64
	Unit     string
	Notes    string
}

type RecipeInput struct {
	Title       string
	Summary     string
	PrepMinutes int
	CookMinutes int
	Servings    int
	RecipeType  string
	Steps       []string
	Ingredients []RecipeLineInput
}

const recipeColumns = `id, title, summary, prep_minutes, cook_minutes, servings, recipe_type, created_at, updated_at`

func CreateRecipe(db *sql.DB, in RecipeInput) (int64, error) {
	in, err := normalizeRecipeInput(in)
	if err != nil {
		return 0, err
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin create recipe tx: %w", err)
	}
	id, err := insertRecipe(tx, in)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recipe: %w", err)
	}
	return id, nil
}

// UpdateRecipe overwrites a recipe; its steps and ingredient lines are replaced wholesale.
func UpdateRecipe(db *sql.DB, idOrTitle string, in RecipeInput) error {
	in, err := normalizeRecipeInput(in)
	if err != nil {
		return err
	}
	recipe, err := ResolveRecipe(db, idOrTitle)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin update recipe tx: %w", err)
	}
	if err := replaceRecipe(tx, recipe.ID, in); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recipe update: %w", err)
	}
	return nil
}

// insertRecipe expects normalized input.
func insertRecipe(tx Querier, in RecipeInput) (int64, error) {
	res, err := tx.Exec(`
INSERT INTO recipes(title, summary, prep_minutes, cook_minutes, servings, recipe_type)
VALUES(?, ?, ?, ?, ?, ?)
`, in.Title, in.Summary, in.PrepMinutes, in.CookMinutes, in.Servings, in.RecipeType)
	if err != nil {
		return 0, fmt.Errorf("create recipe %q: %w", in.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve recipe id: %w", err)
	}
	if err := writeRecipeChildren(tx, id, in); err != nil {
		return 0, err
	}
	return id, nil
}

func replaceRecipe(tx Querier, recipeID int64, in RecipeInput) error {
	if _, err := tx.Exec(`
UPDATE recipes SET
  title = ?, summary = ?, prep_minutes = ?, cook_minutes = ?, servings = ?, recipe_type = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, in.Title, in.Summary, in.PrepMinutes, in.CookMinutes, in.Servings, in.RecipeType, recipeID); err != nil {
		return fmt.Errorf("update recipe %d: %w", recipeID, err)
	}
	if _, err := tx.Exec(`DELETE FROM recipe_steps WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("clear recipe steps: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("clear recipe ingredients: %w", err)
	}
	return writeRecipeChildren(tx, recipeID, in)
}

func writeRecipeChildren(tx Querier, recipeID int64, in RecipeInput) error {
	for i, step := range in.Steps {
		if _, err := tx.Exec(`INSERT INTO recipe_steps(recipe_id, position, body) VALUES(?, ?, ?)`, recipeID, i, step); err != nil {
			return fmt.Errorf("add recipe step %d: %w", i+1, err)
		}
	}
	for i, line := range in.Ingredients {
		ing, err := FindOrCreateIngredient(tx, IngredientInput{Name: line.Name, Category: line.Category})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO recipe_ingredients(recipe_id, ingredient_id, position, quantity, unit, notes)
VALUES(?, ?, ?, ?, ?, ?)
`, recipeID, ing.ID, i, line.Quantity, strings.TrimSpace(line.Unit), strings.TrimSpace(line.Notes)); err != nil {
			return fmt.Errorf("add recipe ingredient %q: %w", line.Name, err)
		}
	}
	return nil
}

func ListRecipes(db Querier) ([]model.Recipe, error) {
	rows, err := db.Query(`SELECT ` + recipeColumns + ` FROM recipes ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	items := make([]model.Recipe, 0)
	index := make(map[int64]int)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		index[r.ID] = len(items)
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	_ = rows.Close()

	lines, err := loadRecipeLines(db, 0)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if i, ok := index[l.RecipeID]; ok {
			items[i].Ingredients = append(items[i].Ingredients, l)
		}
	}
	steps, err := loadRecipeSteps(db, 0)
	if err != nil {
		return nil, err
	}
	for recipeID, body := range steps {
		if i, ok := index[recipeID]; ok {
			items[i].Steps = body
		}
	}
	return items, nil
}

// GetRecipe loads a recipe with its steps and ingredient lines.
func GetRecipe(db Querier, id int64) (*model.Recipe, error) {
	row := db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recipe %d: %w", id, planner.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := loadRecipeChildren(db, r); err != nil {
		return nil, err
	}
	return r, nil
}

func ResolveRecipe(db Querier, idOrTitle string) (*model.Recipe, error) {
	idOrTitle = strings.TrimSpace(idOrTitle)
	if idOrTitle == "" {
		return nil, fmt.Errorf("recipe identifier is required")
	}
	if id, err := parseIDLoose(idOrTitle); err == nil {
		return GetRecipe(db, id)
	}
	return recipeByTitle(db, idOrTitle)
}

func recipeByTitle(db Querier, title string) (*model.Recipe, error) {
	row := db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE LOWER(title) = ?`, strings.ToLower(title))
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recipe %q: %w", title, planner.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve recipe %q: %w", title, err)
	}
	if err := loadRecipeChildren(db, r); err != nil {
		return nil, err
	}
	return r, nil
}

func DeleteRecipe(db Querier, idOrTitle string) error {
	recipe, err := ResolveRecipe(db, idOrTitle)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM recipes WHERE id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("delete recipe %q: %w", idOrTitle, err)
	}
	return nil
}

func CountRecipes(db Querier) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	var r model.Recipe
	if err := row.Scan(&r.ID, &r.Title, &r.Summary, &r.PrepMinutes, &r.CookMinutes, &r.Servings, &r.RecipeType, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan recipe: %w", err)
	}
	return &r, nil
}

func loadRecipeChildren(db Querier, r *model.Recipe) error {
	lines, err := loadRecipeLines(db, r.ID)
	if err != nil {
		return err
	}
	r.Ingredients = lines
	steps, err := loadRecipeSteps(db, r.ID)
	if err != nil {
		return err
	}
	r.Steps = steps[r.ID]
	return nil
}

// loadRecipeLines returns lines for one recipe, or for all recipes when recipeID is 0.
func loadRecipeLines(db Querier, recipeID int64) ([]model.RecipeIngredient, error) {
	query := `
SELECT ri.id, ri.recipe_id, ri.ingredient_id, i.display_name, ri.position, ri.quantity, ri.unit, ri.notes
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id`
	args := make([]any, 0, 1)
	if recipeID > 0 {
		query += ` WHERE ri.recipe_id = ?`
		args = append(args, recipeID)
	}
	query += ` ORDER BY ri.recipe_id, ri.position`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()
	lines := make([]model.RecipeIngredient, 0)
	for rows.Next() {
		var l model.RecipeIngredient
		if err := rows.Scan(&l.ID, &l.RecipeID, &l.IngredientID, &l.Ingredient, &l.Position, &l.Quantity, &l.Unit, &l.Notes); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return lines, nil
}

func loadRecipeSteps(db Querier, recipeID int64) (map[int64][]string, error) {
	query := `SELECT recipe_id, body FROM recipe_steps`
	args := make([]any, 0, 1)
	if recipeID > 0 {
		query += ` WHERE recipe_id = ?`
		args = append(args, recipeID)
	}
	query += ` ORDER BY recipe_id, position`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipe steps: %w", err)
	}
	defer rows.Close()
	out := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan recipe step: %w", err)
		}
		out[id] = append(out[id], body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe steps: %w", err)
	}
	return out, nil
}

func normalizeRecipeInput(in RecipeInput) (RecipeInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, fmt.Errorf("recipe title is required")
	}
	in.Summary = strings.TrimSpace(in.Summary)
	if err := validateNonNegativeInt("prep minutes", in.PrepMinutes); err != nil {
		return in, err
	}
	if err := validateNonNegativeInt("cook minutes", in.CookMinutes); err != nil {
		return in, err
	}
	if err := validateNonNegativeInt("servings", in.Servings); err != nil {
		return in, err
	}
	recipeType := normalizeName(in.RecipeType)
	if recipeType == "" {
		recipeType = "dinner"
	}
	valid := false
	for _, t := range model.RecipeTypes {
		if t == recipeType {
			valid = true
			break
		}
	}
	if !valid {
		return in, fmt.Errorf("unknown recipe type %q (expected one of %s)", in.RecipeType, strings.Join(model.RecipeTypes, ", "))
	}
	in.RecipeType = recipeType

	steps := make([]string, 0, len(in.Steps))
	for _, s := range in.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	in.Steps = steps
	for _, line := range in.Ingredients {
		if normalizeName(line.Name) == "" {
			return in, fmt.Errorf("ingredient name is required")
		}
		if err := validateNonNegativeFloat(fmt.Sprintf("quantity for %q", line.Name), line.Quantity); err != nil {
			return in, err
		}
	}
	return in, nil
}

func parseIDLoose(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not numeric")
	}
	return id, nil
}
