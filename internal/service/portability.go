package service

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/planner"
	"gopkg.in/yaml.v3"
)

// RecipeDocument is the on-disk recipe collection format used by seed data and imports.
type RecipeDocument struct {
	Recipes []RecipeSpec `yaml:"recipes"`
}

type RecipeSpec struct {
	Title       string     `yaml:"title"`
	Summary     string     `yaml:"summary,omitempty"`
	Type        string     `yaml:"type,omitempty"`
	PrepMinutes int        `yaml:"prep_minutes,omitempty"`
	CookMinutes int        `yaml:"cook_minutes,omitempty"`
	Servings    int        `yaml:"servings"`
	Steps       []string   `yaml:"steps,omitempty"`
	Ingredients []LineSpec `yaml:"ingredients,omitempty"`
}

type LineSpec struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category,omitempty"`
	Quantity float64 `yaml:"quantity"`
	Unit     string  `yaml:"unit,omitempty"`
	Notes    string  `yaml:"notes,omitempty"`
}

type ImportReport struct {
	Created int
	Updated int
	Skipped int
}

// DecodeRecipeDocument parses a YAML recipe collection. Unknown keys are rejected.
func DecodeRecipeDocument(r io.Reader) (RecipeDocument, error) {
	var doc RecipeDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("recipe document is empty")
		}
		return doc, fmt.Errorf("decode recipe document: %w", err)
	}
	return doc, nil
}

func (s RecipeSpec) Input() RecipeInput {
	in := RecipeInput{
		Title:       s.Title,
		Summary:     s.Summary,
		PrepMinutes: s.PrepMinutes,
		CookMinutes: s.CookMinutes,
		Servings:    s.Servings,
		RecipeType:  s.Type,
		Steps:       s.Steps,
	}
	for _, l := range s.Ingredients {
		in.Ingredients = append(in.Ingredients, RecipeLineInput{
			Name:     l.Name,
			Category: l.Category,
			Quantity: l.Quantity,
			Unit:     l.Unit,
			Notes:    l.Notes,
		})
	}
	return in
}

// ImportRecipes writes every recipe in r inside one transaction. Recipes whose
// title already exists are skipped unless overwrite is set, in which case they
// are replaced wholesale.
func ImportRecipes(db *sql.DB, r io.Reader, overwrite bool) (ImportReport, error) {
	doc, err := DecodeRecipeDocument(r)
	if err != nil {
		return ImportReport{}, err
	}
	tx, err := db.Begin()
	if err != nil {
		return ImportReport{}, fmt.Errorf("begin import tx: %w", err)
	}
	report, err := importDocument(tx, doc, overwrite)
	if err != nil {
		_ = tx.Rollback()
		return ImportReport{}, err
	}
	if err := tx.Commit(); err != nil {
		return ImportReport{}, fmt.Errorf("commit import: %w", err)
	}
	return report, nil
}

func importDocument(tx Querier, doc RecipeDocument, overwrite bool) (ImportReport, error) {
	var report ImportReport
	seen := make(map[string]bool, len(doc.Recipes))
	for i, spec := range doc.Recipes {
		in, err := normalizeRecipeInput(spec.Input())
		if err != nil {
			return report, fmt.Errorf("recipe #%d: %w", i+1, err)
		}
		key := strings.ToLower(in.Title)
		if seen[key] {
			return report, fmt.Errorf("recipe #%d: duplicate title %q", i+1, in.Title)
		}
		seen[key] = true

		existing, err := recipeByTitle(tx, in.Title)
		switch {
		case errors.Is(err, planner.ErrNotFound):
			if _, err := insertRecipe(tx, in); err != nil {
				return report, err
			}
			report.Created++
		case err != nil:
			return report, err
		case overwrite:
			if err := replaceRecipe(tx, existing.ID, in); err != nil {
				return report, err
			}
			report.Updated++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// ExportRecipes writes every recipe as a RecipeDocument that ImportRecipes accepts.
func ExportRecipes(db Querier, w io.Writer) (int, error) {
	recipes, err := ListRecipes(db)
	if err != nil {
		return 0, err
	}
	doc := RecipeDocument{Recipes: make([]RecipeSpec, 0, len(recipes))}
	categories, err := ingredientCategories(db)
	if err != nil {
		return 0, err
	}
	for _, r := range recipes {
		spec := RecipeSpec{
			Title:       r.Title,
			Summary:     r.Summary,
			Type:        r.RecipeType,
			PrepMinutes: r.PrepMinutes,
			CookMinutes: r.CookMinutes,
			Servings:    r.Servings,
			Steps:       r.Steps,
		}
		for _, l := range r.Ingredients {
			spec.Ingredients = append(spec.Ingredients, LineSpec{
				Name:     l.Ingredient,
				Category: categories[l.IngredientID],
				Quantity: l.Quantity,
				Unit:     l.Unit,
				Notes:    l.Notes,
			})
		}
		doc.Recipes = append(doc.Recipes, spec)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode recipes: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("flush recipes: %w", err)
	}
	return len(doc.Recipes), nil
}

func ingredientCategories(db Querier) (map[int64]string, error) {
	items, err := ListIngredients(db)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(items))
	for _, it := range items {
		out[it.ID] = it.Category
	}
	return out, nil
}
