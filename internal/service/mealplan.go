package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownRecipeTitle labels entries whose recipe has been deleted.
const UnknownRecipeTitle = "Unknown recipe"

type PlanMealInput struct {
	RecipeIdentifier string
	Date             time.Time
	Slot             string
	Servings         int
}

// PlanMeal schedules a recipe. Zero servings means the recipe's own yield.
func PlanMeal(db Querier, in PlanMealInput) (int64, error) {
	if in.Servings < 0 {
		return 0, fmt.Errorf("servings must be > 0")
	}
	if in.Date.IsZero() {
		return 0, fmt.Errorf("plan date is required")
	}
	slot := normalizeSlot(in.Slot)
	if slot == "" {
		return 0, fmt.Errorf("meal slot is required")
	}
	recipe, err := ResolveRecipe(db, in.RecipeIdentifier)
	if err != nil {
		return 0, err
	}
	if in.Servings == 0 {
		in.Servings = max(recipe.Servings, 1)
	}
	res, err := db.Exec(`
INSERT INTO meal_plan_entries(recipe_id, plan_date, meal_slot, servings, status)
VALUES(?, ?, ?, ?, ?)
`, recipe.ID, formatDate(in.Date), slot, in.Servings, model.StatusPlanned)
	if err != nil {
		return 0, fmt.Errorf("plan meal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve plan entry id: %w", err)
	}
	return id, nil
}

const planEntrySelect = `
SELECT e.id, e.recipe_id, IFNULL(r.title, ''), e.plan_date, e.meal_slot, e.servings, e.status, e.completed_at, e.created_at
FROM meal_plan_entries e
LEFT JOIN recipes r ON r.id = e.recipe_id`

func GetPlanEntry(db Querier, id int64) (*model.MealPlanEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("plan entry id must be > 0")
	}
	e, err := scanPlanEntry(db.QueryRow(planEntrySelect+` WHERE e.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan entry %d: %w", id, planner.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListPlanEntries returns entries matching f ordered by date then slot.
func ListPlanEntries(db Querier, f planner.EntryFilter) ([]model.MealPlanEntry, error) {
	query := planEntrySelect + ` WHERE 1=1`
	args := make([]any, 0, 3)
	if !f.From.IsZero() {
		query += ` AND e.plan_date >= ?`
		args = append(args, formatDate(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND e.plan_date < ?`
		args = append(args, formatDate(f.To))
	}
	if f.Status != "" {
		query += ` AND e.status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY e.plan_date ASC, e.id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plan entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.MealPlanEntry, 0)
	for rows.Next() {
		e, err := scanPlanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan entries: %w", err)
	}
	return entries, nil
}

func DeletePlanEntry(db Querier, id int64) error {
	if id <= 0 {
		return fmt.Errorf("plan entry id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM meal_plan_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plan entry %d: %w", id, planner.ErrNotFound)
	}
	return nil
}

// setPlanStatus only moves entries that are still planned.
func setPlanStatus(db Querier, id int64, status string, at time.Time) error {
	switch status {
	case model.StatusCompleted, model.StatusSkipped:
	default:
		return fmt.Errorf("invalid terminal status %q", status)
	}
	if _, err := db.Exec(`
UPDATE meal_plan_entries SET status = ?, completed_at = ?
WHERE id = ? AND status = ?
`, status, formatTimestamp(at), id, model.StatusPlanned); err != nil {
		return fmt.Errorf("set plan entry %d status: %w", id, err)
	}
	return nil
}

func scanPlanEntry(row rowScanner) (*model.MealPlanEntry, error) {
	var e model.MealPlanEntry
	var recipeID sql.NullInt64
	var dateRaw string
	var completedRaw sql.NullString
	if err := row.Scan(&e.ID, &recipeID, &e.RecipeTitle, &dateRaw, &e.MealSlot, &e.Servings, &e.Status, &completedRaw, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan plan entry: %w", err)
	}
	if recipeID.Valid {
		v := recipeID.Int64
		e.RecipeID = &v
	} else {
		e.RecipeTitle = UnknownRecipeTitle
	}
	date, err := ParseDate(dateRaw)
	if err != nil {
		return nil, fmt.Errorf("parse plan_date for entry %d: %w", e.ID, err)
	}
	e.Date = date
	completedAt, err := parseNullTimestamp(completedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse completed_at for entry %d: %w", e.ID, err)
	}
	e.CompletedAt = completedAt
	return &e, nil
}

func normalizeSlot(slot string) string {
	slot = strings.Join(strings.Fields(slot), " ")
	if slot == "" {
		return ""
	}
	return cases.Title(language.English).String(slot)
}

// DayRange returns [start, end) covering the day of t.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := planner.StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// WeekRange returns [start, end) of the Monday-based week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	start := planner.StartOfDay(t)
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// MonthRange returns [start, end) of the calendar month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
