package planner

import (
	"sort"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
)

// DefaultLookbackDays bounds overdue prompts shown to the user.
const DefaultLookbackDays = 3

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FindOverdue returns every planned entry dated before today, oldest first.
func FindOverdue(now time.Time, entries []model.MealPlanEntry) []model.MealPlanEntry {
	return selectOverdue(StartOfDay(now), time.Time{}, entries)
}

// FindOverdueWithin is FindOverdue restricted to the last lookbackDays days.
func FindOverdueWithin(now time.Time, lookbackDays int, entries []model.MealPlanEntry) []model.MealPlanEntry {
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	today := StartOfDay(now)
	return selectOverdue(today, today.AddDate(0, 0, -lookbackDays), entries)
}

func selectOverdue(today, cutoff time.Time, entries []model.MealPlanEntry) []model.MealPlanEntry {
	out := make([]model.MealPlanEntry, 0)
	for _, e := range entries {
		if !e.IsPlanned() || !e.Date.Before(today) {
			continue
		}
		if !cutoff.IsZero() && e.Date.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
