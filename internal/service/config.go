package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
)

const (
	ConfigDefaultMealSlots = "prefs.default_meal_slots"
	ConfigLookaheadDays    = "prefs.shopping_lookahead_days"
	ConfigBreakfastTime    = "prefs.breakfast_time"
	ConfigLunchTime        = "prefs.lunch_time"
	ConfigDinnerTime       = "prefs.dinner_time"
)

const (
	MinLookaheadDays = 1
	MaxLookaheadDays = 30
)

func SetConfig(db Querier, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db Querier, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db Querier) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// GetPreferences returns the stored preferences, writing the defaults on first access.
func GetPreferences(db Querier) (model.Preferences, error) {
	cfg, err := ListConfig(db)
	if err != nil {
		return model.Preferences{}, err
	}
	prefs := model.DefaultPreferences()
	if _, ok := cfg[ConfigLookaheadDays]; !ok {
		if err := savePreferences(db, prefs); err != nil {
			return model.Preferences{}, err
		}
		return prefs, nil
	}

	if raw := cfg[ConfigDefaultMealSlots]; raw != "" {
		prefs.DefaultMealSlots = splitSlots(raw)
	}
	if days, err := strconv.Atoi(cfg[ConfigLookaheadDays]); err == nil && validLookahead(days) {
		prefs.ShoppingLookaheadDays = days
	}
	if v := cfg[ConfigBreakfastTime]; validClock(v) {
		prefs.BreakfastTime = v
	}
	if v := cfg[ConfigLunchTime]; validClock(v) {
		prefs.LunchTime = v
	}
	if v := cfg[ConfigDinnerTime]; validClock(v) {
		prefs.DinnerTime = v
	}
	return prefs, nil
}

type PreferencesUpdate struct {
	DefaultMealSlots      []string
	ShoppingLookaheadDays *int
	BreakfastTime         *string
	LunchTime             *string
	DinnerTime            *string
}

func UpdatePreferences(db Querier, in PreferencesUpdate) (model.Preferences, error) {
	prefs, err := GetPreferences(db)
	if err != nil {
		return prefs, err
	}
	if in.DefaultMealSlots != nil {
		slots := make([]string, 0, len(in.DefaultMealSlots))
		for _, s := range in.DefaultMealSlots {
			if s = normalizeSlot(s); s != "" {
				slots = append(slots, s)
			}
		}
		if len(slots) == 0 {
			return prefs, fmt.Errorf("at least one meal slot is required")
		}
		prefs.DefaultMealSlots = slots
	}
	if in.ShoppingLookaheadDays != nil {
		if !validLookahead(*in.ShoppingLookaheadDays) {
			return prefs, fmt.Errorf("lookahead days must be between %d and %d", MinLookaheadDays, MaxLookaheadDays)
		}
		prefs.ShoppingLookaheadDays = *in.ShoppingLookaheadDays
	}
	for _, f := range []struct {
		name string
		in   *string
		out  *string
	}{
		{"breakfast time", in.BreakfastTime, &prefs.BreakfastTime},
		{"lunch time", in.LunchTime, &prefs.LunchTime},
		{"dinner time", in.DinnerTime, &prefs.DinnerTime},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if !validClock(v) {
			return prefs, fmt.Errorf("invalid %s %q (expected HH:MM)", f.name, v)
		}
		*f.out = v
	}
	if err := savePreferences(db, prefs); err != nil {
		return prefs, err
	}
	return prefs, nil
}

func savePreferences(db Querier, prefs model.Preferences) error {
	values := map[string]string{
		ConfigDefaultMealSlots: strings.Join(prefs.DefaultMealSlots, ","),
		ConfigLookaheadDays:    strconv.Itoa(prefs.ShoppingLookaheadDays),
		ConfigBreakfastTime:    prefs.BreakfastTime,
		ConfigLunchTime:        prefs.LunchTime,
		ConfigDinnerTime:       prefs.DinnerTime,
	}
	for key, value := range values {
		if err := SetConfig(db, key, value); err != nil {
			return err
		}
	}
	return nil
}

func splitSlots(raw string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = normalizeSlot(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validLookahead(days int) bool {
	return days >= MinLookaheadDays && days <= MaxLookaheadDays
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}
