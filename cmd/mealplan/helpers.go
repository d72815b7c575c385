package mealplan

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/app"
	"github.com/saadjs/mealplan-cli/internal/db"
	"github.com/saadjs/mealplan-cli/internal/logger"
	"github.com/saadjs/mealplan-cli/internal/planner"
	"github.com/saadjs/mealplan-cli/internal/service"
	"github.com/spf13/cobra"
)

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withEngine opens the database and hands run a planner engine backed by it.
// Planner logs go to the command's stderr.
func withEngine(cmd *cobra.Command, run func(*sql.DB, *planner.Engine) error) error {
	return withDB(func(sqldb *sql.DB) error {
		log := logger.New(verbose, cmd.ErrOrStderr())
		defer func() { _ = log.Sync() }()
		return run(sqldb, planner.New(service.NewSQLStore(sqldb), log))
	})
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseQuantityArg(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", value)
	}
	return v, nil
}

// parseDateOrToday parses YYYY-MM-DD, defaulting to today when empty.
func parseDateOrToday(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return planner.StartOfDay(time.Now()), nil
	}
	return service.ParseDate(value)
}

// parseIngredientLine parses "name=qty unit", e.g. "rice=200 g". The unit is optional.
func parseIngredientLine(value string) (service.RecipeLineInput, error) {
	name, rest, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return service.RecipeLineInput{}, fmt.Errorf("invalid --ingredient %q (expected name=qty unit)", value)
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return service.RecipeLineInput{}, fmt.Errorf("invalid --ingredient %q: quantity is required", value)
	}
	qty, err := parseQuantityArg(fields[0])
	if err != nil {
		return service.RecipeLineInput{}, fmt.Errorf("invalid --ingredient %q: %w", value, err)
	}
	return service.RecipeLineInput{
		Name:     strings.TrimSpace(name),
		Quantity: qty,
		Unit:     strings.Join(fields[1:], " "),
	}, nil
}

func formatQuantity(q float64, unit string) string {
	s := strconv.FormatFloat(q, 'f', -1, 64)
	if q != float64(int64(q)) {
		s = strconv.FormatFloat(q, 'f', 2, 64)
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if unit == "" {
		return s
	}
	return s + " " + unit
}
