package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/saadjs/mealplan-cli/internal/db"
	"github.com/saadjs/mealplan-cli/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mealplan.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func mustCreateRecipe(t *testing.T, sqldb *sql.DB, in service.RecipeInput) int64 {
	t.Helper()
	id, err := service.CreateRecipe(sqldb, in)
	if err != nil {
		t.Fatalf("create recipe %q: %v", in.Title, err)
	}
	return id
}

func mustSetInventory(t *testing.T, sqldb *sql.DB, name string, qty float64, unit string) {
	t.Helper()
	if _, err := service.SetInventory(sqldb, service.InventoryInput{Name: name, Quantity: qty, Unit: unit}); err != nil {
		t.Fatalf("set inventory %s: %v", name, err)
	}
}

func inventoryQuantity(t *testing.T, sqldb *sql.DB, name string) (float64, bool) {
	t.Helper()
	items, err := service.ListInventory(sqldb)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	for _, it := range items {
		if it.Ingredient == name {
			return it.Quantity, true
		}
	}
	return 0, false
}
