package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

type InventoryInput struct {
	Name     string
	Category string
	Quantity float64
	Unit     string
	At       time.Time
}

// SetInventory records the on-hand quantity for an ingredient, creating the
// ingredient and its inventory record when needed. A quantity <= 0 removes the record.
func SetInventory(db Querier, in InventoryInput) (*model.InventoryItem, error) {
	ing, err := FindOrCreateIngredient(db, IngredientInput{Name: in.Name, Category: in.Category})
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		if err := deleteInventory(db, ing.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}
	if _, err := db.Exec(`
INSERT INTO inventory_items(ingredient_id, quantity, unit, last_updated)
VALUES(?, ?, ?, ?)
ON CONFLICT(ingredient_id) DO UPDATE SET quantity = excluded.quantity, unit = excluded.unit, last_updated = excluded.last_updated
`, ing.ID, in.Quantity, strings.TrimSpace(in.Unit), formatTimestamp(in.At)); err != nil {
		return nil, fmt.Errorf("set inventory for %q: %w", ing.Name, err)
	}
	return inventoryByIngredient(db, ing.ID)
}

// AddInventory increases the on-hand quantity, creating the record lazily.
// The existing unit is kept when a record already exists.
func AddInventory(db Querier, ingredientID int64, quantity float64, unit string, at time.Time) error {
	if quantity <= 0 {
		return nil
	}
	if _, err := db.Exec(`
INSERT INTO inventory_items(ingredient_id, quantity, unit, last_updated)
VALUES(?, ?, ?, ?)
ON CONFLICT(ingredient_id) DO UPDATE SET quantity = quantity + excluded.quantity, last_updated = excluded.last_updated
`, ingredientID, quantity, strings.TrimSpace(unit), formatTimestamp(at)); err != nil {
		return fmt.Errorf("add inventory for ingredient %d: %w", ingredientID, err)
	}
	return nil
}

func RemoveInventory(db Querier, name string) error {
	ing, err := ResolveIngredient(db, name)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM inventory_items WHERE ingredient_id = ?`, ing.ID)
	if err != nil {
		return fmt.Errorf("remove inventory for %q: %w", ing.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("inventory for %q: %w", ing.Name, planner.ErrNotFound)
	}
	return nil
}

func ListInventory(db Querier) ([]model.InventoryItem, error) {
	rows, err := db.Query(`
SELECT inv.id, inv.ingredient_id, i.display_name, inv.quantity, inv.unit, inv.last_updated
FROM inventory_items inv
JOIN ingredients i ON i.id = inv.ingredient_id
ORDER BY i.name
`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	items := make([]model.InventoryItem, 0)
	for rows.Next() {
		it, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func inventoryByIngredient(db Querier, ingredientID int64) (*model.InventoryItem, error) {
	row := db.QueryRow(`
SELECT inv.id, inv.ingredient_id, i.display_name, inv.quantity, inv.unit, inv.last_updated
FROM inventory_items inv
JOIN ingredients i ON i.id = inv.ingredient_id
WHERE inv.ingredient_id = ?
`, ingredientID)
	it, err := scanInventory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("inventory for ingredient %d: %w", ingredientID, planner.ErrNotFound)
	}
	return it, err
}

func scanInventory(row rowScanner) (*model.InventoryItem, error) {
	var it model.InventoryItem
	var updatedRaw string
	if err := row.Scan(&it.ID, &it.IngredientID, &it.Ingredient, &it.Quantity, &it.Unit, &updatedRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	updated, err := parseTimestamp(updatedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated for inventory %d: %w", it.ID, err)
	}
	it.LastUpdated = updated
	return &it, nil
}

func setInventoryQuantity(db Querier, ingredientID int64, quantity float64, at time.Time) error {
	if quantity <= 0 {
		return deleteInventory(db, ingredientID)
	}
	if _, err := db.Exec(`UPDATE inventory_items SET quantity = ?, last_updated = ? WHERE ingredient_id = ?`, quantity, formatTimestamp(at), ingredientID); err != nil {
		return fmt.Errorf("update inventory for ingredient %d: %w", ingredientID, err)
	}
	return nil
}

func deleteInventory(db Querier, ingredientID int64) error {
	if _, err := db.Exec(`DELETE FROM inventory_items WHERE ingredient_id = ?`, ingredientID); err != nil {
		return fmt.Errorf("delete inventory for ingredient %d: %w", ingredientID, err)
	}
	return nil
}
