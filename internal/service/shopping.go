package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

type ShoppingItemInput struct {
	Name     string
	Quantity float64
	Unit     string
	At       time.Time
}

// AddShoppingItem adds a manual, unchecked item.
func AddShoppingItem(db Querier, in ShoppingItemInput) (int64, error) {
	if in.Quantity <= 0 {
		return 0, fmt.Errorf("quantity must be > 0")
	}
	ing, err := FindOrCreateIngredient(db, IngredientInput{Name: in.Name})
	if err != nil {
		return 0, err
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}
	return insertShoppingItem(db, model.ShoppingListItem{
		IngredientID: ing.ID,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		AddedAt:      in.At,
	})
}

const shoppingSelect = `
SELECT s.id, s.ingredient_id, i.display_name, s.quantity, s.unit, s.checked, s.auto_generated, s.added_at, s.checked_at
FROM shopping_list_items s
JOIN ingredients i ON i.id = s.ingredient_id`

// ListShoppingItems returns unchecked items first, then by ingredient name.
func ListShoppingItems(db Querier) ([]model.ShoppingListItem, error) {
	rows, err := db.Query(shoppingSelect + ` ORDER BY s.checked ASC, i.name ASC, s.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ShoppingListItem, 0)
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shopping items: %w", err)
	}
	return items, nil
}

func GetShoppingItem(db Querier, id int64) (*model.ShoppingListItem, error) {
	if id <= 0 {
		return nil, fmt.Errorf("shopping item id must be > 0")
	}
	it, err := scanShoppingItem(db.QueryRow(shoppingSelect+` WHERE s.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shopping item %d: %w", id, planner.ErrNotFound)
	}
	return it, err
}

// CheckOffShoppingItem marks an item purchased and moves its quantity into
// inventory. Checking an already checked item changes nothing.
func CheckOffShoppingItem(db *sql.DB, id int64, at time.Time) (*model.ShoppingListItem, bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin check-off tx: %w", err)
	}
	it, err := GetShoppingItem(tx, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, false, err
	}
	if it.Checked {
		_ = tx.Rollback()
		return it, false, nil
	}
	if _, err := tx.Exec(`UPDATE shopping_list_items SET checked = 1, checked_at = ? WHERE id = ?`, formatTimestamp(at), id); err != nil {
		_ = tx.Rollback()
		return nil, false, fmt.Errorf("check off shopping item %d: %w", id, err)
	}
	if err := AddInventory(tx, it.IngredientID, it.Quantity, it.Unit, at); err != nil {
		_ = tx.Rollback()
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit check-off: %w", err)
	}
	it.Checked = true
	it.CheckedAt = &at
	return it, true, nil
}

func RemoveShoppingItem(db Querier, id int64) error {
	if id <= 0 {
		return fmt.Errorf("shopping item id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove shopping item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("shopping item %d: %w", id, planner.ErrNotFound)
	}
	return nil
}

// ClearCheckedItems deletes purchased items and returns how many were removed.
func ClearCheckedItems(db Querier) (int64, error) {
	res, err := db.Exec(`DELETE FROM shopping_list_items WHERE checked = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear checked items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return n, nil
}

func insertShoppingItem(db Querier, it model.ShoppingListItem) (int64, error) {
	res, err := db.Exec(`
INSERT INTO shopping_list_items(ingredient_id, quantity, unit, checked, auto_generated, added_at)
VALUES(?, ?, ?, 0, ?, ?)
`, it.IngredientID, it.Quantity, strings.TrimSpace(it.Unit), boolToInt(it.AutoGenerated), formatTimestamp(it.AddedAt))
	if err != nil {
		return 0, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve shopping item id: %w", err)
	}
	return id, nil
}

func updateShoppingItem(db Querier, it model.ShoppingListItem) error {
	if _, err := db.Exec(`UPDATE shopping_list_items SET quantity = ?, unit = ? WHERE id = ?`, it.Quantity, strings.TrimSpace(it.Unit), it.ID); err != nil {
		return fmt.Errorf("update shopping item %d: %w", it.ID, err)
	}
	return nil
}

func scanShoppingItem(row rowScanner) (*model.ShoppingListItem, error) {
	var it model.ShoppingListItem
	var checked, auto int
	var addedRaw string
	var checkedRaw sql.NullString
	if err := row.Scan(&it.ID, &it.IngredientID, &it.Ingredient, &it.Quantity, &it.Unit, &checked, &auto, &addedRaw, &checkedRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan shopping item: %w", err)
	}
	it.Checked = checked == 1
	it.AutoGenerated = auto == 1
	added, err := parseTimestamp(addedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse added_at for shopping item %d: %w", it.ID, err)
	}
	it.AddedAt = added
	checkedAt, err := parseNullTimestamp(checkedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse checked_at for shopping item %d: %w", it.ID, err)
	}
	it.CheckedAt = checkedAt
	return &it, nil
}
