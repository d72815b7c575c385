package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/planner"
)

// SQLStore adapts the SQLite tables to planner.Store.
type SQLStore struct {
	db *sql.DB
	q  Querier
}

var _ planner.Transactor = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

// WithTx runs fn inside a transaction. Nested calls reuse the open transaction.
func (s *SQLStore) WithTx(fn func(planner.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr(fmt.Errorf("begin tx: %w", err))
	}
	if err := fn(&SQLStore{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (s *SQLStore) GetPlanEntry(id int64) (*model.MealPlanEntry, error) {
	e, err := GetPlanEntry(s.q, id)
	return e, storageErr(err)
}

func (s *SQLStore) ListPlanEntries(f planner.EntryFilter) ([]model.MealPlanEntry, error) {
	entries, err := ListPlanEntries(s.q, f)
	return entries, storageErr(err)
}

func (s *SQLStore) SetPlanStatus(id int64, status string, at time.Time) error {
	return storageErr(setPlanStatus(s.q, id, status, at))
}

func (s *SQLStore) GetRecipe(id int64) (*model.Recipe, error) {
	r, err := GetRecipe(s.q, id)
	return r, storageErr(err)
}

func (s *SQLStore) ListRecipes() ([]model.Recipe, error) {
	recipes, err := ListRecipes(s.q)
	return recipes, storageErr(err)
}

func (s *SQLStore) ListInventory() ([]model.InventoryItem, error) {
	items, err := ListInventory(s.q)
	return items, storageErr(err)
}

func (s *SQLStore) SetInventoryQuantity(ingredientID int64, quantity float64, at time.Time) error {
	return storageErr(setInventoryQuantity(s.q, ingredientID, quantity, at))
}

func (s *SQLStore) DeleteInventory(ingredientID int64) error {
	return storageErr(deleteInventory(s.q, ingredientID))
}

func (s *SQLStore) ListShoppingItems() ([]model.ShoppingListItem, error) {
	items, err := ListShoppingItems(s.q)
	return items, storageErr(err)
}

func (s *SQLStore) InsertShoppingItem(item model.ShoppingListItem) (int64, error) {
	id, err := insertShoppingItem(s.q, item)
	return id, storageErr(err)
}

func (s *SQLStore) UpdateShoppingItem(item model.ShoppingListItem) error {
	return storageErr(updateShoppingItem(s.q, item))
}

func (s *SQLStore) DeleteShoppingItem(id int64) error {
	if _, err := s.q.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id); err != nil {
		return storageErr(fmt.Errorf("delete shopping item %d: %w", id, err))
	}
	return nil
}

// storageErr tags failures other than missing records as storage failures.
func storageErr(err error) error {
	if err == nil || errors.Is(err, planner.ErrNotFound) || errors.Is(err, planner.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", planner.ErrStorage, err)
}
