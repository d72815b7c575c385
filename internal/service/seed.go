package service

import (
	"bytes"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed seed_catalog.yaml
var seedCatalog []byte

// SeedIfEmpty loads the bundled sample recipes when no recipe exists yet.
// It returns the number of recipes created.
func SeedIfEmpty(db *sql.DB) (int, error) {
	n, err := CountRecipes(db)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	doc, err := DecodeRecipeDocument(bytes.NewReader(seedCatalog))
	if err != nil {
		return 0, fmt.Errorf("load seed catalog: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	report, err := importDocument(tx, doc, false)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("seed recipes: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return report.Created, nil
}
