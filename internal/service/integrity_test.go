package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/saadjs/mealplan-cli/internal/service"
)

func TestRunDoctorFindsAndFixesIssues(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	mustCreateRecipe(t, db, service.RecipeInput{Title: "Gone", Servings: 1})
	id, err := service.PlanMeal(db, service.PlanMealInput{RecipeIdentifier: "Gone", Date: mustDate(t, "2026-03-01"), Slot: "lunch"})
	if err != nil {
		t.Fatalf("plan meal: %v", err)
	}
	if err := service.DeleteRecipe(db, "Gone"); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	ing, err := service.FindOrCreateIngredient(db, service.IngredientInput{Name: "Rice"})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := db.Exec(`INSERT INTO shopping_list_items(ingredient_id, quantity, unit, checked, auto_generated, added_at) VALUES(?, 100, 'g', 0, 1, ?)`, ing.ID, time.Now().Format(time.RFC3339Nano)); err != nil {
			t.Fatalf("insert auto item: %v", err)
		}
	}

	report, err := service.RunDoctor(db, false, time.Now())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.OrphanPlannedEntries != 1 || report.DuplicateAutoItems != 2 || report.MalformedPlanDates != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	report, err = service.RunDoctor(db, true, time.Now())
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.SkippedOrphans != 1 || report.RemovedDuplicates != 2 {
		t.Fatalf("unexpected fix report %+v", report)
	}
	e, err := service.GetPlanEntry(db, id)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if e.Status != model.StatusSkipped {
		t.Fatalf("expected orphan to be skipped, got %s", e.Status)
	}

	report, err = service.RunDoctor(db, false, time.Now())
	if err != nil {
		t.Fatalf("doctor recheck: %v", err)
	}
	if report.OrphanPlannedEntries != 0 || report.DuplicateAutoItems != 0 {
		t.Fatalf("expected clean report after fix, got %+v", report)
	}
}

func TestBackupCreateAndRestore(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	mustCreateRecipe(t, db, service.RecipeInput{Title: "Backup me", Servings: 1})
	dir := t.TempDir()
	info, err := service.CreateBackup(db, filepath.Join(dir, "backups", "snap.db"))
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info %+v", info)
	}
	if _, err := service.CreateBackup(db, info.Path); err == nil {
		t.Fatalf("expected existing backup file to be refused")
	}

	list, err := service.ListBackups(filepath.Dir(info.Path))
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list %+v", list)
	}

	target := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(info.Path, target, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected restored file: %v", err)
	}
	if err := service.RestoreBackup(info.Path, target, false); err == nil {
		t.Fatalf("expected restore over existing db to require force")
	}

	if err := os.WriteFile(info.Path+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("corrupt checksum: %v", err)
	}
	if err := service.RestoreBackup(info.Path, target, true); err == nil {
		t.Fatalf("expected checksum mismatch to fail restore")
	}
}
