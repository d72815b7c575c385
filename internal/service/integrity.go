package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/mealplan-cli/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	OrphanPlannedEntries int `json:"orphan_planned_entries"`
	DuplicateAutoItems   int `json:"duplicate_auto_items"`
	MalformedPlanDates   int `json:"malformed_plan_dates"`
	SkippedOrphans       int `json:"skipped_orphans,omitempty"`
	RemovedDuplicates    int `json:"removed_duplicates,omitempty"`
}

// CreateBackup writes a consistent snapshot of the open database to outPath
// with VACUUM INTO and records its checksum next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	checksumFile := backupPath + ".sha256"
	if expected, err := os.ReadFile(checksumFile); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor reports planned entries whose recipe was deleted, redundant
// auto-generated shopping items and plan dates that cannot be parsed. With fix
// set, orphans are marked skipped and redundant auto items are deleted.
func RunDoctor(db *sql.DB, fix bool, now time.Time) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`SELECT COUNT(1) FROM meal_plan_entries WHERE recipe_id IS NULL AND status = ?`, model.StatusPlanned).Scan(&report.OrphanPlannedEntries); err != nil {
		return report, fmt.Errorf("doctor orphan check: %w", err)
	}
	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt
  FROM shopping_list_items
  WHERE auto_generated = 1 AND checked = 0
  GROUP BY ingredient_id
  HAVING cnt > 1
)
`).Scan(&report.DuplicateAutoItems); err != nil {
		return report, fmt.Errorf("doctor duplicate query: %w", err)
	}

	rows, err := db.Query(`SELECT plan_date FROM meal_plan_entries`)
	if err != nil {
		return report, fmt.Errorf("doctor plan date query: %w", err)
	}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor plan date scan: %w", err)
		}
		if _, err := ParseDate(raw); err != nil {
			report.MalformedPlanDates++
		}
	}
	_ = rows.Close()

	if !fix || (report.OrphanPlannedEntries == 0 && report.DuplicateAutoItems == 0) {
		return report, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("doctor fix begin tx: %w", err)
	}
	res, err := tx.Exec(`
UPDATE meal_plan_entries SET status = ?, completed_at = ?
WHERE recipe_id IS NULL AND status = ?
`, model.StatusSkipped, formatTimestamp(now), model.StatusPlanned)
	if err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("doctor fix orphans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("read rows affected: %w", err)
	}
	report.SkippedOrphans = int(n)

	res, err = tx.Exec(`
DELETE FROM shopping_list_items
WHERE auto_generated = 1 AND checked = 0
  AND id NOT IN (
    SELECT MIN(id) FROM shopping_list_items
    WHERE auto_generated = 1 AND checked = 0
    GROUP BY ingredient_id
  )
`)
	if err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("doctor fix duplicates: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("read rows affected: %w", err)
	}
	report.RemovedDuplicates = int(n)
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("doctor fix commit: %w", err)
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
