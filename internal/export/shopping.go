package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/saadjs/mealplan-cli/internal/model"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Shopping"

var header = []string{"ingredient", "quantity", "unit", "source", "status", "added_at"}

// FormatFromPath picks the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export file %q (expected .csv or .xlsx)", path)
	}
}

// WriteFile exports items to path in the format implied by its extension.
func WriteFile(path string, items []model.ShoppingListItem) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, format, items); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func Write(w io.Writer, format Format, items []model.ShoppingListItem) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, items)
	case FormatXLSX:
		return writeXLSX(w, items)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(out io.Writer, items []model.ShoppingListItem) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		rec := []string{
			it.Ingredient,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			it.Unit,
			source(it),
			status(it),
			it.AddedAt.Format(model.DateLayout),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(out io.Writer, items []model.ShoppingListItem) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := sw.SetRow("A1", row); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{
			it.Ingredient,
			it.Quantity,
			it.Unit,
			source(it),
			status(it),
			it.AddedAt.Format(model.DateLayout),
		}); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func source(it model.ShoppingListItem) string {
	if it.AutoGenerated {
		return "plan"
	}
	return "manual"
}

func status(it model.ShoppingListItem) string {
	if it.Checked {
		return "purchased"
	}
	return "open"
}
