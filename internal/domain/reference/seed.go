package reference

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RCKMS condition code export columns.
const (
	rckmsColName        = 0
	rckmsColSNOMED      = 2
	rckmsColDescription = 3
)

// LoadConditionFile reads an RCKMS condition code export (.csv or .xlsx).
// The first row is a header.
func LoadConditionFile(path string) ([]*Condition, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open condition file: %w", err)
		}
		defer f.Close()
		return ParseConditionCSV(f)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open condition workbook: %w", err)
		}
		defer f.Close()
		return ParseConditionWorkbook(f)
	default:
		return nil, fmt.Errorf("unsupported condition file type %q", filepath.Ext(path))
	}
}

// ParseConditionCSV parses RCKMS condition rows from CSV.
func ParseConditionCSV(r io.Reader) ([]*Condition, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read condition csv: %w", err)
	}
	return conditionsFromRows(records)
}

// ParseConditionWorkbook parses RCKMS condition rows from the first sheet of
// a workbook.
func ParseConditionWorkbook(f *excelize.File) ([]*Condition, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("condition workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return conditionsFromRows(rows)
}

func conditionsFromRows(rows [][]string) ([]*Condition, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	var out []*Condition
	for i, row := range rows[1:] {
		if len(row) <= rckmsColSNOMED {
			if isBlank(row) {
				continue
			}
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", i+2, rckmsColSNOMED+1, len(row))
		}
		c := &Condition{
			ID:     strings.TrimSpace(row[rckmsColSNOMED]),
			System: SystemSNOMED,
			Name:   strings.TrimSpace(row[rckmsColName]),
		}
		if len(row) > rckmsColDescription {
			c.Description = strings.TrimSpace(row[rckmsColDescription])
		}
		if c.ID == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// SeedConditions writes conditions through w and returns how many were written.
func SeedConditions(ctx context.Context, w ConditionWriter, conditions []*Condition) (int, error) {
	n := 0
	for _, c := range conditions {
		if err := w.UpsertCondition(ctx, c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
