package stats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadWorkbook reads the statistics sheet of an .xlsx file. sheet is
// either a sheet name or a zero-based index; empty means the first
// sheet. The first row is the header.
func LoadWorkbook(path, sheet string, cols Columns) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	return ParseRows(rows, cols)
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == sheet {
			return name, nil
		}
	}
	if idx, err := strconv.Atoi(sheet); err == nil {
		if idx < 0 || idx >= len(sheets) {
			return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
		}
		return sheets[idx], nil
	}
	return "", fmt.Errorf("sheet %q not found", sheet)
}

// ParseRows turns raw sheet rows into a Table, validating the header.
// Blank rows are skipped.
func ParseRows(rows [][]string, cols Columns) (*Table, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: []string{cols.District, cols.Subdivision, cols.Area, cols.Population}}
	}

	index := IndexHeader(rows[0])
	hasDensity, err := ValidateColumns(index, cols)
	if err != nil {
		return nil, err
	}

	table := &Table{HasDensity: hasDensity}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := Record{
			District:    strings.TrimSpace(cell(row, index[cols.District])),
			Subdivision: strings.TrimSpace(cell(row, index[cols.Subdivision])),
			AreaKm2:     ParseValue(cell(row, index[cols.Area])),
			Population:  ParseValue(cell(row, index[cols.Population])),
		}
		if hasDensity {
			rec.Density = ParseValue(cell(row, index[cols.Density]))
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// cell tolerates short rows; excelize trims trailing empty cells.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
