package stats

import (
	"fmt"
	"strings"
)

// SchemaError reports required workbook columns that were not found.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("workbook is missing required columns: [%s]", strings.Join(e.Missing, ", "))
}

// ColumnIndex maps trimmed header names to their position.
type ColumnIndex map[string]int

func IndexHeader(header []string) ColumnIndex {
	index := make(ColumnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

func (c ColumnIndex) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// ValidateColumns checks that every required column is present. The
// density column is optional since it can be derived; the returned flag
// says whether it was found.
func ValidateColumns(index ColumnIndex, cols Columns) (hasDensity bool, err error) {
	var missing []string
	for _, name := range []string{cols.District, cols.Subdivision, cols.Area, cols.Population} {
		if !index.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return false, &SchemaError{Missing: missing}
	}
	return index.Has(cols.Density), nil
}
