// Package stats loads per-dong population statistics from a workbook,
// fills in missing densities and formats values for display.
package stats

import (
	"math"
	"strconv"
	"strings"
)

// Value is an optional number read from a spreadsheet cell.
type Value struct {
	Float float64
	Valid bool
}

func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

var Missing = Value{}

// Ptr returns nil for a missing value.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

// ParseValue reads a cell. Thousands separators and surrounding
// whitespace are ignored; anything else unparseable is missing.
func ParseValue(cell string) Value {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return Some(f)
}

// Record is one statistics row keyed by (District, Subdivision).
type Record struct {
	District    string
	Subdivision string
	AreaKm2     Value
	Population  Value
	Density     Value
}

// Columns names the workbook headers for each field.
type Columns struct {
	District    string `yaml:"district"`
	Subdivision string `yaml:"subdivision"`
	Area        string `yaml:"area"`
	Population  string `yaml:"population"`
	Density     string `yaml:"density"`
}

func DefaultColumns() Columns {
	return Columns{
		District:    "구",
		Subdivision: "행정동",
		Area:        "면적 (km2)",
		Population:  "인구 (2024)",
		Density:     "km2당 인구",
	}
}

// Table is the parsed sheet before normalisation.
type Table struct {
	Records    []Record
	HasDensity bool
}
