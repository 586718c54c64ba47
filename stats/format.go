package stats

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// DisplayFields are the tooltip strings for one feature.
type DisplayFields struct {
	Area       string
	Population string
	Density    string
}

// Display formats a record for the map tooltip.
func Display(rec Record, densityPrecision int) DisplayFields {
	return DisplayFields{
		Area:       FormatArea(rec.AreaKm2),
		Population: FormatInt(rec.Population),
		Density:    FormatDensity(rec.Density, densityPrecision),
	}
}

// FormatArea rounds to three decimals and prints the shortest form.
func FormatArea(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(roundTo(f, 3), 'f', -1, 64)
}

// FormatInt prints v as an integer with thousands separators.
func FormatInt(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	r := math.RoundToEven(f)
	if math.Abs(r) >= math.MaxInt64 {
		return ""
	}
	return humanize.Comma(int64(r))
}

// FormatDensity prints v with thousands separators and either no or one
// decimal place.
func FormatDensity(v any, precision int) string {
	if precision <= 0 {
		return FormatInt(v)
	}
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	if math.Abs(f) >= math.MaxInt64 {
		return ""
	}
	return humanize.FormatFloat("#,###.#", roundTo(f, 1))
}

func roundTo(f float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(f*p) / p
}

// toFloat accepts numbers, Values and numeric strings, including strings
// already carrying thousands separators, so formatting is idempotent.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case Value:
		if !x.Valid {
			return 0, false
		}
		f = x.Float
	case *float64:
		if x == nil {
			return 0, false
		}
		f = *x
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
