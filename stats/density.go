package stats

// Density is population per square kilometre. A missing operand or a
// non-positive area leaves the result missing.
func Density(population, areaKm2 Value) Value {
	if !population.Valid || !areaKm2.Valid || areaKm2.Float <= 0 {
		return Missing
	}
	return Some(population.Float / areaKm2.Float)
}

// FillDensity returns a copy of records with densities derived where
// needed. Without a density column every row is computed; otherwise only
// missing cells are filled and explicit values are kept as is.
func FillDensity(records []Record, hasDensityColumn bool) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		if !hasDensityColumn || !rec.Density.Valid {
			rec.Density = Density(rec.Population, rec.AreaKm2)
		}
		out[i] = rec
	}
	return out
}

// Normalize fills densities for a loaded table.
func Normalize(table *Table) []Record {
	return FillDensity(table.Records, table.HasDensity)
}
