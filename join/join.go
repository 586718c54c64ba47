// Package join merges boundary records with statistics rows on the
// (district, subdivision) key.
package join

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bsaid97/go-seoul-density-map/boundary"
	"github.com/bsaid97/go-seoul-density-map/stats"
)

// Key identifies a dong.
type Key struct {
	District    string
	Subdivision string
}

func (k Key) String() string {
	return k.District + " " + k.Subdivision
}

// NewKey trims incidental whitespace from both parts.
func NewKey(district, subdivision string) Key {
	return Key{
		District:    strings.TrimSpace(district),
		Subdivision: strings.TrimSpace(subdivision),
	}
}

// Feature is a boundary record with its matching statistics, if any.
type Feature struct {
	Boundary boundary.Record
	Key      Key
	// Stat is nil when no statistics row matched.
	Stat    *stats.Record
	Display stats.DisplayFields
	// Fill is the classified colour, set by the pipeline.
	Fill string
}

func (f *Feature) Matched() bool { return f.Stat != nil }

// Density returns the joined density, nil when unmatched or missing.
func (f *Feature) Density() *float64 {
	if f.Stat == nil {
		return nil
	}
	return f.Stat.Density.Ptr()
}

// CardinalityError reports statistics keys that occur more than once.
type CardinalityError struct {
	Duplicates []Key
}

func (e *CardinalityError) Error() string {
	names := make([]string, len(e.Duplicates))
	for i, k := range e.Duplicates {
		names[i] = fmt.Sprintf("(%s, %s)", k.District, k.Subdivision)
	}
	return fmt.Sprintf("statistics keys are not unique, many-to-one join required: %s", strings.Join(names, ", "))
}

// Report summarises a join.
type Report struct {
	Boundaries int
	Matched    int
	Unmatched  []string
	// Unused lists statistics keys no boundary matched.
	Unused []Key
}

// Index builds the statistics lookup, failing on duplicate keys.
func Index(records []stats.Record) (map[Key]*stats.Record, error) {
	index := make(map[Key]*stats.Record, len(records))
	seen := make(map[Key]int)
	for i := range records {
		key := NewKey(records[i].District, records[i].Subdivision)
		seen[key]++
		if seen[key] == 1 {
			index[key] = &records[i]
		}
	}

	var duplicates []Key
	for key, n := range seen {
		if n > 1 {
			duplicates = append(duplicates, key)
		}
	}
	if len(duplicates) > 0 {
		sortKeys(duplicates)
		return nil, &CardinalityError{Duplicates: duplicates}
	}
	return index, nil
}

// Left joins every boundary record to at most one statistics row. The
// result has exactly one Feature per boundary record, in input order.
// Boundary records without a complete name never match.
func Left(boundaries []boundary.Record, records []stats.Record, densityPrecision int) ([]Feature, Report, error) {
	index, err := Index(records)
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Boundaries: len(boundaries)}
	used := make(map[Key]bool, len(index))
	features := make([]Feature, len(boundaries))

	for i, rec := range boundaries {
		feature := Feature{
			Boundary: rec,
			Key:      NewKey(rec.Name.District, rec.Name.Subdivision),
		}

		if rec.Name.Complete() {
			if stat, ok := index[feature.Key]; ok {
				feature.Stat = stat
				feature.Display = stats.Display(*stat, densityPrecision)
				used[feature.Key] = true
			}
		}

		if feature.Matched() {
			report.Matched++
		} else {
			report.Unmatched = append(report.Unmatched, rec.AdmName)
		}
		features[i] = feature
	}

	for key := range index {
		if !used[key] {
			report.Unused = append(report.Unused, key)
		}
	}
	sortKeys(report.Unused)

	return features, report, nil
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].District != keys[j].District {
			return keys[i].District < keys[j].District
		}
		return keys[i].Subdivision < keys[j].Subdivision
	})
}
