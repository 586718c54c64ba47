package join

import (
	"github.com/bsaid97/go-seoul-density-map/geometry"
)

// RepairReport counts the outcome of RepairGeometries.
type RepairReport struct {
	Repaired int
	Failed   []int
	Invalid  []geometry.Issue
}

// RepairGeometries runs the zero-buffer repair on every joined feature
// in place. Failures keep the original geometry.
func RepairGeometries(features []Feature) RepairReport {
	var report RepairReport

	geoms := make([]*geometry.Geom, len(features))
	for i := range features {
		geoms[i] = features[i].Boundary.Geometry
	}
	report.Invalid = geometry.CheckGeometries(geoms)

	for i := range features {
		g := features[i].Boundary.Geometry
		if g == nil {
			continue
		}
		repaired, ok := geometry.Repair(g)
		if !ok {
			report.Failed = append(report.Failed, i)
			continue
		}
		features[i].Boundary.Geometry = repaired
		report.Repaired++
	}
	return report
}
