package utils

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geos"
)

// TruncateFullGeometry rounds every coordinate of a polygon or
// multipolygon to precision decimals. Other geometry types are returned
// unchanged. If rounding makes the geometry invalid the input is
// returned together with an error.
func TruncateFullGeometry(feature *geos.Geom, precision int) (result *geos.Geom, err error) {
	if feature == nil {
		return nil, fmt.Errorf(`geometry is nil`)
	}
	if precision < 0 {
		return feature, nil
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = feature, fmt.Errorf("truncation failed: %v", r)
		}
	}()

	var truncated *geos.Geom
	switch feature.TypeID() {
	case geos.TypeIDPolygon:
		truncated = TruncateSinglePolygon(feature, precision)
	case geos.TypeIDMultiPolygon:
		polygons := make([]*geos.Geom, 0, feature.NumGeometries())
		for i := range feature.NumGeometries() {
			if polygon := TruncateSinglePolygon(feature.Geometry(i), precision); polygon != nil {
				polygons = append(polygons, polygon)
			}
		}
		if len(polygons) > 0 {
			truncated = geos.NewCollection(geos.TypeIDMultiPolygon, polygons)
		}
	default:
		return feature, nil
	}

	if truncated == nil {
		return feature, fmt.Errorf("geometry collapsed at precision %d", precision)
	}
	if !truncated.IsValid() {
		return feature, fmt.Errorf("geometry invalid at precision %d: %s", precision, truncated.IsValidReason())
	}
	return truncated, nil
}

// TruncateSinglePolygon rebuilds a polygon with rounded coordinates.
// Degenerate interior rings are dropped; a degenerate exterior ring
// yields nil.
func TruncateSinglePolygon(polygon *geos.Geom, precision int) *geos.Geom {
	exterior := polygon.ExteriorRing()
	if exterior == nil {
		return nil
	}
	outerRing := truncateRing(exterior, precision)
	if outerRing == nil {
		return nil
	}

	rings := [][][]float64{outerRing}
	for r := range polygon.NumInteriorRings() {
		if ringCoords := truncateRing(polygon.InteriorRing(r), precision); ringCoords != nil {
			rings = append(rings, ringCoords)
		}
	}

	return geos.NewPolygon(rings)
}

func truncateRing(ring *geos.Geom, precision int) [][]float64 {
	seq := ring.CoordSeq()
	if seq.Size() <= 3 {
		return nil
	}
	coords := make([][]float64, 0, seq.Size())
	for k := range seq.Size() {
		x, y := truncateCoordinates(seq.X(k), seq.Y(k), precision)
		coords = append(coords, []float64{x, y})
	}
	return coords
}

func truncateCoordinates(x float64, y float64, precision int) (float64, float64) {
	return roundFloat(x, uint(precision)), roundFloat(y, uint(precision))
}

func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
