package geometry

import (
	"github.com/golang/geo/s2"
	"github.com/twpayne/go-geos"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0088

// GeodesicAreaKm2 returns the area of a lon/lat polygon or multipolygon
// on the sphere. ok is false for other geometry types or when the rings
// cannot be read.
func GeodesicAreaKm2(g *geos.Geom) (area float64, ok bool) {
	if g == nil {
		return 0, false
	}

	defer func() {
		if r := recover(); r != nil {
			area, ok = 0, false
		}
	}()

	switch g.TypeID() {
	case geos.TypeIDPolygon:
		return polygonArea(g), true
	case geos.TypeIDMultiPolygon:
		for i := range g.NumGeometries() {
			area += polygonArea(g.Geometry(i))
		}
		return area, true
	default:
		return 0, false
	}
}

func polygonArea(polygon *geos.Geom) float64 {
	if polygon.IsEmpty() {
		return 0
	}
	area := ringArea(polygon.ExteriorRing())
	for i := range polygon.NumInteriorRings() {
		area -= ringArea(polygon.InteriorRing(i))
	}
	if area < 0 {
		return 0
	}
	return area
}

func ringArea(ring *geos.Geom) float64 {
	seq := ring.CoordSeq()
	n := seq.Size()
	// Closed rings repeat the first vertex.
	if n > 1 && seq.X(0) == seq.X(n-1) && seq.Y(0) == seq.Y(n-1) {
		n--
	}
	if n < 3 {
		return 0
	}

	points := make([]s2.Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(seq.Y(i), seq.X(i))))
	}
	loop := s2.LoopFromPoints(points)
	// Ring orientation varies between sources; take the smaller side.
	loop.Normalize()
	return loop.Area() * EarthRadiusKm * EarthRadiusKm
}
