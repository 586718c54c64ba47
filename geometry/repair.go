package geometry

import (
	"github.com/twpayne/go-geos"
)

// Geom is the GEOS geometry handle shared by the pipeline packages.
type Geom = geos.Geom

// Repair heals self-intersections with a zero-width buffer. It is best
// effort: when GEOS fails or returns nothing usable the original
// geometry is returned with ok false.
func Repair(g *geos.Geom) (repaired *geos.Geom, ok bool) {
	if g == nil {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			repaired, ok = g, false
		}
	}()

	buffered := g.Buffer(0, 8)
	if buffered == nil {
		return g, false
	}
	if buffered.IsEmpty() && !g.IsEmpty() {
		return g, false
	}
	return buffered, true
}
