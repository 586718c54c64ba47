package join

import (
	"github.com/bsaid97/go-seoul-density-map/geometry"
)

// Outline is the dissolved boundary of one district.
type Outline struct {
	District string
	Geometry *geometry.Geom
}

// Dissolve unions the dong polygons of each district into one outline,
// in order of first appearance. Features without a district are left
// out. The second result names districts whose union failed.
func Dissolve(features []Feature) ([]Outline, []string) {
	keys := make([]string, len(features))
	geoms := make([]*geometry.Geom, len(features))
	for i := range features {
		keys[i] = features[i].Key.District
		geoms[i] = features[i].Boundary.Geometry
	}

	groups, failed := geometry.DissolveBy(keys, geoms)
	outlines := make([]Outline, len(groups))
	for i, g := range groups {
		outlines[i] = Outline{District: g.Key, Geometry: g.Geom}
	}
	return outlines, failed
}
