// Package boundary fetches the dong boundary dataset and decodes it into
// records keyed by their compound administrative name.
package boundary

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-seoul-density-map/admname"
)

// Record is one boundary feature. Name is derived from AdmName; Geometry
// is nil when the source geometry was null or unreadable.
type Record struct {
	AdmName    string
	Name       admname.Name
	Geometry   *geos.Geom
	Properties map[string]interface{}
}

// Collection is a decoded boundary dataset.
type Collection struct {
	Records []Record
	// Bounds covers every decoded geometry; empty when there are none.
	Bounds *geom.Bounds
	// Unreadable counts features whose geometry could not be converted.
	Unreadable int
}

// Names returns how many records parsed into a complete (gu, dong) pair.
func (c *Collection) Names() (complete, partial int) {
	for _, rec := range c.Records {
		if rec.Name.Complete() {
			complete++
		} else {
			partial++
		}
	}
	return complete, partial
}
