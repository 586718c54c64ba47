package geometry

import (
	"github.com/twpayne/go-geos"
)

// Issue describes an invalid geometry found before repair.
type Issue struct {
	Ref    int    `json:"ref"`
	Reason string `json:"reason"`
}

// CheckGeometries returns an Issue for every invalid geometry in geoms.
// Nil entries are skipped.
func CheckGeometries(geoms []*geos.Geom) []Issue {
	var issues []Issue
	for i, shape := range geoms {
		if shape == nil {
			continue
		}
		if reason, ok := checkOne(shape); !ok {
			issues = append(issues, Issue{Ref: i, Reason: reason})
		}
	}
	return issues
}

func checkOne(shape *geos.Geom) (reason string, valid bool) {
	defer func() {
		if r := recover(); r != nil {
			reason, valid = "validity check failed", false
		}
	}()
	if shape.IsValid() {
		return "", true
	}
	return shape.IsValidReason(), false
}
