package render

import (
	"encoding/json"

	"github.com/bsaid97/go-seoul-density-map/geometry"
	"github.com/bsaid97/go-seoul-density-map/join"
	"github.com/bsaid97/go-seoul-density-map/stats"
	"github.com/bsaid97/go-seoul-density-map/utils"
)

// Property keys for the display strings and fill colour.
const (
	AreaDisplayKey       = "면적_disp"
	PopulationDisplayKey = "인구_disp"
	DensityDisplayKey    = "밀도_disp"
	FillKey              = "fill"
	AdmNameKey           = "adm_nm"
)

// Feature struct: Holds geometry + properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection struct: Holds multiple features
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

var nullGeometry = json.RawMessage("null")

// DongCollection serialises joined features. Source properties are
// carried over and the derived keys are written on top of them.
// Statistic fields are null for unmatched features; display strings are
// then empty.
func DongCollection(features []join.Feature, cols stats.Columns, precision int) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(features)),
	}

	for i := range features {
		f := &features[i]
		props := make(map[string]interface{}, len(f.Boundary.Properties)+10)
		for k, v := range f.Boundary.Properties {
			props[k] = v
		}
		props[AdmNameKey] = f.Boundary.AdmName
		props[cols.District] = optionalString(f.Boundary.Name.District)
		props[cols.Subdivision] = optionalString(f.Boundary.Name.Subdivision)
		props[cols.Area] = nil
		props[cols.Population] = nil
		props[cols.Density] = nil
		props[AreaDisplayKey] = f.Display.Area
		props[PopulationDisplayKey] = f.Display.Population
		props[DensityDisplayKey] = f.Display.Density
		props[FillKey] = f.Fill
		if f.Stat != nil {
			props[cols.Area] = f.Stat.AreaKm2.Ptr()
			props[cols.Population] = f.Stat.Population.Ptr()
			props[cols.Density] = f.Stat.Density.Ptr()
		}

		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   encodeGeometry(f.Boundary.Geometry, precision),
			Properties: props,
		})
	}
	return fc
}

// OutlineCollection serialises dissolved district outlines.
func OutlineCollection(outlines []join.Outline, districtKey string, precision int) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(outlines)),
	}
	for _, o := range outlines {
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   encodeGeometry(o.Geometry, precision),
			Properties: map[string]interface{}{districtKey: o.District},
		})
	}
	return fc
}

func encodeGeometry(g *geometry.Geom, precision int) json.RawMessage {
	if g == nil {
		return nullGeometry
	}
	if truncated, err := utils.TruncateFullGeometry(g, precision); err == nil {
		g = truncated
	}
	return json.RawMessage(g.ToGeoJSON(-1))
}

func optionalString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
