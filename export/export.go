// Package export bundles the joined dataset as GeoJSON plus an ESRI
// shapefile in one zip archive.
package export

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jonas-p/go-shp"

	"github.com/bsaid97/go-seoul-density-map/join"
	"github.com/bsaid97/go-seoul-density-map/render"
	"github.com/bsaid97/go-seoul-density-map/stats"
	"github.com/bsaid97/go-seoul-density-map/utils"
)

const (
	BaseName = "seoul_dong_density"
	JSONName = BaseName + ".geojson"
)

// Fields is the DBF schema. DBF names are limited to 10 bytes, hence the
// ASCII aliases for the workbook columns.
var Fields = []shp.Field{
	shp.StringField("ADM_NM", 80),
	shp.StringField("GU", 30),
	shp.StringField("DONG", 40),
	shp.FloatField("AREA_KM2", 12, 3),
	shp.NumberField("POP", 12),
	shp.FloatField("DENSITY", 12, 1),
	shp.StringField("FILL", 7),
}

// Zip builds the archive in memory.
func Zip(features []join.Feature, cols stats.Columns, precision int) ([]byte, error) {
	fc := render.DongCollection(features, cols, precision)
	jsonData, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode joined features: %w", err)
	}

	records := make([]utils.ShapeRecord, len(fc.Features))
	for i, f := range fc.Features {
		records[i] = utils.ShapeRecord{
			Geometry:   f.Geometry,
			Attributes: attributes(&features[i]),
		}
	}

	return utils.GenerateShapefileZip(jsonData, utils.ShapefileBundle{
		BaseName: BaseName,
		JSONName: JSONName,
		Fields:   Fields,
		Records:  records,
	})
}

func attributes(f *join.Feature) []interface{} {
	attrs := []interface{}{
		f.Boundary.AdmName,
		f.Boundary.Name.District,
		f.Boundary.Name.Subdivision,
		nil,
		nil,
		nil,
		f.Fill,
	}
	if f.Stat == nil {
		return attrs
	}
	if v := f.Stat.AreaKm2; v.Valid {
		attrs[3] = v.Float
	}
	if v := f.Stat.Population; v.Valid {
		attrs[4] = int(math.RoundToEven(v.Float))
	}
	if v := f.Stat.Density; v.Valid {
		attrs[5] = v.Float
	}
	return attrs
}
