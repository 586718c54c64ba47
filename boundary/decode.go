package boundary

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-seoul-density-map/admname"
)

// DefaultNameProperty is the GeoJSON property holding the compound name.
const DefaultNameProperty = "adm_nm"

// Decode parses a GeoJSON FeatureCollection. Every feature becomes a
// Record, in input order, whether or not its name or geometry is usable.
func Decode(data []byte, nameProperty string, parser *admname.Parser) (*Collection, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse boundary feature collection: %w", err)
	}

	collection := &Collection{
		Records: make([]Record, 0, len(fc.Features)),
		Bounds:  geom.NewBounds(geom.XY),
	}

	for _, feature := range fc.Features {
		if feature == nil {
			continue
		}
		admName := propertyString(feature.Properties, nameProperty)
		rec := Record{
			AdmName:    admName,
			Name:       parser.Parse(admName),
			Properties: feature.Properties,
		}

		if feature.Geometry != nil {
			g, err := toGEOS(feature.Geometry)
			if err != nil {
				collection.Unreadable++
			} else {
				rec.Geometry = g
				collection.Bounds.Extend(feature.Geometry)
			}
		}

		collection.Records = append(collection.Records, rec)
	}

	return collection, nil
}

func toGEOS(g geom.T) (*geos.Geom, error) {
	raw, err := geojson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return geos.NewGeomFromGeoJSON(string(raw))
}

func propertyString(properties map[string]interface{}, key string) string {
	value, ok := properties[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
