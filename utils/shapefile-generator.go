package utils

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
)

// GeometryFromGeoJSON represents a simplified geometry structure for conversion
type GeometryFromGeoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ShapeRecord is one shapefile row: a GeoJSON polygon geometry and one
// attribute value per field (float64, int or string).
type ShapeRecord struct {
	Geometry   json.RawMessage
	Attributes []interface{}
}

// ShapefileBundle names the files written into the zip.
type ShapefileBundle struct {
	BaseName string
	JSONName string
	Fields   []shp.Field
	Records  []ShapeRecord
}

// GenerateShapefileZip creates a zip file containing both the JSON and the shapefile
func GenerateShapefileZip(jsonData []byte, bundle ShapefileBundle) ([]byte, error) {
	var zipBuffer bytes.Buffer
	zipWriter := zip.NewWriter(&zipBuffer)

	jsonFile, err := zipWriter.Create(bundle.JSONName)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file in zip: %w", err)
	}
	if _, err = jsonFile.Write(jsonData); err != nil {
		return nil, fmt.Errorf("failed to write JSON data to zip: %w", err)
	}

	if err = addShapefileToZip(zipWriter, bundle); err != nil {
		return nil, fmt.Errorf("failed to add shapefile to zip: %w", err)
	}

	if err = zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}

	return zipBuffer.Bytes(), nil
}

// addShapefileToZip creates shapefile components and adds them to the zip
func addShapefileToZip(zipWriter *zip.Writer, bundle ShapefileBundle) error {
	tempDir, err := os.MkdirTemp("", "shapefile_")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	shapefilePath := filepath.Join(tempDir, bundle.BaseName+".shp")
	if err = generateShapefile(shapefilePath, bundle); err != nil {
		return fmt.Errorf("failed to generate shapefile: %w", err)
	}

	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		filePath := strings.TrimSuffix(shapefilePath, ".shp") + ext
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			continue
		}

		fileContent, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read shapefile component %s: %w", ext, err)
		}

		zipFile, err := zipWriter.Create(bundle.BaseName + ext)
		if err != nil {
			return fmt.Errorf("failed to create %s file in zip: %w", ext, err)
		}
		if _, err = zipFile.Write(fileContent); err != nil {
			return fmt.Errorf("failed to write %s data to zip: %w", ext, err)
		}
	}

	// DBF text is UTF-8.
	cpg, err := zipWriter.Create(bundle.BaseName + ".cpg")
	if err != nil {
		return fmt.Errorf("failed to create .cpg file in zip: %w", err)
	}
	_, err = cpg.Write([]byte("UTF-8"))
	return err
}

// generateShapefile writes every record with a polygon geometry. Records
// with null or non-polygon geometry are skipped.
func generateShapefile(shapefilePath string, bundle ShapefileBundle) error {
	if len(bundle.Fields) == 0 {
		return fmt.Errorf("no fields defined for shapefile")
	}

	shape, err := shp.Create(shapefilePath, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("failed to create shapefile: %w", err)
	}
	defer shape.Close()

	if err = shape.SetFields(bundle.Fields); err != nil {
		return fmt.Errorf("failed to set shapefile fields: %w", err)
	}

	for i, record := range bundle.Records {
		polygon, err := polygonFromGeoJSON(record.Geometry)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
		if polygon == nil {
			continue
		}

		row := int(shape.Write(polygon))
		for field, value := range record.Attributes {
			if field >= len(bundle.Fields) {
				break
			}
			if value == nil {
				value = ""
			}
			if err := shape.WriteAttribute(row, field, value); err != nil {
				return fmt.Errorf("feature %d field %d: %w", i, field, err)
			}
		}
	}

	return nil
}

// polygonFromGeoJSON converts a Polygon or MultiPolygon. It returns nil
// without error for null geometries and other types.
func polygonFromGeoJSON(raw json.RawMessage) (*shp.Polygon, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var geom GeometryFromGeoJSON
	if err := json.Unmarshal(raw, &geom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geometry: %w", err)
	}

	var polygons [][][][]float64
	switch geom.Type {
	case "Polygon":
		var coords [][][]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		polygons = [][][][]float64{coords}
	case "MultiPolygon":
		if err := json.Unmarshal(geom.Coordinates, &polygons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
		}
	default:
		return nil, nil
	}

	polygon := &shp.Polygon{}
	partIndex := int32(0)
	for _, poly := range polygons {
		for _, ring := range poly {
			var points []shp.Point
			for _, coord := range ring {
				if len(coord) >= 2 {
					points = append(points, shp.Point{X: coord[0], Y: coord[1]})
				}
			}
			if len(points) > 0 {
				polygon.Parts = append(polygon.Parts, partIndex)
				polygon.Points = append(polygon.Points, points...)
				partIndex += int32(len(points))
			}
		}
	}
	if len(polygon.Points) == 0 {
		return nil, nil
	}
	polygon.NumParts = int32(len(polygon.Parts))
	polygon.NumPoints = int32(len(polygon.Points))
	polygon.Box = shp.BBoxFromPoints(polygon.Points)
	return polygon, nil
}
