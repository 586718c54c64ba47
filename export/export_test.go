package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"

	"github.com/bsaid97/go-seoul-density-map/admname"
	"github.com/bsaid97/go-seoul-density-map/boundary"
	"github.com/bsaid97/go-seoul-density-map/join"
	"github.com/bsaid97/go-seoul-density-map/stats"
)

func TestZip(t *testing.T) {
	names := []string{"서울특별시 중구 명동", "서울특별시 중구 소공동", "서울특별시 중구 회현동"}
	boundaries := make([]boundary.Record, len(names))
	for i, n := range names {
		boundaries[i] = boundary.Record{AdmName: n, Name: admname.Parse(n)}
	}
	boundaries[0].Geometry = geos.NewPolygon([][][]float64{{{126.98, 37.56}, {126.99, 37.56}, {126.99, 37.57}, {126.98, 37.57}, {126.98, 37.56}}})
	boundaries[1].Geometry = geos.NewPolygon([][][]float64{{{126.97, 37.56}, {126.98, 37.56}, {126.98, 37.57}, {126.97, 37.57}, {126.97, 37.56}}})

	records := stats.FillDensity([]stats.Record{{
		District: "중구", Subdivision: "명동", AreaKm2: stats.Some(0.99), Population: stats.Some(3000),
	}}, false)
	features, _, err := join.Left(boundaries, records, 0)
	require.NoError(t, err)

	data, err := Zip(features, stats.DefaultColumns(), 6)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var entries []string
	files := map[string][]byte{}
	for _, f := range reader.File {
		entries = append(entries, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = body
	}
	sort.Strings(entries)
	assert.Equal(t, []string{
		BaseName + ".cpg", BaseName + ".dbf", JSONName, BaseName + ".shp", BaseName + ".shx",
	}, entries)

	var fc map[string]interface{}
	require.NoError(t, json.Unmarshal(files[JSONName], &fc))
	assert.Len(t, fc["features"], 3)

	dir := t.TempDir()
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, BaseName+ext), files[BaseName+ext], 0o644))
	}
	shape, err := shp.Open(filepath.Join(dir, BaseName+".shp"))
	require.NoError(t, err)
	defer shape.Close()

	count := 0
	for shape.Next() {
		count++
	}
	// The third feature has no geometry and is left out of the shapefile.
	assert.Equal(t, 2, count)
}

func TestAttributesRoundPopulation(t *testing.T) {
	tests := []struct {
		population float64
		want       int
	}{
		{43000, 43000},
		{1500.5, 1500},
		{2500.5, 2500},
		{2500.6, 2501},
		{999.4, 999},
	}
	for _, tt := range tests {
		rec := stats.Record{Population: stats.Some(tt.population)}
		f := join.Feature{Stat: &rec}
		attrs := attributes(&f)
		assert.Equal(t, tt.want, attrs[4], "%v", tt.population)
		assert.Equal(t, stats.FormatInt(tt.population), stats.FormatInt(attrs[4]))
	}
}

