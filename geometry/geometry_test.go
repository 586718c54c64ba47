package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"
)

func mustGeom(t *testing.T, geojson string) *geos.Geom {
	t.Helper()
	g, err := geos.NewGeomFromGeoJSON(geojson)
	require.NoError(t, err)
	return g
}

const (
	squareA = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`
	squareB = `{"type":"Polygon","coordinates":[[[1,0],[2,0],[2,1],[1,1],[1,0]]]}`
	squareC = `{"type":"Polygon","coordinates":[[[5,5],[6,5],[6,6],[5,6],[5,5]]]}`
	bowtie  = `{"type":"Polygon","coordinates":[[[0,0],[2,2],[2,0],[0,2],[0,0]]]}`
)

func TestCheckGeometries(t *testing.T) {
	issues := CheckGeometries([]*geos.Geom{mustGeom(t, squareA), nil, mustGeom(t, bowtie)})
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Ref)
	assert.NotEmpty(t, issues[0].Reason)
}

func TestRepair(t *testing.T) {
	broken := mustGeom(t, bowtie)
	require.False(t, broken.IsValid())

	repaired, ok := Repair(broken)
	require.True(t, ok)
	assert.True(t, repaired.IsValid())

	valid := mustGeom(t, squareA)
	repaired, ok = Repair(valid)
	require.True(t, ok)
	assert.InDelta(t, 1.0, repaired.Area(), 1e-9)

	repaired, ok = Repair(nil)
	assert.False(t, ok)
	assert.Nil(t, repaired)
}

func TestRepairCollapsedKeepsOriginal(t *testing.T) {
	collapsed := mustGeom(t, `{"type":"Polygon","coordinates":[[[0,0],[1,1],[2,2],[0,0]]]}`)
	require.False(t, collapsed.IsEmpty())

	repaired, ok := Repair(collapsed)
	assert.False(t, ok)
	assert.Same(t, collapsed, repaired)
}

func TestCascadedUnion(t *testing.T) {
	a, b, c := mustGeom(t, squareA), mustGeom(t, squareB), mustGeom(t, squareC)

	union := CascadedUnion([]*geos.Geom{a, b, c})
	require.NotNil(t, union)
	assert.InDelta(t, 3.0, union.Area(), 1e-9)

	// Inputs remain usable.
	assert.InDelta(t, 1.0, a.Area(), 1e-9)
	assert.Nil(t, CascadedUnion(nil))
}

func TestDissolveBy(t *testing.T) {
	keys := []string{"강남구", "종로구", "강남구", ""}
	geoms := []*geos.Geom{mustGeom(t, squareA), mustGeom(t, squareC), mustGeom(t, squareB), mustGeom(t, squareC)}

	groups, failed := DissolveBy(keys, geoms)
	assert.Empty(t, failed)
	require.Len(t, groups, 2)
	assert.Equal(t, "강남구", groups[0].Key)
	assert.InDelta(t, 2.0, groups[0].Geom.Area(), 1e-9)
	assert.Equal(t, geos.TypeIDPolygon, groups[0].Geom.TypeID())
	assert.Equal(t, "종로구", groups[1].Key)
}

func TestGeodesicAreaKm2(t *testing.T) {
	// Roughly 0.01 x 0.01 degrees at Seoul's latitude: ~1.11 km by ~0.88 km.
	cell := mustGeom(t, `{"type":"Polygon","coordinates":[[[127.00,37.50],[127.01,37.50],[127.01,37.51],[127.00,37.51],[127.00,37.50]]]}`)
	area, ok := GeodesicAreaKm2(cell)
	require.True(t, ok)
	assert.InDelta(t, 0.98, area, 0.03)

	// Orientation does not matter.
	reversed := mustGeom(t, `{"type":"Polygon","coordinates":[[[127.00,37.50],[127.00,37.51],[127.01,37.51],[127.01,37.50],[127.00,37.50]]]}`)
	areaReversed, ok := GeodesicAreaKm2(reversed)
	require.True(t, ok)
	assert.InDelta(t, area, areaReversed, 1e-6)

	point := mustGeom(t, `{"type":"Point","coordinates":[127,37.5]}`)
	_, ok = GeodesicAreaKm2(point)
	assert.False(t, ok)
}
