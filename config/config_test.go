package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Seoul DB.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "index.html", cfg.Output.HTMLPath)
	assert.Equal(t, 60*time.Second, cfg.Boundary.Timeout)
	assert.Len(t, cfg.Classes.Breaks, 12)

	scale, err := cfg.Scale()
	require.NoError(t, err)
	assert.Len(t, scale.Colors, 11)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seoulmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
boundary:
  url: ./data/seoul.geojson
  timeout: 5s
workbook:
  path: stats.xlsx
  sheet: 통계
  columns:
    population: 인구 (2025)
classes:
  breaks: [0, 10000, 20000]
  colors: ["#eeeeee", "#ff0000"]
  density_precision: 1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "./data/seoul.geojson", cfg.Boundary.URL)
	assert.Equal(t, 5*time.Second, cfg.Boundary.Timeout)
	assert.Equal(t, "통계", cfg.Workbook.Sheet)
	assert.Equal(t, "인구 (2025)", cfg.Workbook.Columns.Population)
	// Untouched keys keep their defaults.
	assert.Equal(t, "구", cfg.Workbook.Columns.District)
	assert.Equal(t, "index.html", cfg.Output.HTMLPath)

	scale, err := cfg.Scale()
	require.NoError(t, err)
	assert.Equal(t, []string{"#eeeeee", "#ff0000"}, scale.Colors)
	assert.Equal(t, 1, cfg.Classes.DensityPrecision)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("boundary: [oops"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Classes.Breaks = []float64{10, 5}
	cfg.Classes.DensityPrecision = 3
	cfg.Workbook.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workbook.path")
	assert.Contains(t, err.Error(), "density_precision")
	assert.Contains(t, err.Error(), "classes:")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SEOULMAP_WORKBOOK":      "other.xlsx",
		"SEOULMAP_FETCH_TIMEOUT": "2m",
		"SEOULMAP_OPEN_BROWSER":  "false",
		"SEOULMAP_OUTPUT":        "  ",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "other.xlsx", cfg.Workbook.Path)
	assert.Equal(t, 2*time.Minute, cfg.Boundary.Timeout)
	assert.False(t, cfg.Output.OpenBrowser)
	assert.Equal(t, "index.html", cfg.Output.HTMLPath)

	env["SEOULMAP_FETCH_TIMEOUT"] = "soon"
	assert.Error(t, Default().ApplyEnv(lookup))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SEOULMAP_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SEOULMAP_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "loaded", os.Getenv("SEOULMAP_TEST_DOTENV"))
}
