// Package config holds every tunable of a map build: data sources,
// workbook columns, colour breakpoints and map presentation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/bsaid97/go-seoul-density-map/classify"
	"github.com/bsaid97/go-seoul-density-map/stats"
)

// DefaultBoundaryURL is the Seoul administrative dong GeoJSON.
const DefaultBoundaryURL = "https://raw.githubusercontent.com/raqoon886/Local_HangJeongDong/master/" +
	"hangjeongdong_%EC%84%9C%EC%9A%B8%ED%8A%B9%EB%B3%84%EC%8B%9C.geojson"

// Config is passed explicitly to the pipeline.
type Config struct {
	Boundary BoundaryConfig `yaml:"boundary"`
	Workbook WorkbookConfig `yaml:"workbook"`
	Output   OutputConfig   `yaml:"output"`
	Names    NamesConfig    `yaml:"names"`
	Classes  ClassesConfig  `yaml:"classes"`
	Map      MapConfig      `yaml:"map"`
	Geometry GeometryConfig `yaml:"geometry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type BoundaryConfig struct {
	// URL may also be a local path or file:// URL.
	URL          string        `yaml:"url"`
	NameProperty string        `yaml:"name_property"`
	Timeout      time.Duration `yaml:"timeout"`
}

type WorkbookConfig struct {
	Path    string        `yaml:"path"`
	Sheet   string        `yaml:"sheet"`
	Columns stats.Columns `yaml:"columns"`
}

type OutputConfig struct {
	HTMLPath string `yaml:"html_path"`
	// ExportPath, when set, receives a zip with the joined GeoJSON and a shapefile.
	ExportPath  string `yaml:"export_path"`
	OpenBrowser bool   `yaml:"open_browser"`
	Progress    bool   `yaml:"progress"`
}

type NamesConfig struct {
	DistrictSuffix      string   `yaml:"district_suffix"`
	SubdivisionSuffixes []string `yaml:"subdivision_suffixes"`
}

type ClassesConfig struct {
	Breaks []float64 `yaml:"breaks"`
	Ramp   []string  `yaml:"ramp"`
	// Colors, when set, are used per bin instead of sampling Ramp.
	Colors           []string `yaml:"colors"`
	Below            string   `yaml:"below"`
	Above            string   `yaml:"above"`
	NoData           string   `yaml:"no_data"`
	DensityPrecision int      `yaml:"density_precision"`
}

type MapConfig struct {
	Title     string  `yaml:"title"`
	CenterLat float64 `yaml:"center_lat"`
	CenterLng float64 `yaml:"center_lng"`
	Zoom      int     `yaml:"zoom"`
	Tiles     string  `yaml:"tiles"`
	Caption   string  `yaml:"caption"`
	// FitBounds zooms to the data instead of the fixed centre.
	FitBounds bool `yaml:"fit_bounds"`
}

type GeometryConfig struct {
	// CoordinatePrecision is the number of decimals kept in the output; negative keeps all.
	CoordinatePrecision int `yaml:"coordinate_precision"`
	// AreaTolerance is the relative difference between workbook and
	// measured area above which a warning is logged; 0 disables the check.
	AreaTolerance float64 `yaml:"area_tolerance"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the settings used when nothing is overridden.
func Default() *Config {
	return &Config{
		Boundary: BoundaryConfig{
			URL:          DefaultBoundaryURL,
			NameProperty: "adm_nm",
			Timeout:      60 * time.Second,
		},
		Workbook: WorkbookConfig{
			Path:    "Seoul DB.xlsx",
			Sheet:   "0",
			Columns: stats.DefaultColumns(),
		},
		Output: OutputConfig{
			HTMLPath:    "index.html",
			OpenBrowser: true,
		},
		Names: NamesConfig{
			DistrictSuffix:      "구",
			SubdivisionSuffixes: []string{"동", "가"},
		},
		Classes: ClassesConfig{
			Breaks:           classify.DefaultBreaks(),
			Ramp:             append([]string(nil), classify.DefaultRamp...),
			NoData:           classify.NoDataColor,
			DensityPrecision: 0,
		},
		Map: MapConfig{
			Title:     "서울 행정동 인구밀도",
			CenterLat: 37.5665,
			CenterLng: 126.9780,
			Zoom:      11,
			Tiles:     "CartoDB positron",
			Caption:   "인구밀도 (명 / km²)",
		},
		Geometry: GeometryConfig{
			CoordinatePrecision: 6,
			AreaTolerance:       0.25,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files when present; missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SEOULMAP_"

// ApplyEnv overrides fields from SEOULMAP_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("BOUNDARY_URL"); ok {
		c.Boundary.URL = v
	}
	if v, ok := get("FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sFETCH_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Boundary.Timeout = d
	}
	if v, ok := get("WORKBOOK"); ok {
		c.Workbook.Path = v
	}
	if v, ok := get("SHEET"); ok {
		c.Workbook.Sheet = v
	}
	if v, ok := get("OUTPUT"); ok {
		c.Output.HTMLPath = v
	}
	if v, ok := get("EXPORT"); ok {
		c.Output.ExportPath = v
	}
	if v, ok := get("OPEN_BROWSER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sOPEN_BROWSER: %w", EnvPrefix, err)
		}
		c.Output.OpenBrowser = b
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks settings before any data is touched.
func (c *Config) Validate() error {
	var problems []string
	if c.Boundary.URL == "" {
		problems = append(problems, "boundary.url is empty")
	}
	if c.Workbook.Path == "" {
		problems = append(problems, "workbook.path is empty")
	}
	if c.Output.HTMLPath == "" {
		problems = append(problems, "output.html_path is empty")
	}
	if c.Names.DistrictSuffix == "" {
		problems = append(problems, "names.district_suffix is empty")
	}
	if len(c.Names.SubdivisionSuffixes) == 0 {
		problems = append(problems, "names.subdivision_suffixes is empty")
	}
	if c.Classes.DensityPrecision < 0 || c.Classes.DensityPrecision > 1 {
		problems = append(problems, "classes.density_precision must be 0 or 1")
	}
	if _, err := c.Scale(); err != nil {
		problems = append(problems, "classes: "+err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Scale builds the classifier described by Classes.
func (c *Config) Scale() (*classify.Scale, error) {
	cl := c.Classes
	if len(cl.Colors) > 0 {
		return classify.New(cl.Breaks, cl.Colors, cl.Below, cl.Above, cl.NoData)
	}
	s, err := classify.NewStep(cl.Breaks, cl.Ramp)
	if err != nil {
		return nil, err
	}
	if cl.Below != "" {
		s.Below = cl.Below
	}
	if cl.Above != "" {
		s.Above = cl.Above
	}
	if cl.NoData != "" {
		s.NoData = cl.NoData
	}
	return s, nil
}
