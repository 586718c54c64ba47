// Package pipeline runs one map build: fetch boundaries, load the
// workbook, join, classify and write the HTML page.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bsaid97/go-seoul-density-map/admname"
	"github.com/bsaid97/go-seoul-density-map/boundary"
	"github.com/bsaid97/go-seoul-density-map/config"
	"github.com/bsaid97/go-seoul-density-map/export"
	"github.com/bsaid97/go-seoul-density-map/geometry"
	"github.com/bsaid97/go-seoul-density-map/join"
	"github.com/bsaid97/go-seoul-density-map/render"
	"github.com/bsaid97/go-seoul-density-map/stats"
	"github.com/bsaid97/go-seoul-density-map/utils"
)

// Source fetches the raw boundary dataset.
type Source interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Result describes a finished build.
type Result struct {
	HTMLPath   string
	ExportPath string
	Features   int
	Districts  int
	Join       join.Report
	Repair     join.RepairReport
	// AreaWarnings counts dongs whose measured area disagrees with the workbook.
	AreaWarnings int
}

// Runner holds the collaborators of a build.
type Runner struct {
	Config *config.Config
	Logger *zap.Logger
	Source Source
	// Progress receives the fetch spinner; nil disables it.
	Progress io.Writer
}

// New wires the default boundary fetcher.
func New(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		Config: cfg,
		Logger: logger,
		Source: boundary.NewFetcher(cfg.Boundary.Timeout),
	}
	if cfg.Output.Progress {
		r.Progress = os.Stderr
	}
	return r
}

// Run builds the map described by cfg.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Result, error) {
	return New(cfg, logger).Run(ctx)
}

// Run executes every stage. Nothing is written unless all preconditions
// hold: the fetch succeeds, the workbook has the required columns and
// the statistics keys are unique.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	log := r.Logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scale, err := cfg.Scale()
	if err != nil {
		return nil, err
	}

	log.Info("=== Fetching boundaries ===", zap.String("source", cfg.Boundary.URL))
	collection, err := r.loadBoundaries(ctx)
	if err != nil {
		return nil, err
	}
	complete, partial := collection.Names()
	log.Info("Boundaries decoded",
		zap.Int("features", len(collection.Records)),
		zap.Int("named", complete),
		zap.Int("unnamed", partial),
		zap.Int("unreadable", collection.Unreadable))

	log.Info("=== Loading workbook ===", zap.String("path", cfg.Workbook.Path), zap.String("sheet", cfg.Workbook.Sheet))
	table, err := stats.LoadWorkbook(cfg.Workbook.Path, cfg.Workbook.Sheet, cfg.Workbook.Columns)
	if err != nil {
		return nil, err
	}
	records := stats.Normalize(table)
	log.Info("Workbook loaded", zap.Int("rows", len(records)), zap.Bool("density_column", table.HasDensity))

	features, report, err := join.Left(collection.Records, records, cfg.Classes.DensityPrecision)
	if err != nil {
		return nil, err
	}
	log.Info("Join complete",
		zap.Int("features", report.Boundaries),
		zap.Int("matched", report.Matched),
		zap.Int("unmatched", len(report.Unmatched)),
		zap.Int("unused_rows", len(report.Unused)))
	for _, name := range report.Unmatched {
		log.Debug("No statistics for boundary", zap.String("adm_nm", name))
	}
	for _, key := range report.Unused {
		log.Debug("Statistics row matched no boundary", zap.String("key", key.String()))
	}

	repairs := join.RepairGeometries(features)
	for _, issue := range repairs.Invalid {
		log.Debug("Invalid geometry before repair",
			zap.String("adm_nm", features[issue.Ref].Boundary.AdmName),
			zap.String("reason", issue.Reason))
	}
	if len(repairs.Failed) > 0 {
		log.Warn("Geometry repair failed, keeping originals", zap.Int("count", len(repairs.Failed)))
	}
	log.Info("Geometries repaired", zap.Int("repaired", repairs.Repaired), zap.Int("invalid_before", len(repairs.Invalid)))

	areaWarnings := r.checkAreas(features)

	for i := range features {
		features[i].Fill = scale.Color(features[i].Density())
	}

	outlines, failed := join.Dissolve(features)
	if len(failed) > 0 {
		log.Warn("District dissolve failed", zap.Strings("districts", failed))
	}
	log.Info("Districts dissolved", zap.Int("districts", len(outlines)))

	cols := cfg.Workbook.Columns
	precision := cfg.Geometry.CoordinatePrecision
	page := render.Page{
		Title:     cfg.Map.Title,
		Caption:   cfg.Map.Caption,
		CenterLat: cfg.Map.CenterLat,
		CenterLng: cfg.Map.CenterLng,
		Zoom:      cfg.Map.Zoom,
		Tiles:     render.Tiles(cfg.Map.Tiles),
		Columns:   cols,
		Legend:    scale.Legend("자료 없음"),
		Dongs:     render.DongCollection(features, cols, precision),
		Districts: render.OutlineCollection(outlines, cols.District, precision),
	}
	if cfg.Map.FitBounds && collection.Bounds != nil && !collection.Bounds.IsEmpty() {
		b := collection.Bounds
		page.FitTo = &render.Bounds{South: b.Min(1), West: b.Min(0), North: b.Max(1), East: b.Max(0)}
	}

	html, err := render.HTML(page)
	if err != nil {
		return nil, fmt.Errorf("failed to render map: %w", err)
	}

	result := &Result{
		Features:     len(features),
		Districts:    len(outlines),
		Join:         report,
		Repair:       repairs,
		AreaWarnings: areaWarnings,
	}

	outputs := []output{{path: cfg.Output.HTMLPath, data: html}}
	if path := cfg.Output.ExportPath; path != "" {
		archive, err := export.Zip(features, cols, precision)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: path, data: archive})
	}

	if err := commit(outputs); err != nil {
		return nil, err
	}
	result.HTMLPath = cfg.Output.HTMLPath
	if len(outputs) > 1 {
		result.ExportPath = cfg.Output.ExportPath
		log.Info("Export written", zap.String("path", result.ExportPath))
	}
	return result, nil
}

func (r *Runner) loadBoundaries(ctx context.Context) (*boundary.Collection, error) {
	cfg := r.Config

	var spinner *utils.Spinner
	if r.Progress != nil {
		spinner = utils.StartSpinner(r.Progress, "Fetching boundaries")
	}
	data, err := r.Source.Fetch(ctx, cfg.Boundary.URL)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return nil, err
	}

	parser := admname.NewParser(cfg.Names.DistrictSuffix, cfg.Names.SubdivisionSuffixes)
	return boundary.Decode(data, cfg.Boundary.NameProperty, parser)
}

// checkAreas compares workbook areas with the measured geodesic area
// and logs large disagreements. It never fails the build.
func (r *Runner) checkAreas(features []join.Feature) int {
	tolerance := r.Config.Geometry.AreaTolerance
	if tolerance <= 0 {
		return 0
	}

	warnings := 0
	for i := range features {
		f := &features[i]
		if f.Stat == nil || !f.Stat.AreaKm2.Valid || f.Stat.AreaKm2.Float <= 0 {
			continue
		}
		measured, ok := geometry.GeodesicAreaKm2(f.Boundary.Geometry)
		if !ok || measured <= 0 {
			continue
		}
		diff := math.Abs(measured-f.Stat.AreaKm2.Float) / f.Stat.AreaKm2.Float
		if diff > tolerance {
			warnings++
			r.Logger.Warn("Workbook area differs from boundary area",
				zap.String("adm_nm", f.Boundary.AdmName),
				zap.Float64("workbook_km2", f.Stat.AreaKm2.Float),
				zap.Float64("measured_km2", measured))
		}
	}
	return warnings
}

type output struct {
	path string
	data []byte
	tmp  string
}

// commit stages every output next to its destination and renames them
// into place once all of them are written. A failed stage leaves no file
// behind.
func commit(outputs []output) error {
	defer func() {
		for _, o := range outputs {
			if o.tmp != "" {
				os.Remove(o.tmp)
			}
		}
	}()

	for i := range outputs {
		tmp, err := stage(outputs[i].path, outputs[i].data)
		if err != nil {
			return err
		}
		outputs[i].tmp = tmp
	}
	for i := range outputs {
		if err := os.Rename(outputs[i].tmp, outputs[i].path); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", outputs[i].path, err)
		}
		outputs[i].tmp = ""
	}
	return nil
}

func stage(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".seoulmap-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return name, nil
}
