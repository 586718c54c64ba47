// Package render writes the joined dataset as a self-contained Leaflet
// map page.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/bsaid97/go-seoul-density-map/classify"
	"github.com/bsaid97/go-seoul-density-map/stats"
)

//go:embed map.html.tmpl
var mapTemplate string

var pageTemplate = template.Must(template.New("map").Parse(mapTemplate))

// TileSource is a base layer definition.
type TileSource struct {
	Name        string
	URL         string
	Attribution string
}

var tileSources = map[string]TileSource{
	"CartoDB positron": {
		Name:        "CartoDB positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
	},
	"OpenStreetMap": {
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	},
}

// Tiles resolves a base layer name; unknown names fall back to CartoDB positron.
func Tiles(name string) TileSource {
	if src, ok := tileSources[name]; ok {
		return src
	}
	return tileSources["CartoDB positron"]
}

// Bounds is a south-west / north-east box in degrees.
type Bounds struct {
	South, West, North, East float64
}

// Page is everything the map template needs.
type Page struct {
	Title     string
	Caption   string
	CenterLat float64
	CenterLng float64
	Zoom      int
	// FitTo, when set, overrides the centre and zoom.
	FitTo     *Bounds
	Tiles     TileSource
	Columns   stats.Columns
	Legend    []classify.LegendEntry
	Dongs     FeatureCollection
	Districts FeatureCollection
}

type templateData struct {
	Title       string
	Caption     string
	Center      template.JS
	Zoom        int
	FitTo       template.JS
	TileURL     string
	TileName    string
	Attribution template.JS
	Columns     stats.Columns
	Fields      template.JS
	Aliases     template.JS
	Legend      []classify.LegendEntry
	Dongs       template.JS
	Districts   template.JS
	FillKey     string
}

// Write renders page as HTML to w.
func Write(w io.Writer, page Page) error {
	data, err := prepare(page)
	if err != nil {
		return err
	}
	return pageTemplate.Execute(w, data)
}

// HTML renders page into memory.
func HTML(page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func prepare(page Page) (*templateData, error) {
	dongs, err := json.Marshal(page.Dongs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dong features: %w", err)
	}
	districts, err := json.Marshal(page.Districts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode district outlines: %w", err)
	}

	cols := page.Columns
	fields, _ := json.Marshal([]string{cols.District, cols.Subdivision, AreaDisplayKey, PopulationDisplayKey, DensityDisplayKey})
	aliases, _ := json.Marshal([]string{cols.District, cols.Subdivision, cols.Area, cols.Population, cols.Density})
	center, _ := json.Marshal([2]float64{page.CenterLat, page.CenterLng})
	attribution, _ := json.Marshal(page.Tiles.Attribution)

	fit := template.JS("null")
	if page.FitTo != nil {
		b, _ := json.Marshal([2][2]float64{{page.FitTo.South, page.FitTo.West}, {page.FitTo.North, page.FitTo.East}})
		fit = template.JS(b)
	}

	return &templateData{
		Title:       page.Title,
		Caption:     page.Caption,
		Center:      template.JS(center),
		Zoom:        page.Zoom,
		FitTo:       fit,
		TileURL:     page.Tiles.URL,
		TileName:    page.Tiles.Name,
		Attribution: template.JS(attribution),
		Columns:     cols,
		Fields:      template.JS(fields),
		Aliases:     template.JS(aliases),
		Legend:      page.Legend,
		Dongs:       template.JS(dongs),
		Districts:   template.JS(districts),
		FillKey:     FillKey,
	}, nil
}
