// Package classify maps density values to choropleth colours.
package classify

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"
)

// NoDataColor fills features without a density.
const NoDataColor = "#dddddd"

// DefaultRamp is the white to dark red ramp the step colours are
// sampled from.
var DefaultRamp = []string{"#ffffff", "#ffe5e5", "#ffb3b3", "#ff8080", "#ff4d4d", "#ff1a1a", "#e60000", "#b30000"}

// DefaultBreaks returns 5,000 to 60,000 people/km² in steps of 5,000.
func DefaultBreaks() []float64 {
	return Steps(5000, 60000, 5000)
}

// Steps returns from, from+step, ... up to and including to.
func Steps(from, to, step float64) []float64 {
	var breaks []float64
	if step <= 0 {
		return breaks
	}
	for i := 0; ; i++ {
		v := from + float64(i)*step
		if v > to+step/1e6 {
			break
		}
		breaks = append(breaks, v)
	}
	return breaks
}

// Scale assigns one of n colours to values within n+1 breakpoints.
type Scale struct {
	Breaks []float64
	Colors []string
	Below  string
	Above  string
	NoData string
}

// New validates a scale. Empty Below/Above default to the first/last
// bin colour and an empty NoData to NoDataColor.
func New(breaks []float64, colors []string, below, above, noData string) (*Scale, error) {
	if len(breaks) < 2 {
		return nil, fmt.Errorf("need at least 2 breakpoints, got %d", len(breaks))
	}
	if len(colors) != len(breaks)-1 {
		return nil, fmt.Errorf("need %d colours for %d breakpoints, got %d", len(breaks)-1, len(breaks), len(colors))
	}
	for i := 1; i < len(breaks); i++ {
		if !(breaks[i] > breaks[i-1]) {
			return nil, fmt.Errorf("breakpoints must be strictly increasing (index %d)", i)
		}
	}
	if below == "" {
		below = colors[0]
	}
	if above == "" {
		above = colors[len(colors)-1]
	}
	if noData == "" {
		noData = NoDataColor
	}
	return &Scale{
		Breaks: append([]float64(nil), breaks...),
		Colors: append([]string(nil), colors...),
		Below:  below,
		Above:  above,
		NoData: noData,
	}, nil
}

// NewStep samples one colour per bin from a linear ramp spread evenly
// over [breaks[0], breaks[n]]. Bin i is sampled at a point that moves
// from its lower edge (first bin) to its upper edge (last bin), so the
// first and last bins get the ramp's end colours.
func NewStep(breaks []float64, ramp []string) (*Scale, error) {
	if len(breaks) < 2 {
		return nil, fmt.Errorf("need at least 2 breakpoints, got %d", len(breaks))
	}
	if len(ramp) < 2 {
		return nil, fmt.Errorf("need at least 2 ramp colours, got %d", len(ramp))
	}
	stops := make([]colorful.Color, len(ramp))
	for i, hex := range ramp {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid ramp colour %q: %w", hex, err)
		}
		stops[i] = c
	}

	lo, hi := breaks[0], breaks[len(breaks)-1]
	n := len(breaks) - 1
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		x := breaks[i]*(1-t) + breaks[i+1]*t
		colors[i] = sample(stops, lo, hi, x)
	}
	return New(breaks, colors, "", "", "")
}

func sample(stops []colorful.Color, lo, hi, x float64) string {
	if x <= lo {
		return stops[0].Hex()
	}
	if x >= hi {
		return stops[len(stops)-1].Hex()
	}
	pos := (x - lo) / (hi - lo) * float64(len(stops)-1)
	k := int(math.Floor(pos))
	if k >= len(stops)-1 {
		return stops[len(stops)-1].Hex()
	}
	return stops[k].BlendRgb(stops[k+1], pos-float64(k)).Clamped().Hex()
}

// Bin returns the bin index for v: -1 below the first breakpoint, n
// above the last, otherwise i with Breaks[i] <= v < Breaks[i+1]. The top
// breakpoint itself belongs to the last bin.
func (s *Scale) Bin(v float64) int {
	n := len(s.Colors)
	if v < s.Breaks[0] {
		return -1
	}
	if v > s.Breaks[n] {
		return n
	}
	if v == s.Breaks[n] {
		return n - 1
	}
	// First breakpoint strictly greater than v.
	i := sort.Search(len(s.Breaks), func(i int) bool { return s.Breaks[i] > v })
	return i - 1
}

// Color classifies a density. nil and NaN map to the no-data colour.
func (s *Scale) Color(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return s.NoData
	}
	switch bin := s.Bin(*v); {
	case bin < 0:
		return s.Below
	case bin >= len(s.Colors):
		return s.Above
	default:
		return s.Colors[bin]
	}
}

// LegendEntry is one swatch of the map legend.
type LegendEntry struct {
	Label string
	Color string
}

// Legend lists one entry per bin plus the no-data swatch.
func (s *Scale) Legend(noDataLabel string) []LegendEntry {
	entries := make([]LegendEntry, 0, len(s.Colors)+1)
	for i, color := range s.Colors {
		label := fmt.Sprintf("%s – %s", humanize.Commaf(s.Breaks[i]), humanize.Commaf(s.Breaks[i+1]))
		entries = append(entries, LegendEntry{Label: label, Color: color})
	}
	if noDataLabel != "" {
		entries = append(entries, LegendEntry{Label: noDataLabel, Color: s.NoData})
	}
	return entries
}
