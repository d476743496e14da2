package content

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

const pieSize = 200

// SliceColors cycles across slices by index.
var SliceColors = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40"}

// Segment is the computed geometry of one slice.
type Segment struct {
	Label      string  `json:"label"`
	Count      float64 `json:"count"`
	Percentage float64 `json:"percentage"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Path       string  `json:"path"`
	Color      string  `json:"color"`
}

// Segments lays slices out clockwise from 12 o'clock on a pieSize canvas.
// A zero total yields zero-width segments.
func Segments(slices []models.Slice) []Segment {
	total := 0.0
	for _, s := range slices {
		total += s.Count
	}

	out := make([]Segment, 0, len(slices))
	angle := 0.0
	for i, s := range slices {
		pct := 0.0
		if total > 0 {
			pct = s.Count / total * 100
		}
		sweep := pct / 100 * 360
		seg := Segment{
			Label:      s.Label,
			Count:      s.Count,
			Percentage: pct,
			StartAngle: angle,
			EndAngle:   angle + sweep,
			Color:      SliceColors[i%len(SliceColors)],
		}
		seg.Path = slicePath(seg.StartAngle, seg.EndAngle)
		angle += sweep
		out = append(out, seg)
	}
	return out
}

// LegendLabel formats "label: count (p%)" with one decimal.
func (s Segment) LegendLabel() string {
	return fmt.Sprintf("%s: %s (%.1f%%)", s.Label, strconv.FormatFloat(s.Count, 'f', -1, 64), s.Percentage)
}

func slicePath(startAngle, endAngle float64) string {
	r := float64(pieSize) / 2
	cx, cy := r, r
	sx, sy := polarToCartesian(cx, cy, r, endAngle)
	ex, ey := polarToCartesian(cx, cy, r, startAngle)
	largeArc := "0"
	if endAngle-startAngle > 180 {
		largeArc = "1"
	}
	return strings.Join([]string{
		fmt.Sprintf("M %g %g", cx, cy),
		fmt.Sprintf("L %g %g", sx, sy),
		fmt.Sprintf("A %g %g 0 %s 0 %g %g", r, r, largeArc, ex, ey),
		"Z",
	}, " ")
}

func polarToCartesian(cx, cy, r, degrees float64) (float64, float64) {
	rad := (degrees - 90) * math.Pi / 180
	return round3(cx + r*math.Cos(rad)), round3(cy + r*math.Sin(rad))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// PieChart renders a chart with legend. Items without slices render nothing.
func PieChart(p registry.ContentProps) *render.Node {
	item, ok := p.Item.(models.PieChartItem)
	if !ok || len(item.Slices) == 0 {
		return nil
	}

	segments := Segments(item.Slices)

	var title *render.Node
	if item.Title != "" {
		title = render.New(render.KindText, p.Key+"/title", map[string]any{
			"text":  item.Title,
			"color": p.Colors.Text,
		}).WithStyle("formLabel")
	}

	legend := make([]*render.Node, 0, len(segments))
	for i, seg := range segments {
		legend = append(legend, render.New(render.KindText, fmt.Sprintf("%s/legend/%d", p.Key, i), map[string]any{
			"text":   seg.LegendLabel(),
			"swatch": seg.Color,
			"color":  p.Colors.Text,
		}).WithStyle("description"))
	}

	chart := render.New(render.KindPieChart, p.Key+"/chart", map[string]any{
		"size":     pieSize,
		"segments": segments,
	})

	return render.New(render.KindView, p.Key, nil,
		title,
		chart,
		render.New(render.KindView, p.Key+"/legend", nil, legend...),
	).WithStyle("fieldContainer")
}
