package analytics

import (
	"math"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

// Canvas dimensions shared by the trend charts, matching the logical
// viewBox the templates render into.
const (
	DefaultCanvasWidth  = 900
	DefaultCanvasHeight = 220
	DefaultCanvasPad    = 18
)

// Canvas is the logical drawing surface for a projection.
type Canvas struct {
	Width  float64
	Height float64
	Pad    float64
}

// DefaultCanvas returns the canvas used by the dashboard trend chart.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight, Pad: DefaultCanvasPad}
}

// Point is a projected chart coordinate. Y grows downward.
type Point struct {
	X float64
	Y float64
}

// Line is one projected series line.
type Line struct {
	Key    string
	Points []Point
}

// Projection holds the drawable geometry for a set of series lines sharing
// one vertical scale.
type Projection struct {
	Lines []Line
	MaxY  float64
}

// Project maps the ordered series onto the canvas for the selected event
// keys. The first bucket lands on the left pad and the last on the right
// pad; a single-bucket series collapses to the left edge. All selected
// lines share one vertical scale with a floor of 1 so an all-zero window
// still projects. Output depends only on the inputs.
func Project(series []travelapi.SeriesRow, keys []string, canvas Canvas) Projection {
	maxY := 1.0
	for _, key := range keys {
		for _, row := range series {
			if v := seriesValue(row, key); v > maxY {
				maxY = v
			}
		}
	}

	innerW := canvas.Width - 2*canvas.Pad
	innerH := canvas.Height - 2*canvas.Pad

	lines := make([]Line, 0, len(keys))
	for _, key := range keys {
		points := make([]Point, 0, len(series))
		for i, row := range series {
			x := canvas.Pad
			if len(series) > 1 {
				x += float64(i) * innerW / float64(len(series)-1)
			}
			y := canvas.Height - canvas.Pad - seriesValue(row, key)*innerH/maxY
			points = append(points, Point{X: x, Y: y})
		}
		lines = append(lines, Line{Key: key, Points: points})
	}
	return Projection{Lines: lines, MaxY: maxY}
}

// seriesValue guards against non-finite counters sneaking in from the wire.
func seriesValue(row travelapi.SeriesRow, key string) float64 {
	v := row.Value(key)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
