// Package svg renders the dashboard charts as inline SVG so the console
// needs no client-side charting runtime.
package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/matribhumi/matribhumi-admin/internal/analytics"
)

// Trend renders the multi-line trend chart for an already projected series
// set. All lines share the projection's vertical scale. An empty projection
// renders the grid alone; the surrounding template decides how to announce
// missing data.
func Trend(canvas analytics.Canvas, proj analytics.Projection, opts TrendOpts) (template.HTML, error) {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return "", fmt.Errorf("svg: viewport required")
	}
	if canvas.Width-2*canvas.Pad <= 0 || canvas.Height-2*canvas.Pad <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#176B87")

	titleID := makeID(opts.Title, "trend-title")
	descID := makeID(opts.Title, "trend-desc")

	innerW := canvas.Width - 2*canvas.Pad
	innerH := canvas.Height - 2*canvas.Pad

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %.0f %.0f\" role=\"img\" aria-labelledby=\"%s %s\">", canvas.Width, canvas.Height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Trend chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Event activity per bucket"))))

	// Grid lines with tick values on the shared scale.
	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := canvas.Pad + innerH - ratio*innerH
		value := proj.MaxY * ratio
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" opacity=\"0.25\" aria-hidden=\"true\"></line>", canvas.Pad, y, canvas.Pad+innerW, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", canvas.Pad-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value))))
	}

	for _, line := range proj.Lines {
		color := colorFor(opts.Series, line.Key)
		path := buildPath(line.Points)
		if path == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"3\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path, color))
		if opts.ShowDots {
			for _, p := range line.Points {
				b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", p.X, p.Y, color))
			}
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// buildPath emits an "M x y L x y ..." path for the projected points.
func buildPath(points []analytics.Point) string {
	if len(points) == 0 {
		return ""
	}
	var path strings.Builder
	for i, p := range points {
		if i == 0 {
			path.WriteString(fmt.Sprintf("M%.2f %.2f", p.X, p.Y))
			continue
		}
		path.WriteString(fmt.Sprintf(" L%.2f %.2f", p.X, p.Y))
	}
	return path.String()
}

func colorFor(styles []SeriesStyle, key string) string {
	for _, style := range styles {
		if style.Key == key {
			return fallback(style.Color, "#2563eb")
		}
	}
	return "#2563eb"
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if math.Abs(v-math.Round(v)) < 1e-9 {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.1f", v)
	}
}
