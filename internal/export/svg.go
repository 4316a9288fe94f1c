package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/boilsim/internal/host"
)

// Series is one line of a trace plot.
type Series struct {
	Name  string
	Color string
	Value func(host.Snapshot) float64
}

// DefaultSeries plots pot, boiling point and room temperatures.
func DefaultSeries() []Series {
	return []Series{
		{"pot °C", "#ff5555", func(s host.Snapshot) float64 { return s.Temperature }},
		{"boiling point °C", "#5599ff", func(s host.Snapshot) float64 { return s.BoilingPoint }},
		{"room °C", "#55dd88", func(s host.Snapshot) float64 { return s.RoomTemperature }},
	}
}

const margin = 40.0

// TraceSVG plots series against simulated time on one shared axis.
func TraceSVG(trace []host.Snapshot, series []Series, width, height int) string {
	if len(trace) < 2 || len(series) == 0 {
		return ""
	}

	minX, maxX := trace[0].Time, trace[len(trace)-1].Time
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range trace {
		for _, ser := range series {
			v := ser.Value(s)
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	w, h := float64(width), float64(height)
	px := func(t float64) float64 { return margin + (t-minX)/rangeX*(w-2*margin) }
	py := func(v float64) float64 { return h - margin - (v-minY)/rangeY*(h-2*margin) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#444466" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
<g fill="#888899" font-family="monospace" font-size="11">
<text x="%.1f" y="%.1f">%.1f</text>
<text x="%.1f" y="%.1f">%.1f</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.0f s</text>
</g>
`, width, height, width, height,
		margin, h-margin, w-margin, h-margin,
		margin, margin, margin, h-margin,
		2.0, py(maxY)+4, maxY,
		2.0, py(minY), minY,
		w-margin, h-margin+16, maxX)

	for i, ser := range series {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, ser.Color)
		for j, s := range trace {
			cmd := " L"
			if j == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, px(s.Time), py(ser.Value(s)))
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11">%s</text>
`, margin+8, margin+14*float64(i+1), ser.Color, escape(ser.Name))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
