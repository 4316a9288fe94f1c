package analysis

import (
	"strings"

	"github.com/san-kum/boilsim/internal/host"
	"gonum.org/v1/gonum/floats"
)

type Point struct{ X, Y float64 }

// Portrait is a 2D trajectory, by default temperature against remaining
// liquid mass. Heating runs up the right edge and boiling runs left along
// the boiling point.
type Portrait struct {
	Points []Point
}

func NewPortrait(trace []host.Snapshot) *Portrait {
	p := &Portrait{Points: make([]Point, 0, len(trace))}
	for _, s := range trace {
		p.Points = append(p.Points, Point{X: s.LiquidMass, Y: s.Temperature})
	}
	return p
}

// ASCII renders the portrait on a width×height canvas.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
