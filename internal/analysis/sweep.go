package analysis

import (
	"github.com/san-kum/boilsim/internal/thermo"
)

// SweepPoint is the boiling point of a fluid at one altitude.
type SweepPoint struct {
	Altitude     float64 `json:"altitude"`
	Pressure     float64 `json:"pressure"`
	BoilingPoint float64 `json:"boiling_point"`
	Valid        bool    `json:"valid"`
	Extrapolated bool    `json:"extrapolated"` // outside the Antoine range
}

// AltitudeSweep evaluates steps altitudes evenly spaced over [min, max].
// Points where the Antoine inversion fails are kept with Valid false.
func AltitudeSweep(f *thermo.Fluid, min, max float64, steps int) []SweepPoint {
	if steps <= 1 {
		steps = 2
	}
	step := (max - min) / float64(steps-1)

	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		alt := thermo.ClampAltitude(min + float64(i)*step)
		p := thermo.PressureAtAltitude(alt, nil)
		bp, err := thermo.BoilingPointAt(p, f)
		points = append(points, SweepPoint{
			Altitude:     alt,
			Pressure:     p,
			BoilingPoint: bp,
			Valid:        err == nil,
			Extrapolated: err == nil && !f.Antoine().InRange(bp),
		})
	}
	return points
}

// SweepToASCII plots boiling point against altitude.
func SweepToASCII(points []SweepPoint, width, height int) string {
	p := &Portrait{}
	for _, pt := range points {
		if pt.Valid {
			p.Points = append(p.Points, Point{X: pt.Altitude, Y: pt.BoilingPoint})
		}
	}
	return p.ASCII(width, height)
}
