package room

import (
	"fmt"
	"math"
)

// Gas indexes the tracked species of room air.
type Gas int

const (
	N2 Gas = iota
	O2
	Ar
	CO2
	H2O
	numGases
)

var gasNames = [...]string{"N2", "O2", "Ar", "CO2", "H2O"}

func (g Gas) String() string {
	if g >= 0 && g < numGases {
		return gasNames[g]
	}
	return fmt.Sprintf("gas(%d)", int(g))
}

// compositionTolerance bounds how far mole fractions may drift from 1.
const compositionTolerance = 1e-6

// Composition holds mole fractions indexed by Gas.
type Composition [numGases]float64

// DryAir is the reference composition of dry air at sea level.
func DryAir() Composition {
	return Composition{N2: 0.78084, O2: 0.20946, Ar: 0.00934, CO2: 0.00036}
}

// Humidify returns c with water vapor at fraction x, the dry species
// scaled down to make room.
func (c Composition) Humidify(x float64) Composition {
	x = math.Max(0, math.Min(1, x))
	dry := 1 - c[H2O]
	var out Composition
	for g := range c {
		if Gas(g) == H2O || dry <= 0 {
			continue
		}
		out[g] = c[g] / dry * (1 - x)
	}
	out[H2O] = x
	return out
}

func (c Composition) Sum() float64 {
	s := 0.0
	for _, v := range c {
		s += v
	}
	return s
}

func (c Composition) Validate() error {
	for g, v := range c {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s fraction %g invalid", Gas(g), v)
		}
	}
	if s := c.Sum(); math.Abs(s-1) > compositionTolerance {
		return fmt.Errorf("fractions sum to %g", s)
	}
	return nil
}

// Map returns the composition keyed by gas name, for snapshots and JSON.
func (c Composition) Map() map[string]float64 {
	m := make(map[string]float64, len(c))
	for g, v := range c {
		m[Gas(g).String()] = v
	}
	return m
}
