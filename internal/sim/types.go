package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/boilsim/internal/thermo"
)

// Phase is the branch the simulator took on the last tick.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseHeating
	PhaseBoiling
	PhaseCooling
	PhaseDry
)

var phaseNames = [...]string{"idle", "heating", "boiling", "cooling", "dry"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, name := range phaseNames {
		if name == s {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// Body is the mutable state of one pot of fluid.
type Body struct {
	Liquid       float64 `json:"liquid" yaml:"liquid"`               // kg
	Temperature  float64 `json:"temperature" yaml:"temperature"`     // °C
	Altitude     float64 `json:"altitude" yaml:"altitude"`           // m
	Residue      float64 `json:"residue" yaml:"residue"`             // kg
	Vaporized    float64 `json:"vaporized" yaml:"vaporized"`         // cumulative kg
	HeatReleased float64 `json:"heat_released" yaml:"heat_released"` // cumulative J given to the room
	Phase        Phase   `json:"phase" yaml:"phase"`
}

// NewBody returns a fresh body of mass kg at temp and altitude.
func NewBody(mass, temp, altitude float64) Body {
	return Body{Liquid: mass, Temperature: temp, Altitude: altitude}
}

// TotalMass is the mass the body started with.
func (b Body) TotalMass() float64 {
	return b.Liquid + b.Residue + b.Vaporized
}

// Concentration is the residue share of what is left in the pot.
func (b Body) Concentration() float64 {
	left := b.Liquid + b.Residue
	if left <= 0 {
		return 0
	}
	return b.Residue / left
}

func (b Body) IsValid() bool {
	for _, v := range []float64{b.Liquid, b.Temperature, b.Altitude, b.Residue, b.Vaporized, b.HeatReleased} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks a body supplied from outside the simulator.
func (b Body) Validate() error {
	if !b.IsValid() {
		return fmt.Errorf("state contains NaN or Inf")
	}
	if b.Liquid <= 0 {
		return fmt.Errorf("liquid mass must be positive, got %g", b.Liquid)
	}
	if b.Residue < 0 || b.Vaporized < 0 {
		return fmt.Errorf("residue and vaporized mass must not be negative")
	}
	if b.Residue > b.TotalMass() {
		return fmt.Errorf("residue %g exceeds total mass", b.Residue)
	}
	if b.Temperature < -50 || b.Temperature > 500 {
		return fmt.Errorf("temperature %g °C outside [-50, 500]", b.Temperature)
	}
	if b.Altitude < thermo.MinAltitude || b.Altitude > thermo.MaxAltitude {
		return fmt.Errorf("altitude %g m outside [%g, %g]", b.Altitude, thermo.MinAltitude, thermo.MaxAltitude)
	}
	return nil
}

// Inputs are held constant across one call to Step.
type Inputs struct {
	HeaterPower        float64 // W
	AmbientTemperature float64 // °C
	BoilingPoint       float64 // °C at the current pressure, before elevation
}
