package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/boilsim/internal/room"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFluid       = "water"
	DefaultMass        = 1.0
	DefaultTemperature = 20.0
	DefaultHeaterPower = 1700.0
	DefaultDuration    = 600.0
)

// Workshop is a room plus the experiment set up in it.
type Workshop struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Fluid       string      `yaml:"fluid"`
	Mass        float64     `yaml:"mass"`        // kg
	Temperature float64     `yaml:"temperature"` // °C
	Altitude    float64     `yaml:"altitude"`    // m
	HeaterPower float64     `yaml:"heater_power"`
	Duration    float64     `yaml:"duration"` // s, for batch runs
	Room        room.Config `yaml:"room"`
}

func DefaultWorkshop() *Workshop {
	return &Workshop{
		Name:        "custom",
		Fluid:       DefaultFluid,
		Mass:        DefaultMass,
		Temperature: DefaultTemperature,
		HeaterPower: DefaultHeaterPower,
		Duration:    DefaultDuration,
		Room:        room.DefaultConfig(),
	}
}

// Initial is the pot state the workshop starts from.
func (w *Workshop) Initial() sim.Body {
	return sim.NewBody(w.Mass, w.Temperature, w.Altitude)
}

// Validate checks the workshop on its own. Whether Fluid names a known
// fluid is checked when the experiment is assembled.
func (w *Workshop) Validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"mass", w.Mass},
		{"temperature", w.Temperature},
		{"altitude", w.Altitude},
		{"heater_power", w.HeaterPower},
		{"duration", w.Duration},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return thermo.ConfigErrorf(f.name, "must be finite")
		}
	}
	if w.Fluid == "" {
		return thermo.ConfigErrorf("fluid", "required")
	}
	if w.HeaterPower < 0 {
		return thermo.ConfigErrorf("heater_power", "must not be negative")
	}
	if w.Duration < 0 {
		return thermo.ConfigErrorf("duration", "must not be negative")
	}
	if err := w.Initial().Validate(); err != nil {
		return thermo.ConfigErrorf("initial", "%v", err)
	}
	return w.Room.Validate()
}

// LoadWorkshop reads a YAML workshop document. Missing fields keep their
// defaults.
func LoadWorkshop(path string) (*Workshop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWorkshop(data)
}

func ParseWorkshop(data []byte) (*Workshop, error) {
	w := DefaultWorkshop()
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("%w: %v", thermo.ErrConfiguration, err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func Save(path string, w *Workshop) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
