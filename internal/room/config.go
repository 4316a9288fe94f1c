package room

import (
	"math"

	"github.com/san-kum/boilsim/internal/thermo"
)

// Contribution is a steady rate of heat and matter released into the room.
type Contribution struct {
	Heat  float64 `yaml:"heat" json:"heat"`   // W
	Vapor float64 `yaml:"vapor" json:"vapor"` // water, kg/s
	CO2   float64 `yaml:"co2" json:"co2"`     // mol/s
}

// SourceSpec declares a fixed source such as occupants or appliances.
type SourceSpec struct {
	Name         string `yaml:"name" json:"name"`
	Contribution `yaml:",inline"`
}

type ACConfig struct {
	Enabled  bool    `yaml:"enabled" json:"enabled"`
	Setpoint float64 `yaml:"setpoint" json:"setpoint"` // °C
	Capacity float64 `yaml:"capacity" json:"capacity"` // W
	Kp       float64 `yaml:"kp" json:"kp"`
	Ki       float64 `yaml:"ki" json:"ki"`
	Kd       float64 `yaml:"kd" json:"kd"`
}

// Config describes the room around the experiment.
type Config struct {
	Volume             float64 `yaml:"volume" json:"volume"`             // m³
	Temperature        float64 `yaml:"temperature" json:"temperature"`   // °C
	Humidity           float64 `yaml:"humidity" json:"humidity"`         // %RH
	ThermalMass        float64 `yaml:"thermal_mass" json:"thermal_mass"` // J/K of walls and furnishings
	OutdoorTemperature float64 `yaml:"outdoor_temperature" json:"outdoor_temperature"`
	OutdoorHumidity    float64 `yaml:"outdoor_humidity" json:"outdoor_humidity"`
	Envelope           float64 `yaml:"envelope" json:"envelope"`                   // W/K
	LeakRate           float64 `yaml:"leak_rate" json:"leak_rate"`                 // 1/s
	AirExchangeRate    float64 `yaml:"air_exchange_rate" json:"air_exchange_rate"` // 1/s

	MinPressure    float64 `yaml:"min_pressure" json:"min_pressure"`
	MaxPressure    float64 `yaml:"max_pressure" json:"max_pressure"`
	MinTemperature float64 `yaml:"min_temperature" json:"min_temperature"`
	MaxTemperature float64 `yaml:"max_temperature" json:"max_temperature"`

	ReferenceStep float64 `yaml:"reference_step" json:"reference_step"`
	HistorySize   int     `yaml:"history_size" json:"history_size"`

	AC      ACConfig     `yaml:"ac" json:"ac"`
	Sources []SourceSpec `yaml:"sources,omitempty" json:"sources,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Volume:             40,
		Temperature:        20,
		Humidity:           40,
		ThermalMass:        250e3,
		OutdoorTemperature: 20,
		OutdoorHumidity:    40,
		Envelope:           25,
		LeakRate:           1e-3,
		MinPressure:        20e3,
		MaxPressure:        120e3,
		MinTemperature:     -20,
		MaxTemperature:     60,
		ReferenceStep:      1,
		HistorySize:        600,
		AC: ACConfig{
			Setpoint: 21,
			Capacity: 2500,
			Kp:       800,
			Ki:       2,
		},
	}
}

// Validate rejects non-physical room documents.
func (c Config) Validate() error {
	fields := []struct {
		name string
		val  float64
	}{
		{"room.volume", c.Volume},
		{"room.temperature", c.Temperature},
		{"room.humidity", c.Humidity},
		{"room.thermal_mass", c.ThermalMass},
		{"room.outdoor_temperature", c.OutdoorTemperature},
		{"room.outdoor_humidity", c.OutdoorHumidity},
		{"room.envelope", c.Envelope},
		{"room.leak_rate", c.LeakRate},
		{"room.air_exchange_rate", c.AirExchangeRate},
		{"room.min_pressure", c.MinPressure},
		{"room.max_pressure", c.MaxPressure},
		{"room.min_temperature", c.MinTemperature},
		{"room.max_temperature", c.MaxTemperature},
		{"room.reference_step", c.ReferenceStep},
		{"room.ac.setpoint", c.AC.Setpoint},
		{"room.ac.capacity", c.AC.Capacity},
		{"room.ac.kp", c.AC.Kp},
		{"room.ac.ki", c.AC.Ki},
		{"room.ac.kd", c.AC.Kd},
	}
	for _, f := range fields {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return thermo.ConfigErrorf(f.name, "must be finite")
		}
	}

	switch {
	case c.Volume <= 0:
		return thermo.ConfigErrorf("room.volume", "must be positive, got %g", c.Volume)
	case c.ThermalMass < 0:
		return thermo.ConfigErrorf("room.thermal_mass", "must not be negative")
	case c.Humidity < 0 || c.Humidity > 100:
		return thermo.ConfigErrorf("room.humidity", "%g outside [0, 100]", c.Humidity)
	case c.OutdoorHumidity < 0 || c.OutdoorHumidity > 100:
		return thermo.ConfigErrorf("room.outdoor_humidity", "%g outside [0, 100]", c.OutdoorHumidity)
	case c.Envelope < 0, c.LeakRate < 0, c.AirExchangeRate < 0:
		return thermo.ConfigErrorf("room", "envelope, leak and exchange rates must not be negative")
	case c.MinPressure <= 0 || c.MinPressure >= c.MaxPressure:
		return thermo.ConfigErrorf("room.min_pressure", "need 0 < min_pressure < max_pressure")
	case c.MinTemperature >= c.MaxTemperature:
		return thermo.ConfigErrorf("room.min_temperature", "need min_temperature < max_temperature")
	case c.Temperature < c.MinTemperature || c.Temperature > c.MaxTemperature:
		return thermo.ConfigErrorf("room.temperature", "%g outside [%g, %g]", c.Temperature, c.MinTemperature, c.MaxTemperature)
	case c.ReferenceStep <= 0:
		return thermo.ConfigErrorf("room.reference_step", "must be positive")
	case c.HistorySize < 1:
		return thermo.ConfigErrorf("room.history_size", "must be at least 1")
	case c.AC.Capacity < 0:
		return thermo.ConfigErrorf("room.ac.capacity", "must not be negative")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		switch {
		case s.Name == "" || s.Name == PotSource:
			return thermo.ConfigErrorf("room.sources", "source %d needs a name other than %q", i, PotSource)
		case seen[s.Name]:
			return thermo.ConfigErrorf("room.sources", "duplicate source %q", s.Name)
		case !finite(s.Heat, s.Vapor, s.CO2) || s.Vapor < 0 || s.CO2 < 0:
			return thermo.ConfigErrorf("room.sources", "source %q has invalid rates", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
