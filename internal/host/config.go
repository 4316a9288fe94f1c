package host

import (
	"math"
	"time"

	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

const (
	MinSpeed = 1
	MaxSpeed = 65536
)

// Config tunes the engine. It is usually loaded from an INI file.
type Config struct {
	TickInterval   time.Duration // wall time per tick; simulated time is TickInterval*speed
	ReferenceStep  float64       // s, pot sub-step
	MaxSubSteps    int
	MaxHeaterPower float64 // W
	MinSetpoint    float64 // °C
	MaxSetpoint    float64 // °C
}

func DefaultConfig() Config {
	return Config{
		TickInterval:   50 * time.Millisecond,
		ReferenceStep:  sim.DefaultReferenceStep,
		MaxSubSteps:    sim.DefaultMaxSubSteps,
		MaxHeaterPower: 10000,
		MinSetpoint:    5,
		MaxSetpoint:    40,
	}
}

func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return thermo.ConfigErrorf("engine.tick_interval", "must be positive")
	case c.ReferenceStep <= 0 || math.IsInf(c.ReferenceStep, 0) || math.IsNaN(c.ReferenceStep):
		return thermo.ConfigErrorf("engine.reference_step", "must be positive and finite")
	case c.MaxSubSteps < 1:
		return thermo.ConfigErrorf("engine.max_sub_steps", "must be at least 1")
	case !(c.MaxHeaterPower > 0) || math.IsInf(c.MaxHeaterPower, 0):
		return thermo.ConfigErrorf("engine.max_heater_power", "must be positive and finite")
	case !(c.MinSetpoint < c.MaxSetpoint):
		return thermo.ConfigErrorf("engine.min_setpoint", "need min_setpoint < max_setpoint")
	}
	return nil
}
