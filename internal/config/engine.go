package config

import (
	"fmt"

	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/thermo"
	"gopkg.in/ini.v1"
)

// Engine is the tuning read from an INI file.
type Engine struct {
	Host host.Config

	// RoomReferenceStep and HistorySize override the workshop room when
	// positive.
	RoomReferenceStep float64
	HistorySize       int
}

func DefaultEngine() Engine {
	return Engine{Host: host.DefaultConfig()}
}

// LoadEngine reads the [engine] and [room] sections of an INI file. Keys
// that are absent keep their defaults.
func LoadEngine(path string) (Engine, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Engine{}, fmt.Errorf("%w: %v", thermo.ErrConfiguration, err)
	}
	return parseEngine(file)
}

func ParseEngine(data []byte) (Engine, error) {
	file, err := ini.Load(data)
	if err != nil {
		return Engine{}, fmt.Errorf("%w: %v", thermo.ErrConfiguration, err)
	}
	return parseEngine(file)
}

func parseEngine(file *ini.File) (Engine, error) {
	def := DefaultEngine()
	sec := file.Section("engine")
	rs := file.Section("room")

	e := Engine{
		Host: host.Config{
			TickInterval:   sec.Key("tick_interval").MustDuration(def.Host.TickInterval),
			ReferenceStep:  sec.Key("reference_step").MustFloat64(def.Host.ReferenceStep),
			MaxSubSteps:    sec.Key("max_sub_steps").MustInt(def.Host.MaxSubSteps),
			MaxHeaterPower: sec.Key("max_heater_power").MustFloat64(def.Host.MaxHeaterPower),
			MinSetpoint:    sec.Key("min_setpoint").MustFloat64(def.Host.MinSetpoint),
			MaxSetpoint:    sec.Key("max_setpoint").MustFloat64(def.Host.MaxSetpoint),
		},
		RoomReferenceStep: rs.Key("reference_step").MustFloat64(0),
		HistorySize:       rs.Key("history_size").MustInt(0),
	}
	if err := e.Host.Validate(); err != nil {
		return Engine{}, err
	}
	if e.RoomReferenceStep < 0 || e.HistorySize < 0 {
		return Engine{}, thermo.ConfigErrorf("room", "reference_step and history_size must not be negative")
	}
	return e, nil
}

// Apply copies the room overrides onto w.
func (e Engine) Apply(w *Workshop) {
	if e.RoomReferenceStep > 0 {
		w.Room.ReferenceStep = e.RoomReferenceStep
	}
	if e.HistorySize > 0 {
		w.Room.HistorySize = e.HistorySize
	}
}
