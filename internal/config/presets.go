package config

import (
	"sort"

	"github.com/san-kum/boilsim/internal/room"
)

// Presets returns the bundled workshops keyed by name. Each call builds
// fresh values.
func Presets() map[string]*Workshop {
	kitchen := func(name, desc string, altitude float64) *Workshop {
		w := DefaultWorkshop()
		w.Name, w.Description, w.Altitude = name, desc, altitude
		return w
	}

	lab := DefaultWorkshop()
	lab.Name = "sealed-lab"
	lab.Description = "Small sealed lab with an AC unit holding 21°C"
	lab.HeaterPower = 2500
	lab.Duration = 1800
	lab.Room.Volume = 20
	lab.Room.LeakRate = 0
	lab.Room.Envelope = 10
	lab.Room.AC.Enabled = true

	laundry := DefaultWorkshop()
	laundry.Name = "laundry-room"
	laundry.Description = "Humid laundry room with a running dryer"
	laundry.Mass = 2
	laundry.Duration = 1200
	laundry.Room.Volume = 12
	laundry.Room.Humidity = 70
	laundry.Room.Temperature = 24
	laundry.Room.Sources = []room.SourceSpec{
		{Name: "dryer", Contribution: room.Contribution{Heat: 1500, Vapor: 2e-4}},
	}

	syrup := DefaultWorkshop()
	syrup.Name = "sugar-shack"
	syrup.Description = "Reducing syrup at sea level"
	syrup.Fluid = "syrup"
	syrup.HeaterPower = 2000
	syrup.Duration = 900

	ethanol := DefaultWorkshop()
	ethanol.Name = "ethanol-bench"
	ethanol.Description = "Ethanol on a bench heater"
	ethanol.Fluid = "ethanol"
	ethanol.Mass = 0.5
	ethanol.HeaterPower = 500

	return map[string]*Workshop{
		"sea-level-kitchen": kitchen("sea-level-kitchen", "Kitchen at sea level", 0),
		"denver-kitchen":    kitchen("denver-kitchen", "Kitchen in Denver, one mile up", 1609),
		"everest-base-camp": kitchen("everest-base-camp", "Camp stove at Everest base camp", 5364),
		"sealed-lab":        lab,
		"laundry-room":      laundry,
		"sugar-shack":       syrup,
		"ethanol-bench":     ethanol,
	}
}

// GetPreset returns nil when name is unknown.
func GetPreset(name string) *Workshop {
	return Presets()[name]
}

func ListPresets() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
