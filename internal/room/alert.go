package room

import "strings"

// Alert is a set of non-fatal conditions raised during a tick.
type Alert uint8

const (
	AlertPressureHigh Alert = 1 << iota
	AlertPressureLow
	AlertTemperatureHigh
	AlertTemperatureLow
	AlertCondensation
	AlertACSaturated
)

var alertNames = []struct {
	flag Alert
	name string
}{
	{AlertPressureHigh, "pressure_high"},
	{AlertPressureLow, "pressure_low"},
	{AlertTemperatureHigh, "temperature_high"},
	{AlertTemperatureLow, "temperature_low"},
	{AlertCondensation, "condensation"},
	{AlertACSaturated, "ac_saturated"},
}

func (a Alert) Has(flag Alert) bool { return a&flag != 0 }

// Bounds reports whether a clamp was triggered.
func (a Alert) Bounds() bool {
	return a.Has(AlertPressureHigh | AlertPressureLow | AlertTemperatureHigh | AlertTemperatureLow)
}

// Names lists the raised flags in a stable order.
func (a Alert) Names() []string {
	names := []string{}
	for _, n := range alertNames {
		if a.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (a Alert) String() string {
	if a == 0 {
		return "none"
	}
	return strings.Join(a.Names(), ",")
}
