package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/boilsim/internal/thermo"
)

func TestDefaultWorkshop(t *testing.T) {
	w := DefaultWorkshop()
	if err := w.Validate(); err != nil {
		t.Fatalf("default workshop invalid: %v", err)
	}
	if w.Fluid != "water" || w.Mass != 1 {
		t.Errorf("unexpected defaults: %+v", w)
	}
	b := w.Initial()
	if b.Liquid != w.Mass || b.Temperature != w.Temperature {
		t.Errorf("initial body %+v does not match workshop", b)
	}
}

func TestEveryPresetValid(t *testing.T) {
	catalog := Builtin()
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			w := GetPreset(name)
			if w == nil {
				t.Fatal("preset missing")
			}
			if w.Name != name {
				t.Errorf("preset name %q", w.Name)
			}
			if err := w.Validate(); err != nil {
				t.Errorf("invalid: %v", err)
			}
			if _, err := catalog.Get(w.Fluid); err != nil {
				t.Errorf("fluid: %v", err)
			}
		})
	}
	if GetPreset("moon-base") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetsAreFreshCopies(t *testing.T) {
	GetPreset("denver-kitchen").Altitude = 0
	if GetPreset("denver-kitchen").Altitude != 1609 {
		t.Error("preset mutated through a returned pointer")
	}
}

func TestParseWorkshop(t *testing.T) {
	doc := `
name: attic
fluid: ethanol
mass: 0.4
altitude: 900
room:
  volume: 15
  ac:
    enabled: true
    setpoint: 19
  sources:
    - name: lamp
      heat: 60
`
	w, err := ParseWorkshop([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if w.Name != "attic" || w.Fluid != "ethanol" || w.Altitude != 900 {
		t.Errorf("unexpected workshop %+v", w)
	}
	if w.HeaterPower != DefaultHeaterPower {
		t.Errorf("missing heater_power did not keep default: %f", w.HeaterPower)
	}
	if w.Room.Volume != 15 || !w.Room.AC.Enabled || w.Room.AC.Setpoint != 19 {
		t.Errorf("room not parsed: %+v", w.Room)
	}
	if w.Room.AC.Capacity != 2500 {
		t.Errorf("AC capacity default lost: %f", w.Room.AC.Capacity)
	}
	if len(w.Room.Sources) != 1 || w.Room.Sources[0].Heat != 60 {
		t.Errorf("sources = %+v", w.Room.Sources)
	}
}

func TestParseWorkshopRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "name: [unclosed"},
		{"zero mass", "mass: 0"},
		{"negative heater", "heater_power: -5"},
		{"empty fluid", "fluid: \"\""},
		{"altitude out of range", "altitude: 150000"},
		{"negative volume", "room:\n  volume: -1"},
		{"negative duration", "duration: -10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkshop([]byte(tt.doc))
			if !errors.Is(err, thermo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestSaveLoadWorkshop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	w := GetPreset("sealed-lab")
	if err := Save(path, w); err != nil {
		t.Fatal(err)
	}
	got, err := LoadWorkshop(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Room.Volume != w.Room.Volume || got.Room.AC != w.Room.AC || got.HeaterPower != w.HeaterPower {
		t.Errorf("workshop did not survive save/load: %+v", got)
	}
}

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	want := []string{"acetone", "ethanol", "seawater", "syrup", "water"}
	names := c.Names()
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}

	tests := []struct {
		fluid string
		bp    float64
	}{
		{"water", 100},
		{"ethanol", 78.37},
		{"acetone", 56.05},
	}
	for _, tt := range tests {
		f, err := c.Get(tt.fluid)
		if err != nil {
			t.Fatal(err)
		}
		bp, err := thermo.BoilingPointAt(thermo.StandardPressure, f)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(bp-tt.bp) > 0.5 {
			t.Errorf("%s boils at %.2f at sea level, want %.2f", tt.fluid, bp, tt.bp)
		}
	}

	if _, err := c.Get("mercury"); !errors.Is(err, thermo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for unknown fluid, got %v", err)
	}
}

const customFluids = `
fluids:
  - name: water
    specific_heat: 4.2
    heat_of_vaporization: 2257
    antoine: {a: 8.07131, b: 1730.63, c: 233.426, min_temp: 1, max_temp: 100}
    sea_level_boiling_point: 100
    cooling_coefficient: 0.002
  - name: stock
    specific_heat: 4.0
    heat_of_vaporization: 2257
    antoine: {a: 8.07131, b: 1730.63, c: 233.426, min_temp: 1, max_temp: 100}
    sea_level_boiling_point: 100
    non_volatile_fraction: 0.05
    boiling_point_elevation: 5
    cooling_coefficient: 0.0012
`

func TestCatalogMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluids.yaml")
	if err := os.WriteFile(path, []byte(customFluids), 0644); err != nil {
		t.Fatal(err)
	}
	c := Builtin()
	if err := c.Merge(path); err != nil {
		t.Fatal(err)
	}
	stock, err := c.Get("stock")
	if err != nil {
		t.Fatal(err)
	}
	if stock.NonVolatileFraction() != 0.05 {
		t.Errorf("stock non-volatile fraction = %f", stock.NonVolatileFraction())
	}
	water, _ := c.Get("water")
	if water.CoolingCoefficient() != 0.002 {
		t.Error("document did not override builtin water")
	}
	if _, err := c.Get("acetone"); err != nil {
		t.Error("merge dropped builtin fluids")
	}
}

func TestParseFluidsRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "fluids: []"},
		{"not yaml", "fluids: {"},
		{"invalid fluid", "fluids:\n  - name: ghost\n    specific_heat: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFluids([]byte(tt.doc)); !errors.Is(err, thermo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestParseEngine(t *testing.T) {
	doc := `
[engine]
tick_interval = 100ms
reference_step = 0.5
max_heater_power = 5000

[room]
history_size = 120
`
	e, err := ParseEngine([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if e.Host.TickInterval != 100*time.Millisecond || e.Host.ReferenceStep != 0.5 || e.Host.MaxHeaterPower != 5000 {
		t.Errorf("engine section not applied: %+v", e.Host)
	}
	if e.Host.MaxSetpoint != DefaultEngine().Host.MaxSetpoint {
		t.Error("absent key lost its default")
	}

	w := DefaultWorkshop()
	e.Apply(w)
	if w.Room.HistorySize != 120 {
		t.Errorf("history size = %d, want 120", w.Room.HistorySize)
	}
	if w.Room.ReferenceStep != 1 {
		t.Errorf("unset room reference step changed to %f", w.Room.ReferenceStep)
	}
}

func TestParseEngineRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero reference step", "[engine]\nreference_step = 0\n"},
		{"inverted setpoints", "[engine]\nmin_setpoint = 30\nmax_setpoint = 10\n"},
		{"negative history", "[room]\nhistory_size = -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEngine([]byte(tt.doc)); !errors.Is(err, thermo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
