package experiment

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

func TestEveryPresetAssembles(t *testing.T) {
	reg := NewRegistry(config.Builtin(), config.DefaultEngine())
	for _, name := range reg.ListPresets() {
		t.Run(name, func(t *testing.T) {
			exp, err := reg.Get(name)
			if err != nil {
				t.Fatal(err)
			}
			if exp.Setup().Fluid == nil || exp.Setup().Water.Name() != "water" {
				t.Errorf("setup not resolved: %+v", exp.Setup())
			}
		})
	}
	if _, err := reg.Get("moon-base"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestNewRejectsUnknownFluid(t *testing.T) {
	w := config.DefaultWorkshop()
	w.Fluid = "mercury"
	_, err := New(w, config.Builtin(), config.DefaultEngine())
	if !errors.Is(err, thermo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestEngineOverridesRoom(t *testing.T) {
	engine := config.DefaultEngine()
	engine.HistorySize = 7
	w := config.DefaultWorkshop()
	exp, err := New(w, config.Builtin(), engine)
	if err != nil {
		t.Fatal(err)
	}
	if exp.Workshop.Room.HistorySize != 7 {
		t.Errorf("history size = %d, want 7", exp.Workshop.Room.HistorySize)
	}
	if w.Room.HistorySize == 7 {
		t.Error("caller's workshop was modified")
	}
}

func TestRunProducesTrace(t *testing.T) {
	reg := NewRegistry(config.Builtin(), config.DefaultEngine())
	exp, err := reg.Get("sea-level-kitchen")
	if err != nil {
		t.Fatal(err)
	}

	res, err := exp.Run(context.Background(), 300, 20, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trace) == 0 || res.Trace[len(res.Trace)-1].Time != 300 {
		t.Fatalf("trace does not end at 300s: %d samples", len(res.Trace))
	}
	if res.Summary.BoilTime < 0 {
		t.Error("kitchen preset never boiled")
	}
	if res.Trace[len(res.Trace)-1].Phase != sim.PhaseBoiling {
		t.Errorf("final phase %v", res.Trace[len(res.Trace)-1].Phase)
	}
}

func TestResumeStartsFromSnapshot(t *testing.T) {
	reg := NewRegistry(config.Builtin(), config.DefaultEngine())
	first, err := reg.Get("sea-level-kitchen")
	if err != nil {
		t.Fatal(err)
	}
	res, err := first.Run(context.Background(), 250, 50, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	last := res.Trace[len(res.Trace)-1]

	second, err := reg.Get("sea-level-kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Resume(last); err != nil {
		t.Fatal(err)
	}
	start := second.Setup().Initial
	if start.Liquid != last.LiquidMass || start.Temperature != last.Temperature || start.Vaporized != last.VaporizedMass {
		t.Errorf("resumed body %+v does not match snapshot", start)
	}
	if start.Phase != sim.PhaseIdle {
		t.Errorf("resumed phase %v", start.Phase)
	}

	dry := last
	dry.LiquidMass = 0
	if err := second.Resume(dry); !errors.Is(err, thermo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for an empty pot, got %v", err)
	}
}

func TestRegistryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.yaml")
	doc := "name: bench\nfluid: acetone\nmass: 0.2\nheater_power: 300\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	exp, err := NewRegistry(config.Builtin(), config.DefaultEngine()).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if exp.Fluid.Name() != "acetone" || exp.Workshop.Mass != 0.2 {
		t.Errorf("unexpected experiment %+v", exp.Workshop)
	}
}

func TestRegistryWorkshop(t *testing.T) {
	reg := NewRegistry(config.Builtin(), config.DefaultEngine())
	w, err := reg.Workshop("denver-kitchen")
	if err != nil {
		t.Fatal(err)
	}
	w.Altitude = 0
	again, _ := reg.Workshop("denver-kitchen")
	if again.Altitude != 1609 {
		t.Errorf("preset was modified through the returned copy: %f", again.Altitude)
	}
	if _, err := reg.Workshop("atlantis"); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := reg.Build(w); err != nil {
		t.Errorf("build: %v", err)
	}
}
