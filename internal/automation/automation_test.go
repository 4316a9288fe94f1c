package automation

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/experiment"
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

const pasta = `
name: pasta
workshop: denver-kitchen
overrides:
  heater_power: 2500
duration: 600
steps:
  - at: 300
    type: set_heater_power
    value: 0
  - at: 100
    type: set_speed_multiplier
    value: 20
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(pasta))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Steps) != 2 || sc.Steps[0].Type != host.SetHeaterPower {
		t.Errorf("unexpected steps %+v", sc.Steps)
	}
}

func TestParseScenarioRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing name", "workshop: denver-kitchen\n"},
		{"missing workshop", "name: x\n"},
		{"unknown command", "name: x\nworkshop: y\nsteps:\n  - at: 1\n    type: stir\n"},
		{"negative time", "name: x\nworkshop: y\nsteps:\n  - at: -1\n    type: pause\n"},
		{"negative duration", "name: x\nworkshop: y\nduration: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *thermo.CommandError
			if !errors.Is(err, thermo.ErrConfiguration) && !errors.As(err, &ce) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(pasta))
	if err != nil {
		t.Fatal(err)
	}
	reg := experiment.NewRegistry(config.Builtin(), config.DefaultEngine())
	res, err := RunScenario(context.Background(), sc, reg, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.BoilTime < 0 {
		t.Fatal("pot never boiled")
	}

	var before, after *host.Snapshot
	for i := range res.Trace {
		s := &res.Trace[i]
		if s.Time < 300 {
			before = s
		} else if s.Time > 300 && after == nil {
			after = s
		}
	}
	if before == nil || after == nil {
		t.Fatal("trace does not straddle the heater cue")
	}
	if before.HeaterPower != 2500 || after.HeaterPower != 0 {
		t.Errorf("heater %v before and %v after the cue", before.HeaterPower, after.HeaterPower)
	}
	if after.Speed != 20 {
		t.Errorf("speed %v, want 20", after.Speed)
	}
	last := res.Trace[len(res.Trace)-1]
	if last.Time != 600 || last.Phase != sim.PhaseCooling {
		t.Errorf("final snapshot at %v in phase %v", last.Time, last.Phase)
	}
}

func TestRejectedCueIsSkipped(t *testing.T) {
	sc := &Scenario{
		Name:     "bad-ac",
		Workshop: "sea-level-kitchen",
		Duration: 60,
		Steps:    []ScenarioStep{{At: 10, Type: host.SetActuatorSetpoint, Value: 22}},
	}
	reg := experiment.NewRegistry(config.Builtin(), config.DefaultEngine())
	res, err := RunScenario(context.Background(), sc, reg, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if res.Trace[len(res.Trace)-1].Time != 60 {
		t.Error("run did not finish after a rejected cue")
	}
}
