package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/experiment"
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/optim"
	"github.com/san-kum/boilsim/internal/thermo"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted batch run: a workshop plus commands at set times.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Workshop    string             `yaml:"workshop"` // preset name or path
	Overrides   map[string]float64 `yaml:"overrides"`
	Duration    float64            `yaml:"duration"`
	Sample      int                `yaml:"sample"`
	Steps       []ScenarioStep     `yaml:"steps"`
}

// ScenarioStep is one timed command. Reset steps restore the workshop's
// starting pot and take no value.
type ScenarioStep struct {
	At    float64   `yaml:"at"`
	Type  host.Kind `yaml:"type"`
	Value float64   `yaml:"value"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", thermo.ErrConfiguration, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return thermo.ConfigErrorf("scenario.name", "required")
	}
	if sc.Workshop == "" {
		return thermo.ConfigErrorf("scenario.workshop", "required")
	}
	if sc.Duration < 0 {
		return thermo.ConfigErrorf("scenario.duration", "must not be negative, got %g", sc.Duration)
	}
	for i, st := range sc.Steps {
		if st.At < 0 {
			return thermo.ConfigErrorf(fmt.Sprintf("scenario.steps[%d].at", i), "must not be negative, got %g", st.At)
		}
	}
	return nil
}

// Build resolves the scenario's workshop and turns its steps into cues.
func (sc *Scenario) Build(reg *experiment.Registry) (*experiment.Experiment, []experiment.Cue, error) {
	base, err := reg.Workshop(sc.Workshop)
	if err != nil {
		return nil, nil, err
	}
	w, err := optim.Apply(base, sc.Overrides)
	if err != nil {
		return nil, nil, thermo.ConfigErrorf("scenario.overrides", "%v", err)
	}
	exp, err := reg.Build(w)
	if err != nil {
		return nil, nil, err
	}

	cues := make([]experiment.Cue, 0, len(sc.Steps))
	for _, st := range sc.Steps {
		cmd := host.Command{Kind: st.Type, Value: st.Value}
		if st.Type == host.ResetExperiment {
			cmd = host.Reset(exp.Workshop.Initial())
		}
		cues = append(cues, experiment.Cue{At: st.At, Command: cmd})
	}
	return exp, cues, nil
}

// RunScenario executes sc against the registry's presets and fluids.
func RunScenario(ctx context.Context, sc *Scenario, reg *experiment.Registry, logger *log.Logger) (*experiment.Result, error) {
	exp, cues, err := sc.Build(reg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("scenario", sc.Name)
	logger.Info("running scenario", "workshop", exp.Workshop.Name, "steps", len(cues))
	return exp.RunCues(ctx, sc.Duration, sc.Sample, cues, logger)
}
