package experiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/analysis"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

// Experiment is a validated workshop bound to its fluid and engine tuning.
type Experiment struct {
	Workshop *config.Workshop
	Fluid    *thermo.Fluid
	Water    *thermo.Fluid
	Engine   config.Engine

	// Start replaces the workshop's initial pot state when set.
	Start *sim.Body
}

// New resolves the workshop's fluid in catalog. The catalog must also hold
// water, whose saturation curve drives room humidity.
func New(w *config.Workshop, catalog *config.Catalog, engine config.Engine) (*Experiment, error) {
	ws := *w
	engine.Apply(&ws)
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	fluid, err := catalog.Get(ws.Fluid)
	if err != nil {
		return nil, err
	}
	water, err := catalog.Get("water")
	if err != nil {
		return nil, err
	}
	if ws.HeaterPower > engine.Host.MaxHeaterPower {
		return nil, thermo.ConfigErrorf("heater_power", "%g W above engine limit %g", ws.HeaterPower, engine.Host.MaxHeaterPower)
	}
	return &Experiment{Workshop: &ws, Fluid: fluid, Water: water, Engine: engine}, nil
}

func (e *Experiment) Setup() host.Setup {
	initial := e.Workshop.Initial()
	if e.Start != nil {
		initial = *e.Start
	}
	return host.Setup{
		Fluid:       e.Fluid,
		Water:       e.Water,
		Room:        e.Workshop.Room,
		Initial:     initial,
		HeaterPower: e.Workshop.HeaterPower,
	}
}

// Resume starts the pot from s instead of the workshop's initial state.
// The room starts fresh.
func (e *Experiment) Resume(s host.Snapshot) error {
	b := s.Body(e.Workshop.Altitude)
	if err := b.Validate(); err != nil {
		return thermo.ConfigErrorf("resume", "%v", err)
	}
	b.Phase = sim.PhaseIdle
	e.Start = &b
	return nil
}

func (e *Experiment) NewHost(logger *log.Logger) (*host.Host, error) {
	return host.New(e.Setup(), e.Engine.Host, logger)
}

// Result is a finished batch run.
type Result struct {
	Workshop *config.Workshop
	Fluid    string
	Started  time.Time
	Elapsed  time.Duration
	Trace    []host.Snapshot
	Summary  analysis.Summary
}

// Cue is a command applied once simulated time reaches At.
type Cue struct {
	At      float64
	Command host.Command
}

// Run simulates duration seconds (the workshop default when zero) without
// pacing. Every sample-th tick is kept in the trace, plus the last.
func (e *Experiment) Run(ctx context.Context, duration float64, sample int, logger *log.Logger) (*Result, error) {
	return e.RunCues(ctx, duration, sample, nil, logger)
}

// RunCues is Run with commands applied at fixed simulated times. A rejected
// cue is logged and skipped. Cue times and duration are measured on the
// script's own timeline, which a reset does not rewind.
func (e *Experiment) RunCues(ctx context.Context, duration float64, sample int, cues []Cue, logger *log.Logger) (*Result, error) {
	if duration <= 0 {
		duration = e.Workshop.Duration
	}
	if sample < 1 {
		sample = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	h, err := e.NewHost(logger)
	if err != nil {
		return nil, err
	}
	cues = append([]Cue(nil), cues...)
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].At < cues[j].At })

	res := &Result{Workshop: e.Workshop, Fluid: e.Fluid.Name(), Started: time.Now()}
	var (
		ticks int
		last  host.Snapshot
	)
	observe := func(s host.Snapshot) {
		if ticks%sample == 0 {
			res.Trace = append(res.Trace, s)
		}
		ticks++
		last = s
	}

	for _, c := range cues {
		if c.At > duration {
			break
		}
		if err := h.Simulate(ctx, c.At, observe); err != nil {
			return nil, fmt.Errorf("simulate %s: %w", e.Workshop.Name, err)
		}
		if err := h.Apply(c.Command); err != nil {
			logger.Warn("cue skipped", "at", c.At, "command", c.Command.Kind, "err", err)
			continue
		}
		logger.Info("cue applied", "at", c.At, "command", c.Command.Kind, "value", c.Command.Value)
		if c.Command.Kind == host.ResetExperiment {
			// the host clock restarts at zero; shift the rest of the script onto it
			duration -= c.At
			for i := range cues {
				cues[i].At -= c.At
			}
		}
	}
	if err := h.Simulate(ctx, duration, observe); err != nil {
		return nil, fmt.Errorf("simulate %s: %w", e.Workshop.Name, err)
	}

	if n := len(res.Trace); ticks > 0 && (n == 0 || res.Trace[n-1].Time != last.Time) {
		res.Trace = append(res.Trace, last)
	}
	res.Elapsed = time.Since(res.Started)
	res.Summary = analysis.Summarize(res.Trace)
	return res, nil
}
