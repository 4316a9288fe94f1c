package optim

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// Params are the workshop fields a search can vary.
var Params = map[string]func(w *config.Workshop, v float64){
	"heater_power":   func(w *config.Workshop, v float64) { w.HeaterPower = v },
	"altitude":       func(w *config.Workshop, v float64) { w.Altitude = v },
	"mass":           func(w *config.Workshop, v float64) { w.Mass = v },
	"room.volume":    func(w *config.Workshop, v float64) { w.Room.Volume = v },
	"room.envelope":  func(w *config.Workshop, v float64) { w.Room.Envelope = v },
	"ac.setpoint":    func(w *config.Workshop, v float64) { w.Room.AC.Setpoint = v },
	"ac.capacity":    func(w *config.Workshop, v float64) { w.Room.AC.Capacity = v },
	"ac.kp":          func(w *config.Workshop, v float64) { w.Room.AC.Kp = v },
	"ac.ki":          func(w *config.Workshop, v float64) { w.Room.AC.Ki = v },
	"ac.kd":          func(w *config.Workshop, v float64) { w.Room.AC.Kd = v },
	"room.leak_rate": func(w *config.Workshop, v float64) { w.Room.LeakRate = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for k := range Params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of base with params set.
func Apply(base *config.Workshop, params map[string]float64) (*config.Workshop, error) {
	w := *base
	for name, v := range params {
		set, ok := Params[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q (have %s)", name, strings.Join(ParamNames(), ", "))
		}
		set(&w, v)
	}
	return &w, nil
}

// Trial is one evaluated grid point. Err is set when the point could not be
// built or run; Value is NaN then.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: 4}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func (g *GridSearch) points() []map[string]float64 {
	points := []map[string]float64{{}}
	for i, name := range g.paramNames {
		var next []map[string]float64
		for _, p := range points {
			for _, v := range g.ranges[i] {
				q := make(map[string]float64, len(p)+1)
				for k, x := range p {
					q[k] = x
				}
				q[name] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Search runs every grid point of base for duration seconds and returns the
// point minimising metric, plus all trials in grid order. Points whose
// metric is negative, meaning the event never happened, are not eligible.
func (g *GridSearch) Search(ctx context.Context, base *config.Workshop, reg *experiment.Registry, duration float64, metric string, logger *log.Logger) (*Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	if logger == nil {
		logger = log.Default()
	}
	quiet := log.New(io.Discard)

	points := g.points()
	trials := make([]Trial, len(points))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, p := range points {
		eg.Go(func() error {
			trials[i] = Trial{Params: p, Value: math.NaN()}
			w, err := Apply(base, p)
			if err != nil {
				return err
			}
			exp, err := reg.Build(w)
			if err != nil {
				trials[i].Err = err
				return nil
			}
			res, err := exp.Run(ctx, duration, 0, quiet)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				trials[i].Err = err
				return nil
			}
			v, ok := res.Summary.Metrics()[metric]
			if !ok {
				return fmt.Errorf("unknown metric %q", metric)
			}
			trials[i].Value = v
			logger.Debug("grid point", "params", p, metric, v)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Err != nil || math.IsNaN(t.Value) || t.Value < 0 {
			continue
		}
		if best == nil || t.Value < best.Value {
			best = t
		}
	}
	if best == nil {
		return nil, trials, fmt.Errorf("no grid point produced %s", metric)
	}
	return best, trials, nil
}
