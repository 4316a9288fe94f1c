package analysis

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
	"gonum.org/v1/gonum/stat"
)

// referenceRefinement is how much finer than the smallest requested step
// the reference solution is computed.
const referenceRefinement = 64

type ConvergencePoint struct {
	Step     float64 `json:"step"`
	SubSteps int     `json:"sub_steps"`
	Final    float64 `json:"final"`
	Error    float64 `json:"error"`
}

// Study is the result of Convergence, ordered from coarsest to finest step.
type Study struct {
	Delta     float64            `json:"delta"`
	Reference float64            `json:"reference"`
	Points    []ConvergencePoint `json:"points"`
}

// Convergence advances body over d seconds once per reference step and
// compares each final temperature against a much finer run.
func Convergence(ctx context.Context, f *thermo.Fluid, body sim.Body, in sim.Inputs, d float64, steps []float64) (*Study, error) {
	steps = append([]float64(nil), steps...)
	sort.Sort(sort.Reverse(sort.Float64Slice(steps)))

	finest := d
	if len(steps) > 0 && steps[len(steps)-1] > 0 {
		finest = math.Min(finest, steps[len(steps)-1])
	}

	trials := make([]sim.Trial, 0, len(steps)+1)
	trials = append(trials, sim.Trial{Body: body, Inputs: in, Delta: d, ReferenceStep: finest / referenceRefinement})
	for _, step := range steps {
		trials = append(trials, sim.Trial{Body: body, Inputs: in, Delta: d, ReferenceStep: step})
	}
	out, err := sim.NewEnsemble(f, 0).Run(ctx, trials)
	if err != nil {
		return nil, err
	}

	ref := out[0].Body.Temperature
	study := &Study{Delta: d, Reference: ref}
	for i, step := range steps {
		t := out[i+1].Body.Temperature
		study.Points = append(study.Points, ConvergencePoint{
			Step:     step,
			SubSteps: out[i+1].SubSteps,
			Final:    t,
			Error:    math.Abs(t - ref),
		})
	}
	return study, nil
}

// Monotonic reports whether the error never grows as the step shrinks.
func (s *Study) Monotonic() bool {
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Error > s.Points[i-1].Error+1e-9 {
			return false
		}
	}
	return true
}

// Order estimates p in error ≈ C·step^p by a log-log least squares fit over
// the points with non-zero error. It returns NaN with fewer than two.
func (s *Study) Order() float64 {
	var xs, ys []float64
	for _, p := range s.Points {
		if p.Error > 0 && p.Step > 0 {
			xs = append(xs, math.Log(p.Step))
			ys = append(ys, math.Log(p.Error))
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
