package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/boilsim/internal/thermo"
	"golang.org/x/sync/errgroup"
)

// Trial is one independent advance of a body.
type Trial struct {
	Body          Body
	Inputs        Inputs
	Delta         float64
	ReferenceStep float64
}

// Outcome is the result of a Trial.
type Outcome struct {
	Body     Body
	SubSteps int
}

// Ensemble runs trials of one fluid concurrently.
type Ensemble struct {
	fluid   *thermo.Fluid
	workers int
}

// NewEnsemble returns an ensemble using at most workers goroutines, or one
// per CPU when workers is not positive.
func NewEnsemble(f *thermo.Fluid, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{fluid: f, workers: workers}
}

// Run returns one outcome per trial, in order. The first error cancels the
// remaining trials.
func (e *Ensemble) Run(ctx context.Context, trials []Trial) ([]Outcome, error) {
	out := make([]Outcome, len(trials))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, tr := range trials {
		g.Go(func() error {
			sched := NewScheduler(tr.ReferenceStep, 1<<30, nil)
			b, n, err := sched.Advance(ctx, tr.Body, tr.Inputs, tr.Delta, e.fluid)
			if err != nil {
				return err
			}
			out[i] = Outcome{Body: b, SubSteps: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
