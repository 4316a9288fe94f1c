package sim

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/thermo"
)

const (
	DefaultReferenceStep = 1.0
	DefaultMaxSubSteps   = 1 << 20

	// pollEvery is how many sub-steps run between cancellation checks.
	pollEvery = 256

	// maxSplit bounds SubSteps before the int conversion.
	maxSplit = math.MaxInt32
)

// SubSteps splits d into n equal steps no longer than s. Non-finite and
// non-positive d yield no steps. Splits beyond maxSplit widen the step.
func SubSteps(d, s float64) (int, float64) {
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, 0
	}
	if s <= 0 || d <= s {
		return 1, d
	}
	n := int(math.Min(math.Ceil(d/s), maxSplit))
	return n, d / float64(n)
}

// Scheduler folds a large time delta into bounded sub-steps.
type Scheduler struct {
	ReferenceStep float64
	MaxSubSteps   int

	// Interrupt, when signalled, abandons the fold in progress.
	Interrupt <-chan struct{}
	Logger    *log.Logger
}

func NewScheduler(referenceStep float64, maxSubSteps int, logger *log.Logger) *Scheduler {
	if referenceStep <= 0 {
		referenceStep = DefaultReferenceStep
	}
	if maxSubSteps <= 0 {
		maxSubSteps = DefaultMaxSubSteps
	}
	return &Scheduler{
		ReferenceStep: referenceStep,
		MaxSubSteps:   maxSubSteps,
		Logger:        logger,
	}
}

// Plan returns the sub-step count and size Fold will use for d.
func (s *Scheduler) Plan(d float64) (int, float64) {
	n, step := SubSteps(d, s.ReferenceStep)
	if s.MaxSubSteps > 0 && n > s.MaxSubSteps {
		if s.Logger != nil {
			s.Logger.Warn("sub-step cap reached, widening step",
				"delta", d, "wanted", n, "cap", s.MaxSubSteps)
		}
		n = s.MaxSubSteps
		step = d / float64(n)
	}
	return n, step
}

// Fold calls fn once per sub-step of d. An infinite d is rejected with a
// thermo.BoundsError. It stops early with ctx.Err() or
// thermo.ErrInterrupted; callers must treat their partial work as discarded.
func (s *Scheduler) Fold(ctx context.Context, d float64, fn func(h float64)) (int, error) {
	if math.IsInf(d, 0) {
		return 0, &thermo.BoundsError{Quantity: "delta", Value: d, Limit: math.MaxFloat64}
	}
	n, step := s.Plan(d)
	for i := 0; i < n; i++ {
		if i%pollEvery == 0 {
			if err := s.poll(ctx); err != nil {
				return i, err
			}
		}
		fn(step)
	}
	return n, nil
}

func (s *Scheduler) poll(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if s.Interrupt == nil {
		return nil
	}
	select {
	case <-s.Interrupt:
		return thermo.ErrInterrupted
	default:
		return nil
	}
}

// Advance runs Step over d seconds of simulated time, feeding each output
// into the next call. On error the returned body is b unchanged.
func (s *Scheduler) Advance(ctx context.Context, b Body, in Inputs, d float64, f *thermo.Fluid) (Body, int, error) {
	x := b
	n, err := s.Fold(ctx, d, func(h float64) {
		x = Step(x, in, h, f)
	})
	if err != nil {
		return b, n, err
	}
	return x, n, nil
}
