package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/getsentry/sentry-go"
	"github.com/san-kum/boilsim/internal/room"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

var (
	// ErrStopped is returned by Send once Run has exited.
	ErrStopped = errors.New("boilsim: host stopped")

	// ErrRunning is returned by Simulate while Run owns the host.
	ErrRunning = errors.New("boilsim: host already running")
)

// Setup is the immutable description of one experiment.
type Setup struct {
	Fluid       *thermo.Fluid
	Water       *thermo.Fluid // saturation curve of the room air
	Room        room.Config
	Initial     sim.Body
	HeaterPower float64
}

// Host owns one pot and its room. All mutable state is confined to the
// goroutine running Run or Simulate; other goroutines talk to it through
// Send and Snapshots.
type Host struct {
	cfg    Config
	setup  Setup
	fluid  *thermo.Fluid
	sched  *sim.Scheduler
	logger *log.Logger

	commands  chan envelope
	snapshots chan Snapshot
	preempt   chan struct{}
	done      chan struct{}
	running   atomic.Bool

	body     sim.Body
	room     *room.Room
	heater   float64
	speed    float64
	paused   bool
	time     float64
	subSteps int
	lastBP   float64
	outside  bool // boiling point beyond the Antoine range
}

func New(setup Setup, cfg Config, logger *log.Logger) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if setup.Fluid == nil {
		return nil, thermo.ConfigErrorf("experiment.fluid", "required")
	}
	if setup.Water == nil {
		setup.Water = setup.Fluid
	}
	if err := setup.Initial.Validate(); err != nil {
		return nil, thermo.ConfigErrorf("experiment.initial", "%v", err)
	}
	if !finite(setup.HeaterPower) || setup.HeaterPower < 0 || setup.HeaterPower > cfg.MaxHeaterPower {
		return nil, thermo.ConfigErrorf("experiment.heater_power", "%g W outside [0, %g]", setup.HeaterPower, cfg.MaxHeaterPower)
	}
	if logger == nil {
		logger = log.Default()
	}

	r, err := room.New(setup.Room, setup.Initial.Altitude, setup.Water, logger)
	if err != nil {
		return nil, err
	}

	h := &Host{
		cfg:       cfg,
		setup:     setup,
		fluid:     setup.Fluid,
		sched:     sim.NewScheduler(cfg.ReferenceStep, cfg.MaxSubSteps, logger),
		logger:    logger,
		commands:  make(chan envelope, 16),
		snapshots: make(chan Snapshot, 1),
		preempt:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		body:      setup.Initial,
		room:      r,
		heater:    setup.HeaterPower,
		speed:     1,
		lastBP:    setup.Fluid.SeaLevelBoilingPoint(),
	}
	h.sched.Interrupt = h.preempt
	r.SetInterrupt(h.preempt)
	h.boilingPoint()
	return h, nil
}

// Snapshots delivers the newest published state. Unread snapshots are
// replaced, never queued.
func (h *Host) Snapshots() <-chan Snapshot { return h.snapshots }

// Send queues cmd and waits for the host to apply or reject it. A valid
// reset also interrupts the tick in progress; a malformed one is rejected
// here without disturbing it.
func (h *Host) Send(ctx context.Context, cmd Command) error {
	if cmd.Kind == ResetExperiment {
		if err := checkReset(cmd); err != nil {
			return err
		}
		select {
		case h.preempt <- struct{}{}:
		default:
		}
	}

	env := envelope{cmd: cmd, reply: make(chan error, 1)}
	select {
	case h.commands <- env:
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-env.reply:
		return err
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the host in real time until ctx is cancelled. Every tick
// advances TickInterval times the speed multiplier of simulated time.
func (h *Host) Run(ctx context.Context) (err error) {
	if !h.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(fmt.Errorf("host crashed: %v", r))
			hub.Flush(5 * time.Second)
			err = fmt.Errorf("host crashed: %v", r)
		}
	}()

	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()

	h.logger.Info("host started", "fluid", h.fluid.Name(), "tick", h.cfg.TickInterval)
	h.publish()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("host stopped", "time", h.time)
			return ctx.Err()

		case env := <-h.commands:
			h.handle(env)

		case <-ticker.C:
			if h.paused {
				continue
			}
			if err := h.tick(ctx, h.cfg.TickInterval.Seconds()*h.speed); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				h.logger.Debug("tick discarded", "err", err)
				continue
			}
			h.publish()
		}
	}
}

func (h *Host) handle(env envelope) {
	err := h.apply(env.cmd)
	if err != nil {
		h.logger.Warn("command rejected", "err", err)
	}
	h.publish()
	env.reply <- err
}

// Simulate runs duration seconds of simulated time as fast as possible,
// calling observe after every tick. Queued commands are applied between
// ticks. It cannot be used while Run is active.
func (h *Host) Simulate(ctx context.Context, duration float64, observe func(Snapshot)) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer h.running.Store(false)

	for h.time < duration {
		for drained := false; !drained; {
			select {
			case env := <-h.commands:
				h.handle(env)
			default:
				drained = true
			}
		}
		if h.paused {
			return nil
		}

		d := math.Min(h.cfg.TickInterval.Seconds()*h.speed, duration-h.time)
		if err := h.tick(ctx, d); err != nil {
			if errors.Is(err, thermo.ErrInterrupted) {
				continue
			}
			return err
		}
		h.publish()
		if observe != nil {
			observe(h.snapshot())
		}
	}
	return nil
}

// Apply applies cmd between Simulate calls, for callers that drive the
// host in batch mode. It fails with ErrRunning while Run or Simulate owns
// the host.
func (h *Host) Apply(cmd Command) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer h.running.Store(false)
	err := h.apply(cmd)
	if err != nil {
		h.logger.Warn("command rejected", "err", err)
	}
	h.publish()
	return err
}

// Time is the simulated time of the committed state.
func (h *Host) Time() float64 { return h.time }

// tick advances the pot and then the room by d seconds. Both are computed
// on copies and committed together, so an interrupted tick leaves no trace.
func (h *Host) tick(ctx context.Context, d float64) error {
	in := sim.Inputs{
		HeaterPower:        h.heater,
		AmbientTemperature: h.room.Temperature(),
		BoilingPoint:       h.boilingPoint(),
	}
	body, n, err := h.sched.Advance(ctx, h.body, in, d, h.fluid)
	if err != nil {
		return err
	}

	next := h.room.Clone()
	next.Contribute(room.PotSource, room.Contribution{
		Heat:  (body.HeatReleased - h.body.HeatReleased) / d,
		Vapor: (body.Vaporized - h.body.Vaporized) / d,
	})
	if err := next.Tick(ctx, d); err != nil {
		return err
	}

	if body.Phase != h.body.Phase {
		h.logger.Debug("phase change", "from", h.body.Phase, "to", body.Phase, "time", h.time+d)
	}
	h.body, h.room = body, next
	h.time += d
	h.subSteps = n
	return nil
}

// boilingPoint evaluates the committed room pressure. Invalid pressures
// fall back to the last good value. Leaving the fluid's calibrated Antoine
// range is logged once per excursion.
func (h *Host) boilingPoint() float64 {
	p := h.room.Pressure()
	bp, err := thermo.BoilingPointAt(thermo.PressureAtAltitude(h.body.Altitude, &p), h.fluid)
	if err != nil {
		h.logger.Warn("boiling point unavailable", "err", err, "fallback", h.lastBP)
		return h.lastBP
	}
	a := h.fluid.Antoine()
	switch inside := a.InRange(bp); {
	case !inside && !h.outside:
		h.logger.Warn("boiling point extrapolated", "fluid", h.fluid.Name(),
			"boiling_point", bp, "pressure", p, "min", a.MinTemp, "max", a.MaxTemp)
		h.outside = true
	case inside && h.outside:
		h.logger.Info("boiling point back in calibrated range", "fluid", h.fluid.Name(), "boiling_point", bp)
		h.outside = false
	}
	h.lastBP = bp
	return bp
}

func (h *Host) drainPreempt() {
	select {
	case <-h.preempt:
	default:
	}
}

// publish replaces any unread snapshot with the current one. The host is
// the only sender, so the second send cannot block.
func (h *Host) publish() {
	s := h.snapshot()
	select {
	case h.snapshots <- s:
		return
	default:
	}
	select {
	case <-h.snapshots:
	default:
	}
	h.snapshots <- s
}
