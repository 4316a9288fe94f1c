package room

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/san-kum/boilsim/internal/control"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

const (
	gasConstant    = 8.314462618 // J/(mol·K)
	molarMassWater = 0.018015    // kg/mol
	airMolarCv     = 20.8        // J/(mol·K)
	kelvin         = 273.15

	// PotSource is the registry key of the experiment's pot.
	PotSource = "pot"
)

// Sample is one entry of the room history.
type Sample struct {
	Time        float64 `json:"time"`
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Humidity    float64 `json:"humidity"`
	ACOutput    float64 `json:"ac_output"`
	Alerts      Alert   `json:"alerts"`
}

// Room is the air volume around the experiment. It is owned by a single
// goroutine; Clone gives the copy a tick works on.
type Room struct {
	cfg       Config
	water     *thermo.Fluid
	outdoorP  float64
	reference Composition
	sched     *sim.Scheduler
	logger    *log.Logger

	moles       Composition // mol of each gas
	temperature float64
	pressure    float64
	acOutput    float64
	condensed   float64
	alerts      Alert
	time        float64

	ac      *control.PID
	sources *orderedmap.OrderedMap[string, Contribution]
	history *Ring[Sample]
}

// New builds a room at altitude, initially at the outdoor pressure. water
// supplies the saturation curve for humidity and condensation.
func New(cfg Config, altitude float64, water *thermo.Fluid, logger *log.Logger) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if water == nil {
		return nil, thermo.ConfigErrorf("room.water", "saturation fluid required")
	}
	if logger == nil {
		logger = log.Default()
	}

	r := &Room{
		cfg:         cfg,
		water:       water,
		outdoorP:    thermo.PressureAtAltitude(altitude, nil),
		sched:       sim.NewScheduler(cfg.ReferenceStep, 0, logger),
		logger:      logger,
		temperature: cfg.Temperature,
		sources:     orderedmap.NewOrderedMap[string, Contribution](),
		history:     NewRing[Sample](cfg.HistorySize),
	}
	r.reference = DryAir().Humidify(r.saturationFraction(cfg.OutdoorTemperature, r.outdoorP) * cfg.OutdoorHumidity / 100)

	total := r.outdoorP * cfg.Volume / (gasConstant * (cfg.Temperature + kelvin))
	air := DryAir().Humidify(r.saturationFraction(cfg.Temperature, r.outdoorP) * cfg.Humidity / 100)
	for g := range air {
		r.moles[g] = air[g] * total
	}
	r.pressure = r.outdoorP

	if cfg.AC.Enabled {
		r.ac = control.NewPID(cfg.AC.Kp, cfg.AC.Ki, cfg.AC.Kd, cfg.AC.Setpoint, cfg.AC.Capacity)
	}
	r.sources.Set(PotSource, Contribution{})
	for _, s := range cfg.Sources {
		r.sources.Set(s.Name, s.Contribution)
	}
	r.history.Push(r.Sample())
	return r, nil
}

// SetInterrupt makes Tick abandon its sub-steps when ch is signalled.
func (r *Room) SetInterrupt(ch <-chan struct{}) { r.sched.Interrupt = ch }

// Clone returns an independent copy. The fluid and scheduler are shared.
func (r *Room) Clone() *Room {
	c := *r
	if r.ac != nil {
		ac := *r.ac
		c.ac = &ac
	}
	c.sources = orderedmap.NewOrderedMap[string, Contribution]()
	for _, key := range r.sources.Keys() {
		v, _ := r.sources.Get(key)
		c.sources.Set(key, v)
	}
	c.history = r.history.Clone()
	return &c
}

// Contribute replaces the rate released by a registered source, adding the
// source at the end of the registry if it is new.
func (r *Room) Contribute(name string, c Contribution) {
	r.sources.Set(name, c)
}

// Sources lists registered source names in registration order.
func (r *Room) Sources() []string { return r.sources.Keys() }

// SetSetpoint retargets the AC, resetting its accumulator.
func (r *Room) SetSetpoint(target float64) {
	if r.ac != nil {
		r.ac.SetParam("Target", target)
	}
}

// Tick advances the room by d seconds in sub-steps of the configured
// reference step. On error the room is partially advanced and must be
// discarded.
func (r *Room) Tick(ctx context.Context, d float64) error {
	r.alerts = 0
	if _, err := r.sched.Fold(ctx, d, r.step); err != nil {
		return err
	}
	r.time += d
	r.history.Push(r.Sample())
	return nil
}

func (r *Room) step(h float64) {
	power := 0.0
	for _, key := range r.sources.Keys() {
		c, _ := r.sources.Get(key)
		power += c.Heat
		r.moles[H2O] += c.Vapor * h / molarMassWater
		r.moles[CO2] += c.CO2 * h
	}
	r.conduct(power, h)

	r.exchange(h)
	r.leak(h)
	r.updatePressure()
	r.condense()
	r.clamp()
}

// conduct integrates the air temperature over h under a constant source
// power. The envelope and AC proportional terms are linear in the
// temperature, so h is split into inner steps no longer than
// C/(2·(Envelope+Kp)) to keep each update contracting toward equilibrium.
func (r *Room) conduct(power, h float64) {
	c := r.heatCapacity()
	gain := r.cfg.Envelope
	if r.ac != nil {
		gain += r.ac.Kp
	}
	n, dt := 1, h
	if gain > 0 {
		n, dt = sim.SubSteps(h, c/(2*gain))
	}
	if limit := r.sched.MaxSubSteps; limit > 0 && n > limit {
		n, dt = limit, h/float64(limit)
	}
	for i := 0; i < n; i++ {
		heat := power + r.cfg.Envelope*(r.cfg.OutdoorTemperature-r.temperature)
		if r.ac != nil {
			r.acOutput = r.ac.Compute(r.temperature, dt)
			heat -= r.acOutput
			if r.cfg.AC.Capacity > 0 && math.Abs(r.acOutput) >= r.cfg.AC.Capacity {
				r.alerts |= AlertACSaturated
			}
		}
		r.temperature += heat * dt / c
	}
}

func (r *Room) heatCapacity() float64 {
	return r.totalMoles()*airMolarCv + r.cfg.ThermalMass
}

func (r *Room) totalMoles() float64 { return r.moles.Sum() }

// exchange moves the composition toward reference air, keeping the mole
// count.
func (r *Room) exchange(h float64) {
	if r.cfg.AirExchangeRate <= 0 {
		return
	}
	a := 1 - math.Exp(-r.cfg.AirExchangeRate*h)
	total := r.totalMoles()
	for g := range r.moles {
		r.moles[g] += a * (total*r.reference[g] - r.moles[g])
	}
}

// leak relaxes the mole count toward pressure equilibrium with outdoors.
// Air leaving has the room's composition; air entering is reference air.
func (r *Room) leak(h float64) {
	if r.cfg.LeakRate <= 0 {
		return
	}
	total := r.totalMoles()
	eq := r.outdoorP * r.cfg.Volume / (gasConstant * (r.temperature + kelvin))
	delta := (1 - math.Exp(-r.cfg.LeakRate*h)) * (eq - total)
	for g := range r.moles {
		if delta < 0 {
			r.moles[g] += delta * r.moles[g] / total
		} else {
			r.moles[g] += delta * r.reference[g]
		}
	}
}

func (r *Room) updatePressure() {
	r.pressure = r.totalMoles() * gasConstant * (r.temperature + kelvin) / r.cfg.Volume
}

// condense drops water vapor above saturation out of the air, releasing
// its latent heat into the room.
func (r *Room) condense() {
	xs := r.saturationFraction(r.temperature, r.pressure)
	if xs >= 1 {
		return
	}
	total := r.totalMoles()
	excess := thermo.Condense(r.moles[H2O]/total, xs)
	if excess <= 0 {
		return
	}
	mol := excess * total / (1 - xs)
	kg := mol * molarMassWater
	r.moles[H2O] -= mol
	r.condensed += kg
	r.temperature += kg * r.water.HeatOfVaporization() * 1000 / r.heatCapacity()
	r.alerts |= AlertCondensation
	r.updatePressure()
}

func (r *Room) clamp() {
	switch {
	case r.temperature > r.cfg.MaxTemperature:
		r.raise(AlertTemperatureHigh, "temperature", r.temperature, r.cfg.MaxTemperature)
		r.temperature = r.cfg.MaxTemperature
	case r.temperature < r.cfg.MinTemperature:
		r.raise(AlertTemperatureLow, "temperature", r.temperature, r.cfg.MinTemperature)
		r.temperature = r.cfg.MinTemperature
	}
	r.updatePressure()

	limit := 0.0
	switch {
	case r.pressure > r.cfg.MaxPressure:
		r.raise(AlertPressureHigh, "pressure", r.pressure, r.cfg.MaxPressure)
		limit = r.cfg.MaxPressure
	case r.pressure < r.cfg.MinPressure:
		r.raise(AlertPressureLow, "pressure", r.pressure, r.cfg.MinPressure)
		limit = r.cfg.MinPressure
	default:
		return
	}
	scale := limit / r.pressure
	for g := range r.moles {
		r.moles[g] *= scale
	}
	r.pressure = limit
}

// raise logs a clamp once per tick per flag.
func (r *Room) raise(flag Alert, quantity string, value, limit float64) {
	if !r.alerts.Has(flag) {
		r.logger.Warn("room clamp", "err", &thermo.BoundsError{Quantity: quantity, Value: value, Limit: limit})
	}
	r.alerts |= flag
}

// saturationFraction is the water mole fraction at 100% humidity.
func (r *Room) saturationFraction(temp, pressure float64) float64 {
	if pressure <= 0 {
		return 1
	}
	return thermo.VaporPressureAt(temp, r.water) / pressure
}

func (r *Room) Temperature() float64     { return r.temperature }
func (r *Room) Pressure() float64        { return r.pressure }
func (r *Room) OutdoorPressure() float64 { return r.outdoorP }
func (r *Room) ACOutput() float64        { return r.acOutput }
func (r *Room) Alerts() Alert            { return r.alerts }
func (r *Room) Condensed() float64       { return r.condensed }
func (r *Room) Time() float64            { return r.time }
func (r *Room) Config() Config           { return r.cfg }

// Setpoint returns the AC target, or NaN when the room has no AC.
func (r *Room) Setpoint() float64 {
	if r.ac == nil {
		return math.NaN()
	}
	return r.ac.Target
}

func (r *Room) HasAC() bool { return r.ac != nil }

// ACState exposes the controller accumulator.
func (r *Room) ACState() control.State {
	if r.ac == nil {
		return control.State{}
	}
	return r.ac.State()
}

// Composition returns the current mole fractions.
func (r *Room) Composition() Composition {
	total := r.totalMoles()
	var c Composition
	for g := range r.moles {
		c[g] = r.moles[g] / total
	}
	return c
}

// Humidity is relative humidity in percent.
func (r *Room) Humidity() float64 {
	psat := thermo.VaporPressureAt(r.temperature, r.water)
	if psat <= 0 {
		return 0
	}
	return 100 * r.moles[H2O] / r.totalMoles() * r.pressure / psat
}

func (r *Room) Sample() Sample {
	return Sample{
		Time:        r.time,
		Temperature: r.temperature,
		Pressure:    r.pressure,
		Humidity:    r.Humidity(),
		ACOutput:    r.acOutput,
		Alerts:      r.alerts,
	}
}

// History returns recorded samples oldest first.
func (r *Room) History() []Sample { return r.history.Items() }
