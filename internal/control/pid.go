package control

import "math"

// PID drives a measured value toward Target. The error is measured-Target,
// so a room warmer than its setpoint gets positive output (cooling).
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	// Limit bounds the output to [-Limit, Limit]. Zero means unbounded.
	Limit float64

	integral float64
	prevErr  float64
	first    bool
}

func NewPID(kp, ki, kd, target, limit float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Limit:  limit,
		first:  true,
	}
}

// Compute returns the actuator output for measured after dt seconds.
// The integral is frozen while the output saturates in the same direction
// as the error.
func (p *PID) Compute(measured, dt float64) float64 {
	err := measured - p.Target

	if p.first || dt <= 0 {
		p.prevErr = err
		p.first = false
		return p.clamp(p.Kp*err + p.Ki*p.integral)
	}

	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	integral := p.integral + err*dt
	u := p.Kp*err + p.Ki*integral + p.Kd*derivative
	out := p.clamp(u)
	if out == u || math.Signbit(u) != math.Signbit(err) {
		p.integral = integral
	}
	return out
}

func (p *PID) clamp(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	return math.Max(-p.Limit, math.Min(p.Limit, u))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// State is the accumulator snapshot carried by the room.
type State struct {
	Integral float64 `json:"integral"`
	PrevErr  float64 `json:"prev_err"`
	Target   float64 `json:"target"`
}

func (p *PID) State() State {
	return State{Integral: p.integral, PrevErr: p.prevErr, Target: p.Target}
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
		"Limit":  p.Limit,
	}
}

// SetParam adjusts a PID parameter. Changing the target resets the
// accumulator.
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		if value != p.Target {
			p.Target = value
			p.Reset()
		}
	case "Limit":
		p.Limit = value
	}
}
