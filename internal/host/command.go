package host

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/boilsim/internal/room"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

type Kind uint8

const (
	SetHeaterPower Kind = iota
	SetSpeedMultiplier
	Pause
	Resume
	SetActuatorSetpoint
	ResetExperiment
)

var kindNames = [...]string{
	"set_heater_power",
	"set_speed_multiplier",
	"pause",
	"resume",
	"set_actuator_setpoint",
	"reset_experiment",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, name := range kindNames {
		if name == s {
			*k = Kind(i)
			return nil
		}
	}
	return &thermo.CommandError{Command: s, Reason: "unknown command"}
}

// Command is a request from a presentation collaborator. Value carries the
// argument of the setters; Body the initial state of a reset.
type Command struct {
	Kind  Kind      `json:"type"`
	Value float64   `json:"value,omitempty"`
	Body  *sim.Body `json:"body,omitempty"`
}

func HeaterPower(watts float64) Command { return Command{Kind: SetHeaterPower, Value: watts} }
func Speed(factor float64) Command      { return Command{Kind: SetSpeedMultiplier, Value: factor} }
func PauseCommand() Command             { return Command{Kind: Pause} }
func ResumeCommand() Command            { return Command{Kind: Resume} }
func Setpoint(target float64) Command   { return Command{Kind: SetActuatorSetpoint, Value: target} }
func Reset(initial sim.Body) Command    { return Command{Kind: ResetExperiment, Body: &initial} }

type envelope struct {
	cmd   Command
	reply chan error
}

func reject(cmd Command, format string, args ...any) error {
	return &thermo.CommandError{Command: cmd.Kind.String(), Reason: fmt.Sprintf(format, args...)}
}

// checkReset validates a reset's initial state without touching the host.
func checkReset(cmd Command) error {
	if cmd.Body == nil {
		return reject(cmd, "missing initial state")
	}
	if err := cmd.Body.Validate(); err != nil {
		return reject(cmd, "%v", err)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// apply validates cmd and mutates host state only when it is accepted.
func (h *Host) apply(cmd Command) error {
	switch cmd.Kind {
	case SetHeaterPower:
		if !finite(cmd.Value) || cmd.Value < 0 || cmd.Value > h.cfg.MaxHeaterPower {
			return reject(cmd, "%g W outside [0, %g]", cmd.Value, h.cfg.MaxHeaterPower)
		}
		h.heater = cmd.Value

	case SetSpeedMultiplier:
		if !finite(cmd.Value) || cmd.Value < MinSpeed || cmd.Value > MaxSpeed {
			return reject(cmd, "%gx outside [%d, %d]", cmd.Value, MinSpeed, MaxSpeed)
		}
		h.speed = cmd.Value

	case Pause:
		h.paused = true

	case Resume:
		h.paused = false

	case SetActuatorSetpoint:
		if !h.room.HasAC() {
			return reject(cmd, "room has no AC unit")
		}
		if !finite(cmd.Value) || cmd.Value < h.cfg.MinSetpoint || cmd.Value > h.cfg.MaxSetpoint {
			return reject(cmd, "%g °C outside [%g, %g]", cmd.Value, h.cfg.MinSetpoint, h.cfg.MaxSetpoint)
		}
		h.room.SetSetpoint(cmd.Value)

	case ResetExperiment:
		h.drainPreempt()
		if err := checkReset(cmd); err != nil {
			return err
		}
		b := *cmd.Body
		b.Phase = sim.PhaseIdle
		r, err := room.New(h.setup.Room, b.Altitude, h.setup.Water, h.logger)
		if err != nil {
			return reject(cmd, "%v", err)
		}
		r.SetInterrupt(h.preempt)
		h.body, h.room = b, r
		h.time, h.subSteps = 0, 0
		h.lastBP, h.outside = h.fluid.SeaLevelBoilingPoint(), false
		h.boilingPoint()
		h.logger.Info("experiment reset", "mass", b.Liquid, "temperature", b.Temperature, "altitude", b.Altitude)

	default:
		return reject(cmd, "unknown command")
	}
	return nil
}
