package thermo

import (
	"errors"
	"fmt"
)

// Domain errors shared by every layer of the simulator.
var (
	// ErrConfiguration indicates a malformed fluid or workshop document.
	ErrConfiguration = errors.New("boilsim: invalid configuration")

	// ErrInvalidPressure indicates a non-physical input to the Antoine inversion.
	ErrInvalidPressure = errors.New("boilsim: invalid pressure")

	// ErrInvalidCommand indicates an out-of-range host command.
	ErrInvalidCommand = errors.New("boilsim: invalid command")

	// ErrBoundsExceeded indicates a room quantity was clamped.
	ErrBoundsExceeded = errors.New("boilsim: bounds exceeded")

	// ErrInterrupted indicates a tick was abandoned before commit.
	ErrInterrupted = errors.New("boilsim: tick interrupted")
)

// ConfigError names the offending field of a rejected document.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// CommandError is returned to the sender of a rejected command.
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidCommand, e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return ErrInvalidCommand
}

// BoundsError records a clamped room quantity.
type BoundsError struct {
	Quantity string
	Value    float64
	Limit    float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: %s=%.4g clamped to %.4g", ErrBoundsExceeded, e.Quantity, e.Value, e.Limit)
}

func (e *BoundsError) Unwrap() error {
	return ErrBoundsExceeded
}

// PressureError carries the rejected pressure.
type PressureError struct {
	Pressure float64
	Reason   string
}

func (e *PressureError) Error() string {
	return fmt.Sprintf("%v: %.6g Pa: %s", ErrInvalidPressure, e.Pressure, e.Reason)
}

func (e *PressureError) Unwrap() error {
	return ErrInvalidPressure
}

// ConfigErrorf builds a *ConfigError with a formatted reason.
func ConfigErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
