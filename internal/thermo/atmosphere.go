package thermo

import "math"

// Altitude limits of the atmosphere model. Inputs outside are clamped.
const (
	MinAltitude = -500.0
	MaxAltitude = 100000.0
)

const (
	tropopause      = 11000.0
	lapseFactor     = 2.25577e-5
	lapseExponent   = 5.25588
	stratosphereT   = 216.65
	gasConstant     = 8.314462618
	gravity         = 9.80665
	molarMassDryAir = 0.0289644
)

var (
	tropopausePressure = StandardPressure * math.Pow(1-lapseFactor*tropopause, lapseExponent)
	scaleHeight        = gasConstant * stratosphereT / (gravity * molarMassDryAir)
)

// ClampAltitude limits altitude to [MinAltitude, MaxAltitude].
func ClampAltitude(altitude float64) float64 {
	if math.IsNaN(altitude) {
		return 0
	}
	return math.Max(MinAltitude, math.Min(MaxAltitude, altitude))
}

// PressureAtAltitude returns ambient pressure in pascals. A non-nil override
// (the room's current pressure) wins over the standard atmosphere.
//
// Below the tropopause the barometric troposphere formula applies; above it
// the pressure decays exponentially through an isothermal layer, which keeps
// the curve continuous and strictly decreasing up to MaxAltitude.
func PressureAtAltitude(altitude float64, override *float64) float64 {
	if override != nil {
		return *override
	}
	h := ClampAltitude(altitude)
	if h <= tropopause {
		return StandardPressure * math.Pow(1-lapseFactor*h, lapseExponent)
	}
	return tropopausePressure * math.Exp(-(h-tropopause)/scaleHeight)
}

// BoilingPointAt inverts the fluid's Antoine equation at pressure (Pa).
func BoilingPointAt(pressure float64, f *Fluid) (float64, error) {
	if math.IsNaN(pressure) || math.IsInf(pressure, 0) {
		return 0, &PressureError{Pressure: pressure, Reason: "not finite"}
	}
	if pressure <= 0 {
		return 0, &PressureError{Pressure: pressure, Reason: "must be positive"}
	}
	a := f.antoine
	denom := a.A - math.Log10(pressure/f.unitPa)
	if denom <= 0 {
		return 0, &PressureError{Pressure: pressure, Reason: "beyond the Antoine asymptote"}
	}
	t := a.B/denom - a.C
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, &PressureError{Pressure: pressure, Reason: "boiling point not finite"}
	}
	return t, nil
}

// VaporPressureAt evaluates the Antoine equation forward, returning the
// saturation pressure (Pa) of f at temp.
func VaporPressureAt(temp float64, f *Fluid) float64 {
	a := f.antoine
	d := a.C + temp
	if d <= 0 {
		return 0
	}
	return f.unitPa * math.Pow(10, a.A-a.B/d)
}
