package sim

import (
	"math"

	"github.com/san-kum/boilsim/internal/thermo"
)

// equilibrium is how close to ambient a cooling body must get before it is
// considered settled.
const equilibrium = 1e-3

// EffectiveBoilingPoint raises base by the fluid's elevation coefficient
// times the residue concentration of b.
func EffectiveBoilingPoint(b Body, base float64, f *thermo.Fluid) float64 {
	return base + f.BoilingPointElevation()*b.Concentration()
}

// Step advances b by dt seconds. It is a pure function of its arguments and
// runs exactly one of the heating, cooling or idle branches.
func Step(b Body, in Inputs, dt float64, f *thermo.Fluid) Body {
	if dt <= 0 {
		return b
	}
	next := b
	if b.Liquid <= 0 {
		next.Liquid = 0
		next.Phase = PhaseDry
		return next
	}

	bp := EffectiveBoilingPoint(b, in.BoilingPoint, f)

	switch {
	case in.HeaterPower > 0:
		res := thermo.ApplyHeatEnergy(b.Liquid, b.Temperature, in.HeaterPower*dt, bp, f)
		next.apply(res)
		next.Phase = PhaseHeating
		if res.Vaporized > 0 {
			next.Phase = PhaseBoiling
		}
	case math.Abs(b.Temperature-in.AmbientTemperature) > equilibrium:
		next = relax(b, in.AmbientTemperature, bp, dt, f)
	default:
		next.Temperature = in.AmbientTemperature
		next.Phase = PhaseIdle
	}

	if next.Liquid <= 0 {
		next.Liquid = 0
		next.Phase = PhaseDry
	}
	return next
}

// relax moves b toward ambient by Newton cooling. A body above its boiling
// point, e.g. after the pressure dropped, flashes the surplus first.
func relax(b Body, ambient, bp, dt float64, f *thermo.Fluid) Body {
	next := b
	if next.Temperature > bp {
		next.apply(thermo.ApplyHeatEnergy(next.Liquid, next.Temperature, 0, bp, f))
	}

	before := next.Temperature
	after := thermo.ApplyCooling(before, ambient, f.CoolingCoefficient(), dt)
	if math.Abs(after-ambient) <= equilibrium {
		after = ambient
	}
	next.HeatReleased += thermo.HeatCapacity(next.Liquid, f) * (before - after)
	next.Temperature = after

	if next.Temperature > bp {
		next.apply(thermo.ApplyHeatEnergy(next.Liquid, next.Temperature, 0, bp, f))
	}

	switch {
	case next.Temperature > ambient:
		next.Phase = PhaseCooling
	default:
		next.Phase = PhaseIdle
	}
	return next
}

func (b *Body) apply(res thermo.HeatResult) {
	b.Liquid = res.Liquid
	b.Temperature = res.Temperature
	b.Vaporized += res.Vaporized
	b.Residue += res.Deposited
}
