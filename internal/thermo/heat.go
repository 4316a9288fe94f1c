package thermo

import "math"

// HeatResult is the outcome of feeding energy into a liquid body.
type HeatResult struct {
	Liquid      float64 // remaining liquid, kg
	Temperature float64 // °C
	Vaporized   float64 // vapor produced, kg
	Deposited   float64 // non-volatile residue left behind, kg
}

// HeatCapacity returns m·c in J/K.
func HeatCapacity(mass float64, f *Fluid) float64 {
	return mass * f.specificHeat * 1000
}

// ApplyHeatEnergy adds energy (J) to mass kg of liquid at temp. The
// temperature is capped at boilingPoint and the surplus vaporizes at
// excess/(hv·1000) kg. Every kilogram of vapor leaves f/(1-f) kg of residue,
// where f is the fluid's non-volatile fraction. A dry body is left as is.
func ApplyHeatEnergy(mass, temp, energy, boilingPoint float64, f *Fluid) HeatResult {
	res := HeatResult{Liquid: mass, Temperature: temp}
	if mass <= 0 {
		res.Liquid = 0
		return res
	}

	capacity := HeatCapacity(mass, f)
	need := capacity * (boilingPoint - temp)
	if energy <= need {
		res.Temperature = temp + energy/capacity
		return res
	}

	// need is negative for a body already above boilingPoint, so its
	// sensible surplus flashes along with the input energy.
	excess := energy - need
	res.Temperature = boilingPoint

	nv := f.nonVolatile
	vapor := excess / (f.heatOfVap * 1000)
	if maxVapor := mass * (1 - nv); vapor >= maxVapor {
		res.Vaporized = maxVapor
		res.Deposited = mass - maxVapor
		res.Liquid = 0
		return res
	}

	consumed := vapor / (1 - nv)
	res.Vaporized = vapor
	res.Deposited = consumed - vapor
	res.Liquid = math.Max(0, mass-consumed)
	return res
}

// ApplyCooling relaxes temp toward ambient by Newton's law over dt seconds.
// The exponential form is exact for constant ambient, so it never overshoots
// regardless of dt.
func ApplyCooling(temp, ambient, k, dt float64) float64 {
	if dt <= 0 || k <= 0 {
		return temp
	}
	return ambient + (temp-ambient)*math.Exp(-k*dt)
}

// Condense returns the vapor mole fraction that must leave the gas phase to
// bring vaporFraction down to saturationFraction.
func Condense(vaporFraction, saturationFraction float64) float64 {
	return math.Max(0, vaporFraction-math.Max(0, saturationFraction))
}
