package thermo

import (
	"fmt"
	"math"
	"strings"
)

// StandardPressure is sea-level pressure in pascals.
const StandardPressure = 101325.0

// seaLevelTolerance bounds the gap between a fluid's declared sea-level
// boiling point and the one its Antoine coefficients produce.
const seaLevelTolerance = 2.0

// PressureUnit is the pressure unit an Antoine coefficient set was fitted in.
type PressureUnit string

const (
	MMHg     PressureUnit = "mmHg"
	KPa      PressureUnit = "kPa"
	Pascal   PressureUnit = "Pa"
	Bar      PressureUnit = "bar"
	unitNone PressureUnit = ""
)

func (u PressureUnit) pascals() (float64, bool) {
	switch PressureUnit(strings.TrimSpace(string(u))) {
	case MMHg, unitNone:
		return 133.322368, true
	case KPa:
		return 1000, true
	case Pascal:
		return 1, true
	case Bar:
		return 1e5, true
	}
	return 0, false
}

// Antoine holds log10(P) = A - B/(C+T) with its calibrated temperature range.
type Antoine struct {
	A       float64      `yaml:"a" json:"a"`
	B       float64      `yaml:"b" json:"b"`
	C       float64      `yaml:"c" json:"c"`
	MinTemp float64      `yaml:"min_temp" json:"min_temp"`
	MaxTemp float64      `yaml:"max_temp" json:"max_temp"`
	Unit    PressureUnit `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// InRange reports whether temp lies inside the calibrated range.
func (a Antoine) InRange(temp float64) bool {
	return temp >= a.MinTemp && temp <= a.MaxTemp
}

// FluidSpec is the loosely-typed document form of a fluid. It only becomes
// usable through NewFluid.
type FluidSpec struct {
	Name                  string  `yaml:"name" json:"name"`
	SpecificHeat          float64 `yaml:"specific_heat" json:"specific_heat"`
	HeatOfVaporization    float64 `yaml:"heat_of_vaporization" json:"heat_of_vaporization"`
	Antoine               Antoine `yaml:"antoine" json:"antoine"`
	SeaLevelBoilingPoint  float64 `yaml:"sea_level_boiling_point" json:"sea_level_boiling_point"`
	NonVolatileFraction   float64 `yaml:"non_volatile_fraction" json:"non_volatile_fraction"`
	CoolingCoefficient    float64 `yaml:"cooling_coefficient" json:"cooling_coefficient"`
	BoilingPointElevation float64 `yaml:"boiling_point_elevation,omitempty" json:"boiling_point_elevation,omitempty"`
}

// Fluid is an immutable set of thermodynamic constants. A *Fluid is safe to
// share between any number of hosts.
type Fluid struct {
	name         string
	specificHeat float64
	heatOfVap    float64
	antoine      Antoine
	unitPa       float64
	seaLevelBP   float64
	nonVolatile  float64
	cooling      float64
	bpElevation  float64
}

// NewFluid validates spec and returns the immutable fluid.
func NewFluid(spec FluidSpec) (*Fluid, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, ConfigErrorf("name", "required")
	}
	field := func(f string) string { return name + "." + f }

	for _, v := range []struct {
		key string
		val float64
	}{
		{"specific_heat", spec.SpecificHeat},
		{"heat_of_vaporization", spec.HeatOfVaporization},
		{"antoine.a", spec.Antoine.A},
		{"antoine.b", spec.Antoine.B},
		{"antoine.c", spec.Antoine.C},
		{"antoine.min_temp", spec.Antoine.MinTemp},
		{"antoine.max_temp", spec.Antoine.MaxTemp},
		{"sea_level_boiling_point", spec.SeaLevelBoilingPoint},
		{"non_volatile_fraction", spec.NonVolatileFraction},
		{"cooling_coefficient", spec.CoolingCoefficient},
		{"boiling_point_elevation", spec.BoilingPointElevation},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return nil, ConfigErrorf(field(v.key), "must be finite, got %v", v.val)
		}
	}

	if spec.SpecificHeat <= 0 {
		return nil, ConfigErrorf(field("specific_heat"), "must be positive")
	}
	if spec.HeatOfVaporization <= 0 {
		return nil, ConfigErrorf(field("heat_of_vaporization"), "must be positive")
	}
	if spec.Antoine.B <= 0 {
		return nil, ConfigErrorf(field("antoine.b"), "must be positive")
	}
	if spec.CoolingCoefficient <= 0 {
		return nil, ConfigErrorf(field("cooling_coefficient"), "must be positive")
	}
	if spec.NonVolatileFraction < 0 || spec.NonVolatileFraction >= 1 {
		return nil, ConfigErrorf(field("non_volatile_fraction"), "must be in [0, 1), got %v", spec.NonVolatileFraction)
	}
	if spec.BoilingPointElevation < 0 {
		return nil, ConfigErrorf(field("boiling_point_elevation"), "must not be negative")
	}
	if spec.Antoine.MinTemp >= spec.Antoine.MaxTemp {
		return nil, ConfigErrorf(field("antoine"), "empty range [%v, %v]", spec.Antoine.MinTemp, spec.Antoine.MaxTemp)
	}
	if !spec.Antoine.InRange(spec.SeaLevelBoilingPoint) {
		return nil, ConfigErrorf(field("antoine"), "range [%v, %v] does not bracket sea-level boiling point %v",
			spec.Antoine.MinTemp, spec.Antoine.MaxTemp, spec.SeaLevelBoilingPoint)
	}
	unitPa, ok := spec.Antoine.Unit.pascals()
	if !ok {
		return nil, ConfigErrorf(field("antoine.unit"), "unknown pressure unit %q", spec.Antoine.Unit)
	}

	f := &Fluid{
		name:         name,
		specificHeat: spec.SpecificHeat,
		heatOfVap:    spec.HeatOfVaporization,
		antoine:      spec.Antoine,
		unitPa:       unitPa,
		seaLevelBP:   spec.SeaLevelBoilingPoint,
		nonVolatile:  spec.NonVolatileFraction,
		cooling:      spec.CoolingCoefficient,
		bpElevation:  spec.BoilingPointElevation,
	}

	bp, err := BoilingPointAt(StandardPressure, f)
	if err != nil {
		return nil, ConfigErrorf(field("antoine"), "no boiling point at standard pressure: %v", err)
	}
	if math.Abs(bp-f.seaLevelBP) > seaLevelTolerance {
		return nil, ConfigErrorf(field("antoine"), "coefficients give %.2f °C at sea level, declared %.2f °C", bp, f.seaLevelBP)
	}
	return f, nil
}

// MustFluid is NewFluid for compile-time constants; it panics on error.
func MustFluid(spec FluidSpec) *Fluid {
	f, err := NewFluid(spec)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Fluid) Name() string                   { return f.name }
func (f *Fluid) SpecificHeat() float64          { return f.specificHeat }
func (f *Fluid) HeatOfVaporization() float64    { return f.heatOfVap }
func (f *Fluid) Antoine() Antoine               { return f.antoine }
func (f *Fluid) SeaLevelBoilingPoint() float64  { return f.seaLevelBP }
func (f *Fluid) NonVolatileFraction() float64   { return f.nonVolatile }
func (f *Fluid) CoolingCoefficient() float64    { return f.cooling }
func (f *Fluid) BoilingPointElevation() float64 { return f.bpElevation }

// Spec returns the document form of f.
func (f *Fluid) Spec() FluidSpec {
	return FluidSpec{
		Name:                  f.name,
		SpecificHeat:          f.specificHeat,
		HeatOfVaporization:    f.heatOfVap,
		Antoine:               f.antoine,
		SeaLevelBoilingPoint:  f.seaLevelBP,
		NonVolatileFraction:   f.nonVolatile,
		CoolingCoefficient:    f.cooling,
		BoilingPointElevation: f.bpElevation,
	}
}

func (f *Fluid) String() string {
	return fmt.Sprintf("%s (bp %.1f °C, cp %.3f kJ/kg·K, hv %.0f kJ/kg)", f.name, f.seaLevelBP, f.specificHeat, f.heatOfVap)
}
