package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
	"github.com/san-kum/boilsim/internal/thermo"
)

func syrup() *thermo.Fluid {
	return thermo.MustFluid(thermo.FluidSpec{
		Name:               "syrup",
		SpecificHeat:       4.186,
		HeatOfVaporization: 2257,
		Antoine: thermo.Antoine{
			A: 8.07131, B: 1730.63, C: 233.426,
			MinTemp: 1, MaxTemp: 100, Unit: thermo.MMHg,
		},
		SeaLevelBoilingPoint:  100,
		CoolingCoefficient:    0.0012,
		NonVolatileFraction:   0.3,
		BoilingPointElevation: 30,
	})
}

func TestConvergenceIsMonotonic(t *testing.T) {
	in := sim.Inputs{HeaterPower: 2000, AmbientTemperature: 20, BoilingPoint: 100}
	study, err := Convergence(context.Background(), syrup(), sim.NewBody(1, 20, 0), in, 600,
		[]float64{9.375, 600, 150, 37.5, 75, 18.75})
	if err != nil {
		t.Fatal(err)
	}
	if len(study.Points) != 6 || study.Points[0].Step != 600 {
		t.Fatalf("points not ordered coarse to fine: %+v", study.Points)
	}
	if !study.Monotonic() {
		t.Errorf("error grew as step shrank: %+v", study.Points)
	}
	if last := study.Points[len(study.Points)-1]; last.Error >= study.Points[0].Error {
		t.Errorf("finest error %f not below coarsest %f", last.Error, study.Points[0].Error)
	}
	if order := study.Order(); order < 0.3 {
		t.Errorf("order = %f, want a positive convergence order", order)
	}
}

func TestSummarize(t *testing.T) {
	trace := []host.Snapshot{
		{Time: 1, Temperature: 50, Phase: sim.PhaseHeating, RoomTemperature: 20, ACOutput: 100, BoilingPoint: 100},
		{Time: 2, Temperature: 100, Phase: sim.PhaseBoiling, RoomTemperature: 22, ACOutput: 100, BoilingPoint: 100},
		{Time: 3, Temperature: 100, Phase: sim.PhaseDry, RoomTemperature: 24, ACOutput: 100, BoilingPoint: 100,
			VaporizedMass: 0.9, ResidueMass: 0.1, Alerts: []string{"condensation"}},
	}
	s := Summarize(trace)
	if s.BoilTime != 2 || s.DryTime != 3 {
		t.Errorf("boil %f dry %f", s.BoilTime, s.DryTime)
	}
	if s.PeakTemperature != 100 || s.RoomMean != 22 || s.Alerts != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.ACEnergy-200) > 1e-9 {
		t.Errorf("AC energy = %f, want 200", s.ACEnergy)
	}
	if got := Summarize(nil); got.BoilTime != -1 {
		t.Errorf("empty trace summary %+v", got)
	}
}

func TestAltitudeSweepDecreasing(t *testing.T) {
	points := AltitudeSweep(syrup(), 0, 9000, 10)
	if len(points) != 10 {
		t.Fatalf("got %d points", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Valid || points[i].BoilingPoint >= points[i-1].BoilingPoint {
			t.Errorf("point %d: %+v after %+v", i, points[i], points[i-1])
		}
	}
	if plot := SweepToASCII(points, 40, 10); strings.Count(plot, "\n") != 10 {
		t.Errorf("plot has wrong height:\n%s", plot)
	}
}

func TestAltitudeSweepFlagsExtrapolation(t *testing.T) {
	points := AltitudeSweep(syrup(), thermo.MinAltitude, 3000, 8)
	if first := points[0]; !first.Valid || !first.Extrapolated || first.BoilingPoint <= 100 {
		t.Errorf("below sea level should extrapolate past 100 °C: %+v", first)
	}
	if last := points[len(points)-1]; last.Extrapolated {
		t.Errorf("3000m is inside the calibrated range: %+v", last)
	}
}

func TestPortraitASCII(t *testing.T) {
	p := NewPortrait([]host.Snapshot{
		{LiquidMass: 1, Temperature: 20},
		{LiquidMass: 1, Temperature: 100},
		{LiquidMass: 0.5, Temperature: 100},
	})
	out := p.ASCII(20, 5)
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points:\n%s", out)
	}
	if (&Portrait{}).ASCII(10, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}
