package room

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/boilsim/internal/thermo"
)

func water() *thermo.Fluid {
	return thermo.MustFluid(thermo.FluidSpec{
		Name:               "water",
		SpecificHeat:       4.186,
		HeatOfVaporization: 2257,
		Antoine: thermo.Antoine{
			A: 8.07131, B: 1730.63, C: 233.426,
			MinTemp: 1, MaxTemp: 100, Unit: thermo.MMHg,
		},
		SeaLevelBoilingPoint: 100,
		CoolingCoefficient:   0.0012,
	})
}

func quiet() *log.Logger { return log.New(io.Discard) }

func newRoom(t *testing.T, cfg Config) *Room {
	t.Helper()
	r, err := New(cfg, 0, water(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func run(t *testing.T, r *Room, ticks int, d float64) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		if err := r.Tick(context.Background(), d); err != nil {
			t.Fatal(err)
		}
		if err := r.Composition().Validate(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero volume", func(c *Config) { c.Volume = 0 }},
		{"nan temperature", func(c *Config) { c.Temperature = math.NaN() }},
		{"humidity above 100", func(c *Config) { c.Humidity = 120 }},
		{"inverted pressure bounds", func(c *Config) { c.MinPressure = 200e3 }},
		{"no history", func(c *Config) { c.HistorySize = 0 }},
		{"source named pot", func(c *Config) { c.Sources = []SourceSpec{{Name: PotSource}} }},
		{"duplicate source", func(c *Config) {
			c.Sources = []SourceSpec{{Name: "oven"}, {Name: "oven"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, 0, water(), quiet()); !errors.Is(err, thermo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestNewStartsAtOutdoorPressure(t *testing.T) {
	r, err := New(DefaultConfig(), 1609, water(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if want := thermo.PressureAtAltitude(1609, nil); math.Abs(r.Pressure()-want) > 1e-6 || r.OutdoorPressure() != want {
		t.Errorf("pressure = %f, outdoor %f, want %f", r.Pressure(), r.OutdoorPressure(), want)
	}
	if h := r.Humidity(); math.Abs(h-40) > 1e-6 {
		t.Errorf("humidity = %f, want 40", h)
	}
}

func TestACReachesSetpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutdoorTemperature = 30
	cfg.AC.Enabled = true
	r := newRoom(t, cfg)

	run(t, r, 4*3600, 1)
	if got := r.Temperature(); math.Abs(got-cfg.AC.Setpoint) > 0.1 {
		t.Errorf("temperature = %f, want %f", got, cfg.AC.Setpoint)
	}
	if r.ACOutput() <= 0 {
		t.Errorf("AC should be cooling against a warm envelope, output %f", r.ACOutput())
	}
	if st := r.ACState(); st.Integral <= 0 || st.Target != cfg.AC.Setpoint {
		t.Errorf("steady cooling should be held by the integral term: %+v", st)
	}
}

func TestACOutputBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AC.Enabled = true
	cfg.AC.Capacity = 100
	cfg.Sources = []SourceSpec{{Name: "furnace", Contribution: Contribution{Heat: 5000}}}
	r := newRoom(t, cfg)

	for i := 0; i < 600; i++ {
		run(t, r, 1, 1)
		if math.Abs(r.ACOutput()) > 100 {
			t.Fatalf("AC output %f above capacity", r.ACOutput())
		}
	}
	if !r.Alerts().Has(AlertACSaturated) {
		t.Error("expected saturation alert")
	}
}

func TestSmallRoomACConvergesWithoutCycling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Volume = 0.3
	cfg.ThermalMass = 0
	cfg.Temperature = 25
	cfg.AC.Enabled = true
	r := newRoom(t, cfg)
	sp := cfg.AC.Setpoint

	prev := math.Abs(r.Temperature() - sp)
	for i := 0; i < 30; i++ {
		run(t, r, 1, 1)
		got := r.Temperature()
		if got < sp-0.1 {
			t.Fatalf("tick %d: undershot setpoint, temperature %f", i, got)
		}
		dist := math.Abs(got - sp)
		if dist > math.Max(prev, 0.1) {
			t.Fatalf("tick %d: moved away from setpoint, %f after %f", i, dist, prev)
		}
		prev = dist
		if i >= 5 && r.Alerts().Has(AlertACSaturated) {
			t.Fatalf("tick %d: AC still saturated at %f W", i, r.ACOutput())
		}
	}
	if prev > 0.1 {
		t.Errorf("temperature %f did not settle at %f", r.Temperature(), sp)
	}
}

func TestClampRaisesAlerts(t *testing.T) {
	t.Run("temperature", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ThermalMass = 0
		cfg.Sources = []SourceSpec{{Name: "torch", Contribution: Contribution{Heat: 1e6}}}
		r := newRoom(t, cfg)
		run(t, r, 60, 1)
		if r.Temperature() != cfg.MaxTemperature {
			t.Errorf("temperature = %f, want clamped to %f", r.Temperature(), cfg.MaxTemperature)
		}
		if !r.Alerts().Has(AlertTemperatureHigh) || !r.Alerts().Bounds() {
			t.Errorf("alerts = %v", r.Alerts())
		}
	})

	t.Run("pressure", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Volume = 1
		cfg.LeakRate = 0
		cfg.MaxPressure = 110e3
		cfg.Sources = []SourceSpec{{Name: "dry ice", Contribution: Contribution{CO2: 1}}}
		r := newRoom(t, cfg)
		run(t, r, 20, 1)
		if math.Abs(r.Pressure()-cfg.MaxPressure) > 1e-6 {
			t.Errorf("pressure = %f, want clamped to %f", r.Pressure(), cfg.MaxPressure)
		}
		if !r.Alerts().Has(AlertPressureHigh) {
			t.Errorf("alerts = %v", r.Alerts())
		}
	})
}

func TestCondensationCapsHumidity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Volume = 10
	cfg.LeakRate = 0
	r := newRoom(t, cfg)
	r.Contribute(PotSource, Contribution{Vapor: 0.001})

	run(t, r, 600, 1)
	if h := r.Humidity(); h > 100+1e-6 {
		t.Errorf("humidity = %f above saturation", h)
	}
	if r.Condensed() <= 0 || !r.Alerts().Has(AlertCondensation) {
		t.Errorf("expected condensation, got %f kg alerts %v", r.Condensed(), r.Alerts())
	}
}

func TestAirHandlerApproachesReference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Humidity = 80
	cfg.OutdoorHumidity = 0
	cfg.AirExchangeRate = 0.01
	r := newRoom(t, cfg)

	run(t, r, 2000, 1)
	c := r.Composition()
	if c[H2O] > 1e-6 {
		t.Errorf("water fraction %g, want near 0", c[H2O])
	}
	if d := math.Abs(c[O2] - DryAir()[O2]); d > 1e-6 {
		t.Errorf("O2 fraction off by %g", d)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistorySize = 3
	r := newRoom(t, cfg)

	run(t, r, 5, 1)
	h := r.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	for i, want := range []float64{3, 4, 5} {
		if h[i].Time != want {
			t.Errorf("history[%d].Time = %f, want %f", i, h[i].Time, want)
		}
	}
}

func TestSourcesKeepRegistrationOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []SourceSpec{{Name: "cook"}, {Name: "fridge"}}
	r := newRoom(t, cfg)
	r.Contribute("kettle", Contribution{Heat: 10})
	r.Contribute("cook", Contribution{Heat: 80})

	want := []string{PotSource, "cook", "fridge", "kettle"}
	got := r.Sources()
	if len(got) != len(want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sources[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AC.Enabled = true
	r := newRoom(t, cfg)
	c := r.Clone()
	c.Contribute(PotSource, Contribution{Heat: 5000})
	c.SetSetpoint(18)
	run(t, c, 100, 1)

	if r.Time() != 0 || r.Temperature() != cfg.Temperature || r.Setpoint() != cfg.AC.Setpoint {
		t.Errorf("original changed: t=%f T=%f setpoint=%f", r.Time(), r.Temperature(), r.Setpoint())
	}
	if len(r.History()) != 1 {
		t.Errorf("original history grew to %d", len(r.History()))
	}
}

func TestTickInterrupted(t *testing.T) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	r := newRoom(t, DefaultConfig())
	r.SetInterrupt(ch)
	if err := r.Tick(context.Background(), 10); !errors.Is(err, thermo.ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", err)
	}
}

func TestRingPush(t *testing.T) {
	r := NewRing[int](2)
	if _, ok := r.Last(); ok {
		t.Error("empty ring has a last item")
	}
	for i := 1; i <= 3; i++ {
		r.Push(i)
	}
	if items := r.Items(); len(items) != 2 || items[0] != 2 || items[1] != 3 {
		t.Errorf("items = %v", items)
	}
	if v, _ := r.Last(); v != 3 {
		t.Errorf("last = %d", v)
	}
	if r.Len() != 2 || r.Cap() != 2 {
		t.Errorf("len %d cap %d, want 2 and 2", r.Len(), r.Cap())
	}
	r.Clear()
	if r.Len() != 0 || r.Cap() != 2 {
		t.Errorf("after clear: len %d cap %d", r.Len(), r.Cap())
	}
}
