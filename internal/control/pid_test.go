package control

import (
	"math"
	"testing"
)

func TestPIDSign(t *testing.T) {
	tests := []struct {
		name     string
		measured float64
		positive bool
	}{
		{"too warm cools", 25, true},
		{"too cold heats", 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewPID(100, 1, 0, 20, 0)
			u := ctrl.Compute(tt.measured, 1)
			if (u > 0) != tt.positive {
				t.Errorf("Compute(%v) = %f", tt.measured, u)
			}
		})
	}
}

func TestPIDClampsToLimit(t *testing.T) {
	ctrl := NewPID(1e6, 0, 0, 20, 2500)
	for _, m := range []float64{100, -100} {
		if u := ctrl.Compute(m, 1); math.Abs(u) > 2500 {
			t.Errorf("output %f exceeds limit", u)
		}
	}
}

func TestPIDAntiWindup(t *testing.T) {
	ctrl := NewPID(1000, 10, 0, 20, 500)
	for i := 0; i < 1000; i++ {
		ctrl.Compute(40, 1)
	}
	if got := ctrl.State().Integral; got > 1 {
		t.Errorf("integral wound up to %f while saturated", got)
	}
}

func TestPIDSetTargetResets(t *testing.T) {
	ctrl := NewPID(1, 1, 0, 20, 0)
	ctrl.Compute(25, 1)
	ctrl.Compute(25, 1)
	if ctrl.State().Integral == 0 {
		t.Fatal("expected integral to accumulate")
	}
	ctrl.SetParam("Target", 22)
	if s := ctrl.State(); s.Integral != 0 || s.Target != 22 {
		t.Errorf("unexpected state after retarget: %+v", s)
	}
	if got := ctrl.GetParams()["Target"]; got != 22 {
		t.Errorf("GetParams Target = %f", got)
	}
}
