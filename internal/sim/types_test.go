package sim

import (
	"encoding/json"
	"math"
	"testing"
)

func TestBodyValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    Body
		wantErr bool
	}{
		{"fresh pot", NewBody(1, 20, 0), false},
		{"partly boiled", Body{Liquid: 0.5, Residue: 0.1, Vaporized: 0.4, Temperature: 100}, false},
		{"empty", NewBody(0, 20, 0), true},
		{"negative residue", Body{Liquid: 1, Residue: -0.1, Temperature: 20}, true},
		{"too hot", NewBody(1, 900, 0), true},
		{"too cold", NewBody(1, -80, 0), true},
		{"in orbit", NewBody(1, 20, 1e6), true},
		{"nan", NewBody(math.NaN(), 20, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.body.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConcentration(t *testing.T) {
	b := Body{Liquid: 0.6, Residue: 0.2, Vaporized: 0.2}
	if got := b.Concentration(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Concentration() = %f, want 0.25", got)
	}
	if got := (Body{}).Concentration(); got != 0 {
		t.Errorf("empty Concentration() = %f, want 0", got)
	}
}

func TestPhaseJSON(t *testing.T) {
	data, err := json.Marshal(Body{Phase: PhaseBoiling})
	if err != nil {
		t.Fatal(err)
	}
	var b Body
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatal(err)
	}
	if b.Phase != PhaseBoiling {
		t.Errorf("phase = %v, want boiling", b.Phase)
	}

	var p Phase
	if err := p.UnmarshalText([]byte("melting")); err == nil {
		t.Error("expected error for unknown phase")
	}
}
