package host

import (
	"github.com/san-kum/boilsim/internal/room"
	"github.com/san-kum/boilsim/internal/sim"
)

// Snapshot is the committed state after a tick or command.
type Snapshot struct {
	Time          float64   `json:"time"`
	Temperature   float64   `json:"temperature"`
	LiquidMass    float64   `json:"liquid_mass"`
	ResidueMass   float64   `json:"residue_mass"`
	VaporizedMass float64   `json:"vaporized_mass"`
	Phase         sim.Phase `json:"phase"`
	BoilingPoint  float64   `json:"boiling_point"`

	RoomTemperature float64            `json:"room_temperature"`
	RoomPressure    float64            `json:"room_pressure"`
	RoomHumidity    float64            `json:"room_humidity"`
	Composition     map[string]float64 `json:"composition"`
	Condensed       float64            `json:"condensed"`
	ACOutput        float64            `json:"ac_output"`
	HasAC           bool               `json:"has_ac"`
	Setpoint        float64            `json:"setpoint"`
	ACIntegral      float64            `json:"ac_integral"` // PID accumulator, zero without AC
	Alerts          []string           `json:"alerts"`

	Speed       float64 `json:"speed"`
	Paused      bool    `json:"paused"`
	HeaterPower float64 `json:"heater_power"`
	SubSteps    int     `json:"sub_steps"`
}

// Body returns the pot state carried by the snapshot.
func (s Snapshot) Body(altitude float64) sim.Body {
	return sim.Body{
		Liquid:      s.LiquidMass,
		Temperature: s.Temperature,
		Altitude:    altitude,
		Residue:     s.ResidueMass,
		Vaporized:   s.VaporizedMass,
		Phase:       s.Phase,
	}
}

func (h *Host) snapshot() Snapshot {
	s := Snapshot{
		Time:            h.time,
		Temperature:     h.body.Temperature,
		LiquidMass:      h.body.Liquid,
		ResidueMass:     h.body.Residue,
		VaporizedMass:   h.body.Vaporized,
		Phase:           h.body.Phase,
		BoilingPoint:    sim.EffectiveBoilingPoint(h.body, h.lastBP, h.fluid),
		RoomTemperature: h.room.Temperature(),
		RoomPressure:    h.room.Pressure(),
		RoomHumidity:    h.room.Humidity(),
		Composition:     h.room.Composition().Map(),
		Condensed:       h.room.Condensed(),
		ACOutput:        h.room.ACOutput(),
		HasAC:           h.room.HasAC(),
		Alerts:          h.room.Alerts().Names(),
		Speed:           h.speed,
		Paused:          h.paused,
		HeaterPower:     h.heater,
		SubSteps:        h.subSteps,
	}
	if s.HasAC {
		s.Setpoint = h.room.Setpoint()
		s.ACIntegral = h.room.ACState().Integral
	}
	return s
}

// Room exposes a read-only view of the committed room for callers that
// own the host goroutine, such as batch runs after Simulate returns.
func (h *Host) Room() *room.Room { return h.room.Clone() }
