package analysis

import (
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a run trace. Times are -1 when the event never happened.
type Summary struct {
	Duration         float64 `json:"duration"`
	BoilTime         float64 `json:"boil_time"`
	DryTime          float64 `json:"dry_time"`
	PeakTemperature  float64 `json:"peak_temperature"`
	FinalTemperature float64 `json:"final_temperature"`
	Vaporized        float64 `json:"vaporized"`
	Residue          float64 `json:"residue"`
	MeanBoilingPoint float64 `json:"mean_boiling_point"`
	RoomMean         float64 `json:"room_mean"`
	RoomStdDev       float64 `json:"room_std_dev"`
	PeakRoomPressure float64 `json:"peak_room_pressure"`
	PeakHumidity     float64 `json:"peak_humidity"`
	Condensed        float64 `json:"condensed"`
	ACEnergy         float64 `json:"ac_energy"` // J removed (negative when heating)
	Alerts           int     `json:"alerts"`    // snapshots with any alert raised
}

func Summarize(trace []host.Snapshot) Summary {
	s := Summary{BoilTime: -1, DryTime: -1}
	if len(trace) == 0 {
		return s
	}

	n := len(trace)
	times := make([]float64, n)
	temps := make([]float64, n)
	bps := make([]float64, n)
	room := make([]float64, n)
	pressure := make([]float64, n)
	humidity := make([]float64, n)
	ac := make([]float64, n)
	for i, snap := range trace {
		times[i] = snap.Time
		temps[i] = snap.Temperature
		bps[i] = snap.BoilingPoint
		room[i] = snap.RoomTemperature
		pressure[i] = snap.RoomPressure
		humidity[i] = snap.RoomHumidity
		ac[i] = snap.ACOutput
		if s.BoilTime < 0 && snap.Phase == sim.PhaseBoiling {
			s.BoilTime = snap.Time
		}
		if s.DryTime < 0 && snap.Phase == sim.PhaseDry {
			s.DryTime = snap.Time
		}
		if len(snap.Alerts) > 0 {
			s.Alerts++
		}
	}

	last := trace[n-1]
	s.Duration = last.Time
	s.FinalTemperature = last.Temperature
	s.Vaporized = last.VaporizedMass
	s.Residue = last.ResidueMass
	s.Condensed = last.Condensed
	s.PeakTemperature = floats.Max(temps)
	s.MeanBoilingPoint = stat.Mean(bps, nil)
	s.RoomMean = stat.Mean(room, nil)
	s.PeakRoomPressure = floats.Max(pressure)
	s.PeakHumidity = floats.Max(humidity)
	if n > 1 {
		s.RoomStdDev = stat.StdDev(room, nil)
		s.ACEnergy = integrate.Trapezoidal(times, ac)
	}
	return s
}

// Metrics flattens s for run metadata.
func (s Summary) Metrics() map[string]float64 {
	return map[string]float64{
		"duration":           s.Duration,
		"boil_time":          s.BoilTime,
		"dry_time":           s.DryTime,
		"peak_temperature":   s.PeakTemperature,
		"final_temperature":  s.FinalTemperature,
		"vaporized":          s.Vaporized,
		"residue":            s.Residue,
		"mean_boiling_point": s.MeanBoilingPoint,
		"room_mean":          s.RoomMean,
		"room_std_dev":       s.RoomStdDev,
		"peak_room_pressure": s.PeakRoomPressure,
		"peak_humidity":      s.PeakHumidity,
		"condensed":          s.Condensed,
		"ac_energy":          s.ACEnergy,
		"alerts":             float64(s.Alerts),
	}
}
