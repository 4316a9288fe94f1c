package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/boilsim/internal/analysis"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/experiment"
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	workshopFile = "workshop.yaml"
	traceFile    = "trace.csv"
	indexFile    = "index.db"
)

// ErrNotFound is returned for run IDs the archive does not hold.
var ErrNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir, indexed in SQLite.
type Store struct {
	baseDir string
	index   *Index
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	if s.index != nil {
		return nil
	}
	idx, err := OpenIndex(filepath.Join(s.baseDir, indexFile))
	if err != nil {
		return err
	}
	s.index = idx
	return nil
}

func (s *Store) Close() error {
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Workshop  string             `json:"workshop"`
	Fluid     string             `json:"fluid"`
	Timestamp time.Time          `json:"timestamp"`
	Duration  float64            `json:"duration"`
	Elapsed   time.Duration      `json:"elapsed"`
	Samples   int                `json:"samples"`
	Summary   analysis.Summary   `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(res *experiment.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s_%s", res.Workshop.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        id,
		Workshop:  res.Workshop.Name,
		Fluid:     res.Fluid,
		Timestamp: res.Started,
		Duration:  res.Summary.Duration,
		Elapsed:   res.Elapsed,
		Samples:   len(res.Trace),
		Summary:   res.Summary,
		Metrics:   res.Summary.Metrics(),
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, workshopFile), res.Workshop); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), res.Trace); err != nil {
		return "", err
	}

	err := s.index.Add(IndexEntry{
		ID:              id,
		Workshop:        meta.Workshop,
		Fluid:           meta.Fluid,
		CreatedAt:       meta.Timestamp,
		Duration:        meta.Duration,
		BoilTime:        meta.Summary.BoilTime,
		PeakTemperature: meta.Summary.PeakTemperature,
		Vaporized:       meta.Summary.Vaporized,
		Samples:         meta.Samples,
	})
	if err != nil {
		return "", fmt.Errorf("index run %s: %w", id, err)
	}
	return id, nil
}

// List returns indexed runs newest first. An empty workshop lists all.
func (s *Store) List(workshop string) ([]IndexEntry, error) {
	if _, err := os.Stat(s.baseDir); os.IsNotExist(err) {
		return []IndexEntry{}, nil
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s.index.List(workshop)
}

func (s *Store) Load(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadWorkshop(id string) (*config.Workshop, error) {
	return config.LoadWorkshop(filepath.Join(s.baseDir, id, workshopFile))
}

// Delete removes the run directory and its index row.
func (s *Store) Delete(id string) error {
	if _, err := s.Load(id); err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	if err := s.index.Remove(id); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, id))
}

var traceHeader = []string{
	"time", "temperature", "liquid_mass", "residue_mass", "vaporized_mass", "phase", "boiling_point",
	"room_temperature", "room_pressure", "room_humidity", "condensed", "ac_output", "setpoint",
	"heater_power", "speed", "sub_steps", "alerts",
}

func writeTrace(path string, trace []host.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for _, s := range trace {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Temperature),
			formatFloat(s.LiquidMass),
			formatFloat(s.ResidueMass),
			formatFloat(s.VaporizedMass),
			s.Phase.String(),
			formatFloat(s.BoilingPoint),
			formatFloat(s.RoomTemperature),
			formatFloat(s.RoomPressure),
			formatFloat(s.RoomHumidity),
			formatFloat(s.Condensed),
			formatFloat(s.ACOutput),
			formatFloat(s.Setpoint),
			formatFloat(s.HeaterPower),
			formatFloat(s.Speed),
			strconv.Itoa(s.SubSteps),
			strings.Join(s.Alerts, "|"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// LoadTrace reads back the snapshots written by Save. Composition is not
// archived and stays nil.
func (s *Store) LoadTrace(id string) ([]host.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []host.Snapshot{}, nil
	}

	trace := make([]host.Snapshot, 0, len(records)-1)
	for i, rec := range records[1:] {
		snap, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", traceFile, i+2, err)
		}
		trace = append(trace, snap)
	}
	return trace, nil
}

func parseRow(rec []string) (host.Snapshot, error) {
	var snap host.Snapshot
	if len(rec) != len(traceHeader) {
		return snap, fmt.Errorf("want %d fields, got %d", len(traceHeader), len(rec))
	}
	floats := []struct {
		col int
		dst *float64
	}{
		{0, &snap.Time},
		{1, &snap.Temperature},
		{2, &snap.LiquidMass},
		{3, &snap.ResidueMass},
		{4, &snap.VaporizedMass},
		{6, &snap.BoilingPoint},
		{7, &snap.RoomTemperature},
		{8, &snap.RoomPressure},
		{9, &snap.RoomHumidity},
		{10, &snap.Condensed},
		{11, &snap.ACOutput},
		{12, &snap.Setpoint},
		{13, &snap.HeaterPower},
		{14, &snap.Speed},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(rec[f.col], 64)
		if err != nil {
			return snap, fmt.Errorf("%s: %w", traceHeader[f.col], err)
		}
		*f.dst = v
	}

	var phase sim.Phase
	if err := phase.UnmarshalText([]byte(rec[5])); err != nil {
		return snap, err
	}
	snap.Phase = phase

	n, err := strconv.Atoi(rec[15])
	if err != nil {
		return snap, fmt.Errorf("sub_steps: %w", err)
	}
	snap.SubSteps = n
	if rec[16] != "" {
		snap.Alerts = strings.Split(rec[16], "|")
	}
	return snap, nil
}
