package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/boilsim/internal/analysis"
	"github.com/san-kum/boilsim/internal/config"
	"github.com/san-kum/boilsim/internal/experiment"
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
)

func testResult(name string, started time.Time) *experiment.Result {
	w := config.DefaultWorkshop()
	w.Name = name
	w.Altitude = 1609
	trace := []host.Snapshot{
		{Time: 0, Temperature: 20, LiquidMass: 1, Phase: sim.PhaseIdle, BoilingPoint: 94.7, RoomTemperature: 20, RoomPressure: 83500, Speed: 1, SubSteps: 1},
		{Time: 200, Temperature: 94.7, LiquidMass: 0.99, VaporizedMass: 0.01, Phase: sim.PhaseBoiling, BoilingPoint: 94.7, RoomTemperature: 21.5, RoomPressure: 83510, Setpoint: 21, HeaterPower: 1700, Speed: 64, SubSteps: 4, Alerts: []string{"condensation", "ac_saturated"}},
	}
	return &experiment.Result{
		Workshop: w,
		Fluid:    "water",
		Started:  started,
		Elapsed:  time.Second,
		Trace:    trace,
		Summary:  analysis.Summarize(trace),
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	res := testResult("denver", time.Now())
	id, err := st.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Workshop != "denver" || meta.Fluid != "water" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Samples != 2 {
		t.Errorf("expected 2 samples, got %d", meta.Samples)
	}
	if meta.Metrics["boil_time"] != 200 {
		t.Errorf("expected boil_time 200, got %f", meta.Metrics["boil_time"])
	}

	w, err := st.LoadWorkshop(id)
	if err != nil {
		t.Fatalf("load workshop failed: %v", err)
	}
	if w.Altitude != 1609 {
		t.Errorf("workshop altitude = %f, want 1609", w.Altitude)
	}

	trace, err := st.LoadTrace(id)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(trace))
	}
	got := trace[1]
	if got.Phase != sim.PhaseBoiling || got.Temperature != 94.7 || got.SubSteps != 4 {
		t.Errorf("snapshot did not round trip: %+v", got)
	}
	if len(got.Alerts) != 2 || got.Alerts[1] != "ac_saturated" {
		t.Errorf("alerts = %v", got.Alerts)
	}
	if trace[0].Alerts != nil {
		t.Errorf("expected no alerts on first snapshot, got %v", trace[0].Alerts)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	st := New(t.TempDir())
	defer st.Close()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"kitchen", "lab", "kitchen"} {
		if _, err := st.Save(testResult(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := st.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if !all[0].CreatedAt.After(all[2].CreatedAt) {
		t.Errorf("runs not newest first: %v then %v", all[0].CreatedAt, all[2].CreatedAt)
	}

	kitchen, err := st.List("kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if len(kitchen) != 2 {
		t.Errorf("expected 2 kitchen runs, got %d", len(kitchen))
	}
}

func TestIndexConnectionPragmas(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	var mode string
	if err := idx.conn.Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	var timeout int
	if err := idx.conn.Get(&timeout, "PRAGMA busy_timeout"); err != nil {
		t.Fatal(err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/nothing")
	runs, err := st.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreDelete(t *testing.T) {
	st := New(t.TempDir())
	defer st.Close()

	id, err := st.Save(testResult("lab", time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	runs, _ := st.List("")
	if len(runs) != 0 {
		t.Errorf("index still holds %d runs", len(runs))
	}
	if err := st.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testResult("denver", time.Now())); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Workshop != "denver" || data.Altitude != 1609 || data.Samples != 2 {
		t.Errorf("unexpected export: %+v", data)
	}
	if data.Trace[1].Phase != sim.PhaseBoiling {
		t.Errorf("phase = %v, want boiling", data.Trace[1].Phase)
	}
}
