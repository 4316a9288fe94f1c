package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/boilsim/internal/analysis"
	"github.com/san-kum/boilsim/internal/experiment"
	"github.com/san-kum/boilsim/internal/host"
)

type ExportData struct {
	Workshop string           `json:"workshop"`
	Fluid    string           `json:"fluid"`
	Altitude float64          `json:"altitude"`
	Duration float64          `json:"duration"`
	Samples  int              `json:"samples"`
	Summary  analysis.Summary `json:"summary"`
	Trace    []host.Snapshot  `json:"trace"`
}

func exportData(res *experiment.Result) ExportData {
	return ExportData{
		Workshop: res.Workshop.Name,
		Fluid:    res.Fluid,
		Altitude: res.Workshop.Altitude,
		Duration: res.Summary.Duration,
		Samples:  len(res.Trace),
		Summary:  res.Summary,
		Trace:    res.Trace,
	}
}

func WriteJSON(w io.Writer, res *experiment.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(res))
}

// ExportJSON writes res to path, or to stdout when path is "-".
func ExportJSON(path string, res *experiment.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
