package export

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/boilsim/internal/host"
)

func TestTraceSVG(t *testing.T) {
	trace := []host.Snapshot{
		{Time: 0, Temperature: 20, BoilingPoint: 100, RoomTemperature: 20},
		{Time: 100, Temperature: 60, BoilingPoint: 100, RoomTemperature: 20.5},
		{Time: 200, Temperature: 100, BoilingPoint: 100, RoomTemperature: 21},
	}
	svg := TraceSVG(trace, DefaultSeries(), 640, 320)
	if strings.Count(svg, "<path") != 3 {
		t.Errorf("expected 3 paths:\n%s", svg)
	}
	if !strings.Contains(svg, "200 s") {
		t.Error("time axis label missing")
	}

	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("invalid xml: %v", err)
			}
			break
		}
	}
}

func TestTraceSVGNeedsTwoSamples(t *testing.T) {
	if got := TraceSVG([]host.Snapshot{{}}, DefaultSeries(), 100, 100); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
