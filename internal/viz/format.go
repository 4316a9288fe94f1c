package viz

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Clock formats simulated seconds as h:mm:ss.s.
func Clock(seconds float64) string {
	h := int(seconds) / 3600
	m := int(seconds) / 60 % 60
	s := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%d:%02d:%04.1f", h, m, s)
}

func Pressure(pa float64) string {
	return humanize.SIWithDigits(pa, 2, "Pa")
}

func Power(w float64) string {
	return humanize.SIWithDigits(w, 1, "W")
}

func Mass(kg float64) string {
	return humanize.SIWithDigits(kg*1000, 1, "g")
}

// Trend marks a temperature change too small to show at two decimals as
// steady.
func Trend(delta float64) string {
	switch {
	case delta >= 0.005:
		return "↑"
	case delta <= -0.005:
		return "↓"
	}
	return "→"
}
