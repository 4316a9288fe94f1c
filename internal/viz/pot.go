package viz

import (
	"github.com/san-kum/boilsim/internal/host"
	"github.com/san-kum/boilsim/internal/sim"
)

// potLayer is one styled part of the pot drawing.
type potLayer int

const (
	layerPot potLayer = iota
	layerLiquid
	layerSteam
	layerFlame
)

// drawPot renders the pot filled to the remaining liquid share, with
// bubbles and steam while boiling and a flame while the heater is on.
// frame animates the bubbles.
func drawPot(c *Canvas, layer potLayer, s host.Snapshot, initial float64, frame int) {
	w, h := c.Pixels()
	left, right := w/6, w-w/6
	bottom := h - h/5
	top := h / 3

	switch layer {
	case layerPot:
		c.DrawLine(left, top, left, bottom)
		c.DrawLine(right, top, right, bottom)
		c.DrawLine(left, bottom, right, bottom)
		c.DrawLine(left-3, top, left, top)
		c.DrawLine(right, top, right+3, top)
		if s.ResidueMass > 0 {
			c.Fill(left+1, bottom-2, right-1, bottom-1, 1)
		}

	case layerLiquid:
		level := fill(s, initial)
		if level <= 0 {
			return
		}
		surface := bottom - 1 - int(level*float64(bottom-top-2))
		c.Fill(left+1, surface, right-1, bottom-3, 2)
		c.DrawLine(left+1, surface, right-1, surface)
		if s.Phase == sim.PhaseBoiling {
			for i := 0; i < 6; i++ {
				x := left + 3 + (i*7+frame*3)%(right-left-5)
				y := bottom - 4 - (frame+i*5)%max(1, bottom-surface-4)
				c.Set(x, y)
				c.Set(x+1, y-1)
			}
		}

	case layerSteam:
		if s.Phase != sim.PhaseBoiling && s.Phase != sim.PhaseCooling {
			return
		}
		if s.Phase == sim.PhaseCooling && s.Temperature < s.BoilingPoint-15 {
			return
		}
		for i := 0; i < 4; i++ {
			x0 := left + (i+1)*(right-left)/5
			for y := top - 2; y > 1; y -= 3 {
				dx := ((y + frame + i*2) / 3) % 3
				c.Set(x0+dx-1, y)
			}
		}

	case layerFlame:
		if s.HeaterPower <= 0 {
			return
		}
		fh := h - bottom - 2
		for x := left + 2; x < right-2; x += 4 {
			peak := bottom + 2 + (x+frame)%3
			c.DrawLine(x, h-1, x+2, min(peak, bottom+fh))
			c.DrawLine(x+2, min(peak, bottom+fh), x+4, h-1)
		}
	}
}

// fill is the remaining liquid as a share of the starting mass.
func fill(s host.Snapshot, initial float64) float64 {
	if initial <= 0 {
		return 0
	}
	return max(0, min(1, s.LiquidMass/initial))
}
