package globe

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RampStop anchors a palette color at a normalized position in [0, 1].
type RampStop struct {
	Pos   float64
	Color colorful.Color
}

// ColorRamp maps anomaly values onto a piecewise-linear palette. Values are
// normalized against [Min, Max] and clamped before lookup.
type ColorRamp struct {
	Min, Max float64
	Stops    []RampStop
}

// defaultRamp runs from strong cold to strong warm anomalies.
var defaultRamp = ColorRamp{
	Min: MinAnomaly,
	Max: MaxAnomaly,
	Stops: []RampStop{
		{0, mustParseHex("#08306b")},
		{0.25, mustParseHex("#2171b5")},
		{0.5, mustParseHex("#f7f7f7")},
		{0.75, mustParseHex("#feb24c")},
		{1, mustParseHex("#800026")},
	},
}

// DefaultRamp returns the dark blue → blue → near-white → orange → dark red
// palette spanning [MinAnomaly, MaxAnomaly].
func DefaultRamp() ColorRamp {
	r := defaultRamp
	r.Stops = append([]RampStop(nil), defaultRamp.Stops...)
	return r
}

// NewColorRamp builds a ramp over [min, max]. Stops must be in ascending
// order, start at 0 and end at 1.
func NewColorRamp(min, max float64, stops ...RampStop) (ColorRamp, error) {
	if !(max > min) {
		return ColorRamp{}, fmt.Errorf("color ramp: max %v must exceed min %v", max, min)
	}
	if len(stops) < 2 {
		return ColorRamp{}, errors.New("color ramp: need at least two stops")
	}
	if stops[0].Pos != 0 || stops[len(stops)-1].Pos != 1 {
		return ColorRamp{}, errors.New("color ramp: stops must start at 0 and end at 1")
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Pos <= stops[i-1].Pos {
			return ColorRamp{}, fmt.Errorf("color ramp: stop %d at %v is not after %v", i, stops[i].Pos, stops[i-1].Pos)
		}
	}
	return ColorRamp{Min: min, Max: max, Stops: append([]RampStop(nil), stops...)}, nil
}

// ColorFor returns the opaque palette color for an anomaly value using the
// default ramp.
func ColorFor(anomaly float64) Color {
	return defaultRamp.ColorFor(anomaly)
}

// Normalize maps an anomaly onto [0, 1]. NaN stays NaN.
func (r ColorRamp) Normalize(anomaly float64) float64 {
	return clamp01((anomaly - r.Min) / (r.Max - r.Min))
}

// ColorFor returns the opaque palette color for an anomaly value. Segments
// include both of their breakpoints; adjacent segments agree at the shared
// breakpoint, so the ramp is continuous. A value matching no segment (NaN)
// resolves to the last stop.
func (r ColorRamp) ColorFor(anomaly float64) Color {
	t := r.Normalize(anomaly)
	for i := 0; i < len(r.Stops)-1; i++ {
		lo, hi := r.Stops[i], r.Stops[i+1]
		if t >= lo.Pos && t <= hi.Pos {
			f := (t - lo.Pos) / (hi.Pos - lo.Pos)
			if f >= 1 {
				return fromColorful(hi.Color)
			}
			return fromColorful(lo.Color.BlendRgb(hi.Color, f))
		}
	}
	return fromColorful(r.Stops[len(r.Stops)-1].Color)
}

// Legend renders the ramp left (Min) to right (Max) into an opaque raster.
func (r ColorRamp) Legend(width, height int) *PixelRaster {
	out := NewPixelRaster(width, height)
	for x := 0; x < width; x++ {
		t := 0.0
		if width > 1 {
			t = float64(x) / float64(width-1)
		}
		c := r.ColorFor(r.Min + t*(r.Max-r.Min))
		for y := 0; y < height; y++ {
			out.set(x, y, float32(c.R), float32(c.G), float32(c.B), 1)
		}
	}
	return out
}

func fromColorful(c colorful.Color) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("globe: bad palette color " + s + ": " + err.Error())
	}
	return c
}
