package globe

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

const colorEps = 1e-6

func colorNear(a, b Color, eps float64) bool {
	return approxEqual(a.R, b.R, eps) && approxEqual(a.G, b.G, eps) &&
		approxEqual(a.B, b.B, eps) && approxEqual(a.A, b.A, eps)
}

func hexColor(t *testing.T, s string) Color {
	t.Helper()
	c, err := colorful.Hex(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

func TestColorForStops(t *testing.T) {
	tests := []struct {
		anomaly float64
		hex     string
	}{
		{-2, "#08306b"},
		{-1, "#2171b5"},
		{0, "#f7f7f7"},
		{1, "#feb24c"},
		{2, "#800026"},
	}
	for _, tt := range tests {
		got := ColorFor(tt.anomaly)
		if want := hexColor(t, tt.hex); !colorNear(got, want, colorEps) {
			t.Errorf("ColorFor(%v) = %+v, want %s", tt.anomaly, got, tt.hex)
		}
	}
}

func TestColorForClamps(t *testing.T) {
	tests := []struct {
		in, equiv float64
	}{
		{-5, -2},
		{-2.0001, -2},
		{10, 2},
		{math.Inf(1), 2},
		{math.Inf(-1), -2},
	}
	for _, tt := range tests {
		if got, want := ColorFor(tt.in), ColorFor(tt.equiv); !colorNear(got, want, colorEps) {
			t.Errorf("ColorFor(%v) = %+v, want ColorFor(%v) = %+v", tt.in, got, tt.equiv, want)
		}
	}
}

func TestColorForNaNIsLastStop(t *testing.T) {
	if got, want := ColorFor(math.NaN()), hexColor(t, "#800026"); !colorNear(got, want, colorEps) {
		t.Errorf("ColorFor(NaN) = %+v, want %+v", got, want)
	}
}

func TestColorForMidSegment(t *testing.T) {
	// -1.5 normalizes to 0.125, halfway between the first two stops.
	lo, hi := hexColor(t, "#08306b"), hexColor(t, "#2171b5")
	want := Color{R: (lo.R + hi.R) / 2, G: (lo.G + hi.G) / 2, B: (lo.B + hi.B) / 2, A: 1}
	if got := ColorFor(-1.5); !colorNear(got, want, colorEps) {
		t.Errorf("ColorFor(-1.5) = %+v, want %+v", got, want)
	}
}

func TestColorForContinuous(t *testing.T) {
	const step = 1e-4
	prev := ColorFor(-2)
	for v := -2 + step; v <= 2; v += step {
		c := ColorFor(v)
		if math.Abs(c.R-prev.R) > 0.01 || math.Abs(c.G-prev.G) > 0.01 || math.Abs(c.B-prev.B) > 0.01 {
			t.Fatalf("jump at %v: %+v -> %+v", v, prev, c)
		}
		prev = c
	}
}

func TestColorForAlwaysOpaque(t *testing.T) {
	for _, v := range []float64{-3, -2, -0.7, 0, 0.3, 1.9, 7} {
		if a := ColorFor(v).A; a != 1 {
			t.Errorf("ColorFor(%v).A = %v, want 1", v, a)
		}
	}
}

func TestNormalize(t *testing.T) {
	r := DefaultRamp()
	tests := []struct{ in, want float64 }{
		{-2, 0}, {0, 0.5}, {2, 1}, {-9, 0}, {9, 1}, {1, 0.75},
	}
	for _, tt := range tests {
		if got := r.Normalize(tt.in); !approxEqual(got, tt.want, colorEps) {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultRampIsACopy(t *testing.T) {
	r := DefaultRamp()
	r.Stops[0].Color = colorful.Color{R: 1}
	if got := ColorFor(-2); colorNear(got, Color{R: 1, A: 1}, colorEps) {
		t.Error("mutating DefaultRamp() leaked into the package ramp")
	}
}

func TestNewColorRamp(t *testing.T) {
	black, white := colorful.Color{}, colorful.Color{R: 1, G: 1, B: 1}

	r, err := NewColorRamp(0, 10, RampStop{0, black}, RampStop{1, white})
	if err != nil {
		t.Fatalf("NewColorRamp: %v", err)
	}
	if got := r.ColorFor(5); !colorNear(got, Color{0.5, 0.5, 0.5, 1}, colorEps) {
		t.Errorf("ColorFor(5) = %+v, want mid gray", got)
	}

	bad := []struct {
		name     string
		min, max float64
		stops    []RampStop
	}{
		{"empty range", 1, 1, []RampStop{{0, black}, {1, white}}},
		{"one stop", 0, 1, []RampStop{{0, black}}},
		{"not anchored", 0, 1, []RampStop{{0.1, black}, {1, white}}},
		{"unordered", 0, 1, []RampStop{{0, black}, {0.6, white}, {0.4, black}, {1, white}}},
	}
	for _, tt := range bad {
		if _, err := NewColorRamp(tt.min, tt.max, tt.stops...); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestLegend(t *testing.T) {
	l := DefaultRamp().Legend(5, 2)
	if l.Width() != 5 || l.Height() != 2 {
		t.Fatalf("Legend size = %dx%d, want 5x2", l.Width(), l.Height())
	}
	if got, want := l.At(0, 1), ColorFor(-2); !colorNear(got, want, 1e-5) {
		t.Errorf("left = %+v, want %+v", got, want)
	}
	if got, want := l.At(2, 0), ColorFor(0); !colorNear(got, want, 1e-5) {
		t.Errorf("middle = %+v, want %+v", got, want)
	}
	if got, want := l.At(4, 0), ColorFor(2); !colorNear(got, want, 1e-5) {
		t.Errorf("right = %+v, want %+v", got, want)
	}
}
