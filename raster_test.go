package globe

import (
	"math"
	"testing"
)

func sumAlpha(r *PixelRaster) float64 {
	var s float64
	for i := 3; i < len(r.pix); i += 4 {
		s += float64(r.pix[i])
	}
	return s
}

func TestNewPixelRasterTransparent(t *testing.T) {
	r := NewPixelRaster(8, 4)
	if r.Width() != 8 || r.Height() != 4 {
		t.Fatalf("size = %dx%d, want 8x4", r.Width(), r.Height())
	}
	if !r.IsTransparent() {
		t.Error("new raster should be transparent")
	}
	if n := NewPixelRaster(-3, 2); n.Width() != 0 || len(n.pix) != 0 {
		t.Errorf("negative width: got w=%d len=%d", n.Width(), len(n.pix))
	}
}

func TestStampRadialGradientCenterAndFalloff(t *testing.T) {
	r := NewPixelRaster(20, 20)
	red := Color{1, 0, 0, 1}
	r.StampRadialGradient(10, 10, 5, red, 0.5)

	// Pixel (10,10) has its center at (10.5,10.5), 0.707 from the stamp center.
	c := r.At(10, 10)
	want := 0.5 * (1 - math.Sqrt(0.5)/5)
	if !approxEqual(c.A, want, 1e-5) {
		t.Errorf("center alpha = %f, want %f", c.A, want)
	}
	if !approxEqual(c.R, 1, 1e-5) || c.G != 0 || c.B != 0 {
		t.Errorf("center color = %+v, want pure red", c)
	}

	if a := r.At(15, 10).A; a != 0 {
		t.Errorf("alpha beyond radius = %f, want 0", a)
	}
	if a := r.At(0, 0).A; a != 0 {
		t.Errorf("far corner alpha = %f, want 0", a)
	}

	near, far := r.At(11, 10).A, r.At(13, 10).A
	if !(near > far && far > 0) {
		t.Errorf("alpha should fall off: near=%f far=%f", near, far)
	}
}

func TestStampRadialGradientComposites(t *testing.T) {
	r := NewPixelRaster(10, 10)
	r.StampRadialGradient(5, 5, 4, Color{0, 0, 1, 1}, 0.5)
	first := r.At(5, 5)
	r.StampRadialGradient(5, 5, 4, Color{1, 0, 0, 1}, 0.5)
	second := r.At(5, 5)

	if second.A <= first.A {
		t.Errorf("alpha after second stamp = %f, want > %f", second.A, first.A)
	}
	if second.R <= second.B {
		t.Errorf("later stamp should dominate: %+v", second)
	}
	if second.B == 0 {
		t.Error("earlier stamp should show through")
	}
}

func TestStampRadialGradientSkipsInvalid(t *testing.T) {
	r := NewPixelRaster(10, 10)
	c := Color{1, 1, 1, 1}
	r.StampRadialGradient(math.NaN(), 5, 3, c, 1)
	r.StampRadialGradient(5, math.Inf(1), 3, c, 1)
	r.StampRadialGradient(5, 5, 0, c, 1)
	r.StampRadialGradient(5, 5, -1, c, 1)
	r.StampRadialGradient(5, 5, math.NaN(), c, 1)
	r.StampRadialGradient(-50, -50, 3, c, 1)
	if !r.IsTransparent() {
		t.Error("invalid stamps should leave the raster untouched")
	}
}

func TestStampRadialGradientClipsAtEdges(t *testing.T) {
	r := NewPixelRaster(10, 10)
	r.StampRadialGradient(0, 0, 4, Color{0, 1, 0, 1}, 1)
	if a := r.At(0, 0).A; a <= 0 {
		t.Errorf("corner alpha = %f, want > 0", a)
	}
	if a := r.At(9, 9).A; a != 0 {
		t.Errorf("opposite corner alpha = %f, want 0", a)
	}
}

func TestToTextureData(t *testing.T) {
	r := NewPixelRaster(2, 1)
	r.set(0, 0, 1, 0.5, 0, 1)
	r.set(1, 0, 1, 1, 1, 0.5)
	got := r.ToTextureData()
	want := []byte{255, 128, 0, 255, 128, 128, 128, 128}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestToByteClamps(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{-1, 0}, {0, 0}, {1, 255}, {2, 255}, {float32(math.NaN()), 0}, {0.5, 128},
	}
	for _, tt := range tests {
		if got := toByte(tt.in); got != tt.want {
			t.Errorf("toByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAtOutOfRange(t *testing.T) {
	r := NewPixelRaster(4, 4)
	r.set(0, 0, 1, 1, 1, 1)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if c := r.At(p[0], p[1]); c != (Color{}) {
			t.Errorf("At(%d,%d) = %+v, want zero", p[0], p[1], c)
		}
	}
}

func TestClear(t *testing.T) {
	r := NewPixelRaster(4, 4)
	r.StampRadialGradient(2, 2, 2, Color{1, 1, 1, 1}, 1)
	r.Clear()
	if !r.IsTransparent() {
		t.Error("Clear should leave the raster transparent")
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	for _, sigma := range []float64{0.5, 1.2, 3} {
		k := gaussianKernel(sigma)
		if want := 2*int(math.Ceil(3*sigma)) + 1; len(k) != want {
			t.Errorf("sigma %v: len = %d, want %d", sigma, len(k), want)
		}
		var sum float64
		for _, w := range k {
			sum += float64(w)
		}
		if !approxEqual(sum, 1, 1e-5) {
			t.Errorf("sigma %v: sum = %f, want 1", sigma, sum)
		}
		mid := len(k) / 2
		for i := 0; i < mid; i++ {
			if k[i] != k[len(k)-1-i] {
				t.Errorf("sigma %v: kernel not symmetric at %d", sigma, i)
			}
		}
	}
}

func TestBlurNoopForNonPositiveSigma(t *testing.T) {
	r := NewPixelRaster(6, 6)
	r.set(3, 3, 1, 0, 0, 1)
	r.Blur(0)
	r.Blur(-2)
	if c := r.At(3, 3); c.A != 1 {
		t.Errorf("alpha = %f, want 1", c.A)
	}
}

func TestBlurSpreadsAndConserves(t *testing.T) {
	r := NewPixelRaster(32, 32)
	r.set(16, 16, 1, 0, 0, 1)
	before := sumAlpha(r)
	r.Blur(1.2)
	if a := r.At(16, 16).A; a >= 1 || a <= 0 {
		t.Errorf("center alpha after blur = %f, want (0,1)", a)
	}
	if a := r.At(17, 16).A; a <= 0 {
		t.Errorf("neighbor alpha after blur = %f, want > 0", a)
	}
	if after := sumAlpha(r); !approxEqual(after, before, 1e-4) {
		t.Errorf("total alpha = %f, want %f", after, before)
	}
}

func TestBlurWrapsHorizontally(t *testing.T) {
	r := NewPixelRaster(16, 8)
	r.set(0, 4, 0, 0, 1, 1)
	r.Blur(1)
	if a := r.At(15, 4).A; a <= 0 {
		t.Errorf("right edge alpha = %f, want > 0 from wrapped left edge", a)
	}
	if a := r.At(8, 4).A; a != 0 {
		t.Errorf("middle alpha = %f, want 0", a)
	}
}

func TestBlurDoesNotWrapVertically(t *testing.T) {
	r := NewPixelRaster(8, 16)
	r.set(4, 0, 0, 0, 1, 1)
	r.Blur(1)
	if a := r.At(4, 15).A; a != 0 {
		t.Errorf("bottom alpha = %f, want 0", a)
	}
}
