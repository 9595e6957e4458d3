package globe

import "math"

// Raster is a 2D RGBA drawing surface the heatmap synthesizer stamps into.
// PixelRaster is the CPU implementation; other backends only need these
// operations.
type Raster interface {
	// Width and Height return the raster size in pixels.
	Width() int
	Height() int
	// StampRadialGradient composites a radial gradient centered on (cx, cy).
	// The gradient is c at the center and fades linearly to transparent at
	// radius. alpha scales the whole stamp. Compositing is source-over.
	StampRadialGradient(cx, cy, radius float64, c Color, alpha float64)
	// Blur applies a gaussian blur with the given standard deviation in pixels.
	Blur(sigma float64)
	// ToTextureData returns premultiplied RGBA8 pixels in row-major order,
	// ready for ebiten.Image.WritePixels.
	ToTextureData() []byte
}

// PixelRaster is a premultiplied float32 RGBA buffer. The zero value is an
// empty 0x0 raster.
type PixelRaster struct {
	w, h int
	pix  []float32
}

var _ Raster = (*PixelRaster)(nil)

// NewPixelRaster allocates a fully transparent raster. Negative sizes are
// treated as zero.
func NewPixelRaster(w, h int) *PixelRaster {
	w = max(w, 0)
	h = max(h, 0)
	return &PixelRaster{w: w, h: h, pix: make([]float32, w*h*4)}
}

// Width returns the raster width in pixels.
func (r *PixelRaster) Width() int { return r.w }

// Height returns the raster height in pixels.
func (r *PixelRaster) Height() int { return r.h }

// At returns the straight-alpha color of the pixel at (x, y). Out-of-range
// coordinates return transparent black.
func (r *PixelRaster) At(x, y int) Color {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return Color{}
	}
	i := (y*r.w + x) * 4
	a := float64(r.pix[i+3])
	if a <= 0 {
		return Color{}
	}
	return Color{
		R: float64(r.pix[i]) / a,
		G: float64(r.pix[i+1]) / a,
		B: float64(r.pix[i+2]) / a,
		A: a,
	}
}

// IsTransparent reports whether every pixel has zero alpha.
func (r *PixelRaster) IsTransparent() bool {
	for i := 3; i < len(r.pix); i += 4 {
		if r.pix[i] != 0 {
			return false
		}
	}
	return true
}

// Clear resets every pixel to transparent black.
func (r *PixelRaster) Clear() {
	clear(r.pix)
}

// set writes a straight-alpha color without blending.
func (r *PixelRaster) set(x, y int, cr, cg, cb, ca float32) {
	i := (y*r.w + x) * 4
	r.pix[i] = cr * ca
	r.pix[i+1] = cg * ca
	r.pix[i+2] = cb * ca
	r.pix[i+3] = ca
}

// StampRadialGradient composites a radial gradient centered on (cx, cy).
// Pixels are sampled at their centers. The gradient is interpolated in
// premultiplied space, so its hue stays constant while alpha falls off.
// Stamps with a non-finite center or a non-positive radius are skipped.
func (r *PixelRaster) StampRadialGradient(cx, cy, radius float64, c Color, alpha float64) {
	if !(radius > 0) || !isFinite(cx) || !isFinite(cy) {
		return
	}
	x0 := max(int(math.Floor(cx-radius)), 0)
	y0 := max(int(math.Floor(cy-radius)), 0)
	x1 := min(int(math.Ceil(cx+radius)), r.w-1)
	y1 := min(int(math.Ceil(cy+radius)), r.h-1)
	if x0 > x1 || y0 > y1 {
		return
	}

	peak := alpha * c.A
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) + 0.5 - cy
		row := y * r.w * 4
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			d2 := dx*dx + dy*dy
			if d2 >= r2 {
				continue
			}
			a := float32(peak * (1 - math.Sqrt(d2)/radius))
			if a <= 0 {
				continue
			}
			i := row + x*4
			inv := 1 - a
			r.pix[i] = float32(c.R)*a + r.pix[i]*inv
			r.pix[i+1] = float32(c.G)*a + r.pix[i+1]*inv
			r.pix[i+2] = float32(c.B)*a + r.pix[i+2]*inv
			r.pix[i+3] = a + r.pix[i+3]*inv
		}
	}
}

// ToTextureData returns premultiplied RGBA8 pixels in row-major order.
func (r *PixelRaster) ToTextureData() []byte {
	out := make([]byte, len(r.pix))
	for i, v := range r.pix {
		out[i] = toByte(v)
	}
	return out
}

func toByte(v float32) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
