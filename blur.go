package globe

import "math"

// gaussianKernel returns normalized weights for offsets -k..k, where
// k = ceil(3*sigma).
func gaussianKernel(sigma float64) []float32 {
	k := int(math.Ceil(3 * sigma))
	weights := make([]float64, 2*k+1)
	sum := 0.0
	for i := -k; i <= k; i++ {
		w := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		weights[i+k] = w
		sum += w
	}
	out := make([]float32, len(weights))
	for i, w := range weights {
		out[i] = float32(w / sum)
	}
	return out
}

// Blur applies a separable gaussian blur. Rows wrap around horizontally so
// the left and right edges blend into each other, which hides the seam once
// the raster is wrapped onto a sphere. Columns treat pixels beyond the top
// and bottom edges as transparent.
func (r *PixelRaster) Blur(sigma float64) {
	if !(sigma > 0) || r.w == 0 || r.h == 0 {
		return
	}
	kernel := gaussianKernel(sigma)
	k := len(kernel) / 2

	line := make([]float32, max(r.w, r.h)*4)

	// Horizontal pass, wrapping.
	for y := 0; y < r.h; y++ {
		row := r.pix[y*r.w*4 : (y+1)*r.w*4]
		for x := 0; x < r.w; x++ {
			var sr, sg, sb, sa float32
			for i := -k; i <= k; i++ {
				sx := (x + i) % r.w
				if sx < 0 {
					sx += r.w
				}
				w := kernel[i+k]
				p := row[sx*4 : sx*4+4]
				sr += p[0] * w
				sg += p[1] * w
				sb += p[2] * w
				sa += p[3] * w
			}
			o := line[x*4 : x*4+4]
			o[0], o[1], o[2], o[3] = sr, sg, sb, sa
		}
		copy(row, line[:r.w*4])
	}

	// Vertical pass, transparent beyond the edges.
	stride := r.w * 4
	for x := 0; x < r.w; x++ {
		for y := 0; y < r.h; y++ {
			var sr, sg, sb, sa float32
			for i := -k; i <= k; i++ {
				sy := y + i
				if sy < 0 || sy >= r.h {
					continue
				}
				w := kernel[i+k]
				j := sy*stride + x*4
				sr += r.pix[j] * w
				sg += r.pix[j+1] * w
				sb += r.pix[j+2] * w
				sa += r.pix[j+3] * w
			}
			o := line[y*4 : y*4+4]
			o[0], o[1], o[2], o[3] = sr, sg, sb, sa
		}
		for y := 0; y < r.h; y++ {
			j := y*stride + x*4
			copy(r.pix[j:j+4], line[y*4:y*4+4])
		}
	}
}
