// Package termview previews heatmaps in a terminal. Each character cell
// shows two vertically stacked raster pixels using the upper half block,
// so a cols × rows terminal displays a cols × 2·rows image.
package termview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	globe "github.com/phanxgames/anomalyglobe"
)

// background is what transparent raster pixels are composited over.
var background = [3]float64{0x1a / 255.0, 0x1a / 255.0, 0x1a / 255.0}

// Backend implements globe.OverlayBackend by downsampling each raster to a
// grid of terminal colors.
type Backend struct {
	cols, rows int

	live    *Overlay
	created int
}

var _ globe.OverlayBackend = (*Backend)(nil)

// NewBackend creates a backend for a cols × rows cell area.
func NewBackend(cols, rows int) *Backend {
	b := &Backend{}
	b.Resize(cols, rows)
	return b
}

// Resize changes the target cell area. It affects overlays created later.
func (b *Backend) Resize(cols, rows int) {
	b.cols, b.rows = max(cols, 1), max(rows, 1)
}

// Live returns the overlay currently alive, or nil.
func (b *Backend) Live() *Overlay {
	return b.live
}

// Created returns how many overlays the backend has built.
func (b *Backend) Created() int {
	return b.created
}

// CreateOverlay samples r at cols × 2·rows points.
func (b *Backend) CreateOverlay(r globe.Raster) (globe.Overlay, error) {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return nil, globe.ErrEmptyRaster
	}
	if b.live != nil {
		return nil, fmt.Errorf("terminal overlay still live")
	}
	data := r.ToTextureData()
	pw, ph := b.cols, b.rows*2
	o := &Overlay{backend: b, cols: pw, rows: ph, pixels: make([]tcell.Color, pw*ph)}
	for y := 0; y < ph; y++ {
		sy := min(y*h/ph, h-1)
		for x := 0; x < pw; x++ {
			sx := min(x*w/pw, w-1)
			i := 4 * (sy*w + sx)
			o.pixels[y*pw+x] = composite(data[i], data[i+1], data[i+2], data[i+3])
		}
	}
	b.live = o
	b.created++
	return o, nil
}

// composite blends a premultiplied pixel over the background.
func composite(r, g, b, a byte) tcell.Color {
	k := 1 - float64(a)/255
	ch := func(c byte, bg float64) int32 {
		return int32(min(255, float64(c)+bg*255*k+0.5))
	}
	return tcell.NewRGBColor(ch(r, background[0]), ch(g, background[1]), ch(b, background[2]))
}

// Overlay is a downsampled heatmap ready to paint.
type Overlay struct {
	backend    *Backend
	cols, rows int
	pixels     []tcell.Color
}

// Release drops the pixels and frees the backend slot.
func (o *Overlay) Release() {
	if o.pixels == nil {
		return
	}
	o.pixels = nil
	if o.backend.live == o {
		o.backend.live = nil
	}
}

// Released reports whether Release has been called.
func (o *Overlay) Released() bool {
	return o.pixels == nil
}

// At returns the color of pixel (x, y) in overlay space.
func (o *Overlay) At(x, y int) tcell.Color {
	if o.pixels == nil || x < 0 || y < 0 || x >= o.cols || y >= o.rows {
		return tcell.ColorDefault
	}
	return o.pixels[y*o.cols+x]
}

// paint draws the overlay into s starting at the top left.
func (o *Overlay) paint(s tcell.Screen) {
	for cy := 0; cy < o.rows/2; cy++ {
		for x := 0; x < o.cols; x++ {
			style := tcell.StyleDefault.
				Foreground(o.At(x, 2*cy)).
				Background(o.At(x, 2*cy+1))
			s.SetContent(x, cy, '▀', nil, style)
		}
	}
}
