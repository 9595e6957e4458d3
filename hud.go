package globe

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrorLabel is shown in place of the year when the dataset fails to load.
const ErrorLabel = "Error loading data!"

const (
	hudMargin       = 40.0
	hudSliderHeight = 16.0
	hudToggleSize   = 24.0
	hudToggleWidth  = 160.0
	hudLegendWidth  = 200
	hudLegendHeight = 10
	hudFontSize     = 20.0
	fpsRefresh      = 0.5 // seconds
)

var (
	hudText   = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	hudTrack  = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	hudAccent = color.RGBA{R: 0xfe, G: 0xb2, B: 0x4c, A: 0xff}
)

// hud draws the year label, the year slider, the overlay toggle and the
// color legend on top of the scene.
type hud struct {
	ramp    ColorRamp
	face    *text.GoTextFace
	small   *text.GoTextFace
	legend  *Texture
	showFPS bool

	fpsText  string
	fpsTimer float64
}

func newHUD(ramp ColorRamp, showFPS bool) *hud {
	h := &hud{ramp: ramp, showFPS: showFPS, fpsTimer: fpsRefresh}
	if src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF)); err == nil {
		h.face = &text.GoTextFace{Source: src, Size: hudFontSize}
		h.small = &text.GoTextFace{Source: src, Size: hudFontSize * 0.6}
	}
	return h
}

// sliderRect is the year slider track for a w × h viewport.
func (h *hud) sliderRect(w, ht int) Rect {
	return Rect{
		X:      hudMargin,
		Y:      float64(ht) - hudMargin - hudSliderHeight/2,
		Width:  math.Max(0, float64(w)-2*hudMargin-hudToggleWidth),
		Height: hudSliderHeight,
	}
}

// toggleRect is the overlay visibility checkbox.
func (h *hud) toggleRect(w, ht int) Rect {
	return Rect{
		X:      float64(w) - hudMargin - hudToggleWidth + hudMargin/2,
		Y:      float64(ht) - hudMargin - hudToggleSize/2,
		Width:  hudToggleSize,
		Height: hudToggleSize,
	}
}

// yearAt maps a horizontal slider position to a year in [first, last].
func (h *hud) yearAt(x float64, w, first, last int) int {
	r := h.sliderRect(w, 0)
	if r.Width <= 0 || last <= first {
		return first
	}
	t := clamp01((x - r.X) / r.Width)
	return first + int(math.Round(t*float64(last-first)))
}

// label returns the text shown above the slider.
func (h *hud) label(a *App) string {
	switch {
	case a.LoadError() != nil:
		return ErrorLabel
	case !a.Loaded():
		return "Loading..."
	default:
		return fmt.Sprint(a.Year())
	}
}

func (h *hud) update(dt float64) {
	if !h.showFPS {
		return
	}
	h.fpsTimer += dt
	if h.fpsTimer < fpsRefresh {
		return
	}
	h.fpsTimer = 0
	h.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}

func (h *hud) draw(screen *ebiten.Image, a *App) {
	b := screen.Bounds()
	w, ht := b.Dx(), b.Dy()

	slider := h.sliderRect(w, ht)
	cy := float32(slider.Y + slider.Height/2)
	vector.StrokeLine(screen, float32(slider.X), cy, float32(slider.X+slider.Width), cy, 4, hudTrack, true)
	if first, last := a.YearRange(); a.Loaded() && last > first {
		t := float64(a.Year()-first) / float64(last-first)
		kx := float32(slider.X + t*slider.Width)
		vector.StrokeLine(screen, float32(slider.X), cy, kx, cy, 4, hudAccent, true)
		vector.FillCircle(screen, kx, cy, float32(slider.Height/2), hudText, true)
	}

	toggle := h.toggleRect(w, ht)
	vector.StrokeRect(screen, float32(toggle.X), float32(toggle.Y), float32(toggle.Width), float32(toggle.Height), 2, hudText, true)
	if a.Visible() {
		vector.FillRect(screen, float32(toggle.X+5), float32(toggle.Y+5),
			float32(toggle.Width-10), float32(toggle.Height-10), hudAccent, true)
	}

	if h.face != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(slider.X, slider.Y-hudFontSize-12)
		op.ColorScale.ScaleWithColor(hudText)
		text.Draw(screen, h.label(a), h.face, op)

		op = &text.DrawOptions{}
		op.GeoM.Translate(toggle.X+toggle.Width+8, toggle.Y+2)
		op.ColorScale.ScaleWithColor(hudText)
		text.Draw(screen, "Heatmap", h.face, op)
	}

	h.drawLegend(screen, w)

	if h.showFPS {
		ebitenutil.DebugPrintAt(screen, h.fpsText, 8, 8)
	}
}

// drawLegend draws the ramp in the top right corner with its end values.
func (h *hud) drawLegend(screen *ebiten.Image, w int) {
	if h.legend == nil {
		tex, err := NewTextureFromRaster(h.ramp.Legend(hudLegendWidth, hudLegendHeight))
		if err != nil {
			return
		}
		h.legend = tex
	}
	x := float64(w) - hudMargin - hudLegendWidth
	y := hudMargin / 2
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	screen.DrawImage(h.legend.Image(), op)

	if h.small == nil {
		return
	}
	for _, l := range []struct {
		s  string
		dx float64
	}{
		{fmt.Sprintf("%+.0f°C", h.ramp.Min), 0},
		{fmt.Sprintf("%+.0f°C", h.ramp.Max), hudLegendWidth},
	} {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+l.dx, y+hudLegendHeight+4)
		if l.dx > 0 {
			op.PrimaryAlign = text.AlignEnd
		}
		op.ColorScale.ScaleWithColor(hudText)
		text.Draw(screen, l.s, h.small, op)
	}
}

func (h *hud) dispose() {
	if h.legend != nil {
		h.legend.Dispose()
		h.legend = nil
	}
}
