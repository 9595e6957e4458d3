package globe

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrEmptyRaster is returned when a texture is requested for a raster with
// no pixels.
var ErrEmptyRaster = errors.New("raster has no pixels")

// Texture is a GPU image owned by the caller and released explicitly with
// Dispose. Materials reference textures; they never free them implicitly.
type Texture struct {
	image *ebiten.Image
	w, h  int
}

// NewTextureFromRaster uploads a raster's pixels into a new GPU image.
func NewTextureFromRaster(r Raster) (*Texture, error) {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyRaster
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(r.ToTextureData())
	return &Texture{image: img, w: w, h: h}, nil
}

// NewTextureFromImage wraps an existing image. The Texture takes ownership
// and deallocates img on Dispose.
func NewTextureFromImage(img *ebiten.Image) *Texture {
	b := img.Bounds()
	return &Texture{image: img, w: b.Dx(), h: b.Dy()}
}

// Image returns the underlying *ebiten.Image, or nil once disposed.
func (t *Texture) Image() *ebiten.Image {
	return t.image
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	return t.w
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	return t.h
}

// IsDisposed reports whether Dispose has been called.
func (t *Texture) IsDisposed() bool {
	return t.image == nil
}

// Dispose deallocates the underlying image. Calling it again is a no-op.
func (t *Texture) Dispose() {
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
}
