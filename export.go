package globe

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// ToNRGBA converts the raster to a straight-alpha image, for PNG encoding.
func ToNRGBA(r Raster) *image.NRGBA {
	return unpremultiply(r.ToTextureData(), r.Width(), r.Height())
}

// EncodePNG writes the raster to w as a PNG with straight alpha.
func EncodePNG(w io.Writer, r Raster) error {
	if r.Width() <= 0 || r.Height() <= 0 {
		return ErrEmptyRaster
	}
	if err := png.Encode(w, ToNRGBA(r)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNG encodes the raster to a PNG file at path.
func WritePNG(path string, r Raster) error {
	if r.Width() <= 0 || r.Height() <= 0 {
		return ErrEmptyRaster
	}
	return writePNG(path, ToNRGBA(r))
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
