package globe

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Heatmap and globe constants. Together they define the look of the overlay:
// changing any of them changes every rendered raster.
const (
	// MinAnomaly and MaxAnomaly bound the color ramp. Values outside the range
	// clamp to the first or last palette color.
	MinAnomaly = -2.0
	MaxAnomaly = 2.0

	// HeatmapResolution is the default raster width. The height is always half.
	HeatmapResolution = 2048

	// StampRadiusFraction scales the stamp radius with the raster width so
	// blobs keep their proportion at any resolution.
	StampRadiusFraction = 0.03
	// StampFalloff multiplies the stamp radius to get the distance at which a
	// stamp becomes fully transparent.
	StampFalloff = 1.5
	// StampAlpha is the opacity applied to every stamp.
	StampAlpha = 0.5
	// BlurRadius is the standard deviation, in pixels, of the final blur.
	BlurRadius = 1.2

	// SeamPadding widens the horizontal mapping so the antimeridian seam is
	// covered when the raster wraps onto a sphere.
	SeamPadding = 3.0

	// GlobeRadius is the radius of the base globe in world units.
	GlobeRadius = 50.0
	// OverlayRadiusOffset lifts the overlay sphere above the globe surface.
	OverlayRadiusOffset = 0.2
	// OverlayOpacity is the material opacity of the heatmap overlay.
	OverlayOpacity = 0.8
	// SphereSegments is the default tessellation of globe and overlay spheres.
	SphereSegments = 64
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for screen positions and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                     // additive / lighter
	BlendNone                    // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeSphere                    // textured sphere rendered via DrawTriangles
	NodeTypePoints                    // point cloud (star field)
)

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
