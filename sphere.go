package globe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// maxSphereSegments keeps (segments+1)² vertices addressable by uint16 indices.
const maxSphereSegments = 254

// SphereGeometry is a UV sphere: latitude rings from the north pole down,
// longitude columns from -180° to 180°. The first and last columns coincide
// so the texture wraps without a gap.
type SphereGeometry struct {
	Radius         float64
	WidthSegments  int
	HeightSegments int

	normals  []r3.Vector // unit positions, world frame
	uvs      []Vec2      // normalized texture coordinates
	indices  []uint16
	disposed bool
}

// NewSphereGeometry tessellates a sphere. Segment counts are clamped to
// [3, 254] horizontally and [2, 254] vertically.
func NewSphereGeometry(radius float64, widthSegments, heightSegments int) *SphereGeometry {
	ws := min(max(widthSegments, 3), maxSphereSegments)
	hs := min(max(heightSegments, 2), maxSphereSegments)

	g := &SphereGeometry{
		Radius:         radius,
		WidthSegments:  ws,
		HeightSegments: hs,
		normals:        make([]r3.Vector, 0, (ws+1)*(hs+1)),
		uvs:            make([]Vec2, 0, (ws+1)*(hs+1)),
	}
	for iy := 0; iy <= hs; iy++ {
		v := float64(iy) / float64(hs)
		lat := 90 - v*180
		for ix := 0; ix <= ws; ix++ {
			u := float64(ix) / float64(ws)
			lon := u*360 - 180
			p := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
			g.normals = append(g.normals, s2ToWorld(p))
			g.uvs = append(g.uvs, Vec2{X: u, Y: v})
		}
	}

	stride := ws + 1
	for iy := 0; iy < hs; iy++ {
		for ix := 0; ix < ws; ix++ {
			a := uint16(iy*stride + ix)
			b := uint16((iy+1)*stride + ix)
			c := b + 1
			d := a + 1
			// Pole rows collapse to a point; skip their degenerate halves.
			if iy != 0 {
				g.indices = append(g.indices, a, b, d)
			}
			if iy != hs-1 {
				g.indices = append(g.indices, b, c, d)
			}
		}
	}
	return g
}

// VertexCount returns the number of vertices.
func (g *SphereGeometry) VertexCount() int { return len(g.normals) }

// TriangleCount returns the number of triangles.
func (g *SphereGeometry) TriangleCount() int { return len(g.indices) / 3 }

// IsDisposed reports whether Dispose has been called.
func (g *SphereGeometry) IsDisposed() bool { return g.disposed }

// Dispose drops the vertex and index buffers. Calling it again is a no-op.
func (g *SphereGeometry) Dispose() {
	g.disposed = true
	g.normals = nil
	g.uvs = nil
	g.indices = nil
}

// Material describes how a sphere is shaded.
type Material struct {
	// Map is sampled with the sphere's UVs. A nil Map draws Color only.
	Map *Texture
	// Color tints the map (or fills the sphere when Map is nil).
	Color Color
	// Opacity multiplies the final alpha.
	Opacity float64
	// Lit applies the scene light. Unlit materials ignore it.
	Lit bool
	// BlendMode selects the compositing operation.
	BlendMode BlendMode

	disposed bool
}

// NewMaterial returns an opaque, lit, white material sampling m.
func NewMaterial(m *Texture) *Material {
	return &Material{Map: m, Color: ColorWhite, Opacity: 1, Lit: true}
}

// IsDisposed reports whether Dispose has been called.
func (m *Material) IsDisposed() bool { return m.disposed }

// Dispose releases the material and drops its texture reference. The
// texture itself stays alive. Calling it again is a no-op.
func (m *Material) Dispose() {
	m.disposed = true
	m.Map = nil
}

// Light combines an ambient term, a sky/ground hemisphere light and a
// directional light. Lit materials are tinted by the sum.
type Light struct {
	Ambient float64
	// Sky and Ground are the hemisphere colors for normals pointing up and
	// down; Hemisphere scales their blend.
	Sky, Ground colorful.Color
	Hemisphere  float64
	// Direction points from the surface toward the directional light.
	Direction   r3.Vector
	Directional float64
}

// DefaultLight is a bright ambient fill, a pale-blue sky over an ochre ground
// and a sun from the upper right front.
func DefaultLight() Light {
	return Light{
		Ambient:     0.7,
		Sky:         colorful.Color{R: 0xb1 / 255.0, G: 0xe1 / 255.0, B: 1},
		Ground:      colorful.Color{R: 0xb9 / 255.0, G: 0x7a / 255.0, B: 0x20 / 255.0},
		Hemisphere:  0.5,
		Direction:   r3.Vector{X: 1, Y: 1, Z: 1}.Normalize(),
		Directional: 0.7,
	}
}

// shade returns the per-channel light factor for a unit surface normal,
// clamped to 1.
func (l Light) shade(n r3.Vector) colorful.Color {
	hemi := l.Ground.BlendRgb(l.Sky, 0.5*n.Y+0.5)
	d := l.Ambient + l.Directional*math.Max(0, n.Dot(l.Direction))
	return colorful.Color{
		R: math.Min(1, d+l.Hemisphere*hemi.R),
		G: math.Min(1, d+l.Hemisphere*hemi.G),
		B: math.Min(1, d+l.Hemisphere*hemi.B),
	}
}

// SphereMesh pairs a geometry with a material and keeps per-frame buffers.
type SphereMesh struct {
	Geometry *SphereGeometry
	Material *Material

	world   []r3.Vector
	visible []bool
	verts   []ebiten.Vertex
	idx     []uint16
}

// Dispose releases the geometry and material. The material's texture is not
// freed.
func (m *SphereMesh) Dispose() {
	if m.Geometry != nil {
		m.Geometry.Dispose()
	}
	if m.Material != nil {
		m.Material.Dispose()
	}
}

// buildFrame projects the sphere for one frame and returns vertices plus the
// indices of front-facing triangles. The returned slices are reused between
// frames.
func (m *SphereMesh) buildFrame(v *viewTransform, rotationY, alpha float64, light Light) ([]ebiten.Vertex, []uint16) {
	g, mat := m.Geometry, m.Material
	if g == nil || mat == nil || g.disposed || mat.disposed {
		return nil, nil
	}
	n := len(g.normals)
	m.ensureBuffers(n)

	texW, texH := 1.0, 1.0
	if mat.Map != nil && !mat.Map.IsDisposed() {
		texW, texH = float64(mat.Map.Width()), float64(mat.Map.Height())
	}
	a := mat.Color.A * mat.Opacity * alpha

	for i, normal := range g.normals {
		rn := rotateY(normal, rotationY)
		p := rn.Mul(g.Radius)
		m.world[i] = p
		sx, sy, _, ok := v.project(p)
		m.visible[i] = ok

		shade := colorful.Color{R: 1, G: 1, B: 1}
		if mat.Lit {
			shade = light.shade(rn)
		}
		uv := g.uvs[i]
		srcX, srcY := uv.X*texW, uv.Y*texH
		if mat.Map == nil {
			srcX, srcY = 0.5, 0.5
		}
		m.verts[i] = ebiten.Vertex{
			DstX:   float32(sx),
			DstY:   float32(sy),
			SrcX:   float32(srcX),
			SrcY:   float32(srcY),
			ColorR: float32(mat.Color.R * shade.R * a),
			ColorG: float32(mat.Color.G * shade.G * a),
			ColorB: float32(mat.Color.B * shade.B * a),
			ColorA: float32(a),
		}
	}

	m.idx = m.idx[:0]
	for t := 0; t+2 < len(g.indices); t += 3 {
		i0, i1, i2 := g.indices[t], g.indices[t+1], g.indices[t+2]
		if !m.visible[i0] || !m.visible[i1] || !m.visible[i2] {
			continue
		}
		// The outward normal of a sphere at the origin is its centroid
		// direction; keep triangles that face the camera.
		centroid := m.world[i0].Add(m.world[i1]).Add(m.world[i2]).Mul(1.0 / 3)
		if v.pos.Sub(centroid).Dot(centroid) <= 0 {
			continue
		}
		m.idx = append(m.idx, i0, i1, i2)
	}
	return m.verts, m.idx
}

// ensureBuffers grows the per-frame buffers to n vertices using a
// high-water-mark strategy (never shrinks).
func (m *SphereMesh) ensureBuffers(n int) {
	if cap(m.world) < n {
		m.world = make([]r3.Vector, n)
		m.visible = make([]bool, n)
		m.verts = make([]ebiten.Vertex, n)
	}
	m.world = m.world[:n]
	m.visible = m.visible[:n]
	m.verts = m.verts[:n]
}
