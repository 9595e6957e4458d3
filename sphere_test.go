package globe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

func TestSphereGeometryCounts(t *testing.T) {
	g := NewSphereGeometry(1, 16, 8)
	if g.VertexCount() != 17*9 {
		t.Errorf("VertexCount = %d, want %d", g.VertexCount(), 17*9)
	}
	// Pole rows contribute one triangle per quad, the rest two.
	if want := 16 * (2*8 - 2); g.TriangleCount() != want {
		t.Errorf("TriangleCount = %d, want %d", g.TriangleCount(), want)
	}
}

func TestSphereGeometryClampsSegments(t *testing.T) {
	g := NewSphereGeometry(1, 0, 0)
	if g.WidthSegments != 3 || g.HeightSegments != 2 {
		t.Errorf("segments = %dx%d, want 3x2", g.WidthSegments, g.HeightSegments)
	}
	g = NewSphereGeometry(1, 1000, 1000)
	if g.WidthSegments != maxSphereSegments || g.HeightSegments != maxSphereSegments {
		t.Errorf("segments = %dx%d, want %d", g.WidthSegments, g.HeightSegments, maxSphereSegments)
	}
}

func TestSphereGeometryLayout(t *testing.T) {
	g := NewSphereGeometry(1, 4, 2)
	for i, n := range g.normals {
		if !approxEqual(n.Norm(), 1, 1e-9) {
			t.Errorf("normal %d not unit: %v", i, n)
		}
	}
	if n := g.normals[0]; !approxEqual(n.Y, 1, 1e-9) {
		t.Errorf("first vertex = %v, want north pole", n)
	}
	// Row 1 is the equator; column 2 is lon 0, which faces +Z.
	eq := g.normals[1*5+2]
	if !approxEqual(eq.Z, 1, 1e-9) {
		t.Errorf("equator lon 0 = %v, want +Z", eq)
	}
	if uv := g.uvs[1*5+2]; uv.X != 0.5 || uv.Y != 0.5 {
		t.Errorf("uv = %v, want (0.5, 0.5)", uv)
	}
	// The seam columns coincide.
	left, right := g.normals[1*5], g.normals[1*5+4]
	if left.Sub(right).Norm() > 1e-9 {
		t.Errorf("seam vertices differ: %v vs %v", left, right)
	}
}

func TestSphereGeometryDispose(t *testing.T) {
	g := NewSphereGeometry(1, 8, 4)
	g.Dispose()
	g.Dispose()
	if !g.IsDisposed() || g.VertexCount() != 0 {
		t.Error("Dispose should drop the buffers")
	}
}

func TestMaterialDispose(t *testing.T) {
	tex := NewTextureFromImage(ebiten.NewImage(4, 4))
	m := NewMaterial(tex)
	if m.Opacity != 1 || !m.Lit || m.Color != ColorWhite {
		t.Errorf("NewMaterial = %+v", m)
	}
	m.Dispose()
	if !m.IsDisposed() || m.Map != nil {
		t.Error("Dispose should drop the map")
	}
	if tex.IsDisposed() {
		t.Error("material must not free its texture")
	}
}

func TestLightShade(t *testing.T) {
	l := DefaultLight()
	if facing := l.shade(l.Direction); facing != (colorful.Color{R: 1, G: 1, B: 1}) {
		t.Errorf("shade toward light = %+v, want white (clamped)", facing)
	}

	// Facing away, only the ambient and hemisphere terms remain.
	n := l.Direction.Mul(-1)
	hemi := l.Ground.BlendRgb(l.Sky, 0.5*n.Y+0.5)
	away := l.shade(n)
	want := colorful.Color{
		R: l.Ambient + l.Hemisphere*hemi.R,
		G: l.Ambient + l.Hemisphere*hemi.G,
		B: l.Ambient + l.Hemisphere*hemi.B,
	}
	if !approxEqual(away.R, want.R, 1e-9) || !approxEqual(away.G, want.G, 1e-9) || !approxEqual(away.B, want.B, 1e-9) {
		t.Errorf("shade away from light = %+v, want %+v", away, want)
	}
	if away.B >= away.R {
		t.Errorf("lower hemisphere should be tinted by the ochre ground, got %+v", away)
	}
}

func TestLightShadeHemisphere(t *testing.T) {
	l := Light{
		Sky:        colorful.Color{R: 0.2, G: 0.4, B: 0.6},
		Ground:     colorful.Color{R: 0.6, G: 0.4, B: 0.2},
		Hemisphere: 1,
	}
	up := l.shade(r3.Vector{Y: 1})
	if !approxEqual(up.R, 0.2, 1e-9) || !approxEqual(up.B, 0.6, 1e-9) {
		t.Errorf("shade up = %+v, want sky color", up)
	}
	down := l.shade(r3.Vector{Y: -1})
	if !approxEqual(down.R, 0.6, 1e-9) || !approxEqual(down.B, 0.2, 1e-9) {
		t.Errorf("shade down = %+v, want ground color", down)
	}
	side := l.shade(r3.Vector{X: 1})
	if !approxEqual(side.R, 0.4, 1e-9) || !approxEqual(side.B, 0.4, 1e-9) {
		t.Errorf("shade at equator = %+v, want even blend", side)
	}
}

func TestBuildFrameCullsBackFaces(t *testing.T) {
	g := NewSphereGeometry(50, 16, 8)
	mesh := &SphereMesh{Geometry: g, Material: &Material{Color: ColorWhite, Opacity: 0.5}}
	cam := NewOrbitCamera(125)
	v := cam.view(800, 600)

	verts, idx := mesh.buildFrame(&v, 0, 0.5, DefaultLight())
	if len(verts) != g.VertexCount() {
		t.Fatalf("len(verts) = %d, want %d", len(verts), g.VertexCount())
	}
	tris := len(idx) / 3
	if tris == 0 || tris >= g.TriangleCount() {
		t.Errorf("front-facing triangles = %d of %d", tris, g.TriangleCount())
	}

	// Equator at lon 0 faces the camera and lands on screen center.
	center := verts[4*17+8]
	if !approxEqual(float64(center.DstX), 400, 1e-3) || !approxEqual(float64(center.DstY), 300, 1e-3) {
		t.Errorf("lon 0 vertex at (%f, %f), want (400, 300)", center.DstX, center.DstY)
	}
	if !approxEqual(float64(center.ColorA), 0.25, 1e-6) {
		t.Errorf("ColorA = %f, want 0.25", center.ColorA)
	}
}

func TestBuildFrameRotation(t *testing.T) {
	g := NewSphereGeometry(50, 16, 8)
	mesh := &SphereMesh{Geometry: g, Material: &Material{Color: ColorWhite, Opacity: 1}}
	cam := NewOrbitCamera(125)
	v := cam.view(800, 600)

	verts, _ := mesh.buildFrame(&v, math.Pi/2, 1, DefaultLight())
	// Spun a quarter turn, lon -90 now faces the camera.
	vtx := verts[4*17+4]
	if !approxEqual(float64(vtx.DstX), 400, 1e-3) {
		t.Errorf("lon -90 vertex x = %f, want 400", vtx.DstX)
	}
}

func TestBuildFrameDisposed(t *testing.T) {
	g := NewSphereGeometry(50, 8, 4)
	mesh := &SphereMesh{Geometry: g, Material: &Material{Opacity: 1}}
	mesh.Dispose()
	cam := NewOrbitCamera(125)
	v := cam.view(800, 600)
	if verts, idx := mesh.buildFrame(&v, 0, 1, DefaultLight()); verts != nil || idx != nil {
		t.Error("disposed mesh should produce nothing")
	}
}
