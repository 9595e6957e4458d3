package globe

import (
	"log/slog"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestNewScene(t *testing.T) {
	s := NewScene()
	if s.Root() == nil {
		t.Fatal("Root() should not be nil")
	}
	if s.Root().Type != NodeTypeContainer {
		t.Errorf("Root type = %d, want container", s.Root().Type)
	}
	if s.Camera() == nil {
		t.Fatal("Camera() should not be nil")
	}
	if !approxEqual(s.Camera().Distance, GlobeRadius*2.5, 1e-9) {
		t.Errorf("camera distance = %f, want %f", s.Camera().Distance, GlobeRadius*2.5)
	}
	if s.Logger() == nil {
		t.Error("Logger() should not be nil")
	}
}

func TestSceneAttachDetach(t *testing.T) {
	s := NewScene()
	a := NewContainer("a")
	b := NewContainer("b")
	s.Attach(a)
	s.Attach(b)
	if !s.Contains(a) || !s.Contains(b) {
		t.Fatal("attached nodes should be contained")
	}
	if s.Root().ChildAt(1) != b {
		t.Error("later attachments draw on top")
	}
	s.Detach(a)
	if s.Contains(a) {
		t.Error("detached node still contained")
	}
	s.Detach(a)
	if s.Contains(nil) || s.Contains(s.Root()) {
		t.Error("Contains should be false for nil and the root itself")
	}
}

func TestSceneSetLogger(t *testing.T) {
	s := NewScene()
	l := slog.New(slog.DiscardHandler)
	s.SetLogger(l)
	if s.Logger() != l {
		t.Error("SetLogger did not take")
	}
	s.SetLogger(nil)
	if s.Logger() != slog.Default() {
		t.Error("SetLogger(nil) should restore slog.Default()")
	}
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	s.SetDebugMode(true)
	if !s.debug || !globalDebug {
		t.Error("debug mode should be on")
	}
	s.SetDebugMode(false)
	if s.debug || globalDebug {
		t.Error("debug mode should be off")
	}
}

func TestSceneUpdateTickRunsCallbacks(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	s.Attach(parent)

	var got []string
	parent.OnUpdate = func(dt float64) { got = append(got, "parent") }
	child.OnUpdate = func(dt float64) {
		if dt != 0.5 {
			t.Errorf("dt = %f, want 0.5", dt)
		}
		got = append(got, "child")
	}
	s.updateTick(0.5)
	if len(got) != 2 || got[0] != "parent" || got[1] != "child" {
		t.Errorf("callback order = %v, want [parent child]", got)
	}
}

func TestSceneUpdateTickAdvancesCamera(t *testing.T) {
	s := NewScene()
	s.Camera().Damping = 0.5
	s.Camera().Rotate(1, 0)
	s.updateTick(1.0 / 60)
	if !approxEqual(s.Camera().Azimuth, 0.5, 1e-9) {
		t.Errorf("Azimuth = %f, want 0.5", s.Camera().Azimuth)
	}
}

func TestSceneUpdateFunc(t *testing.T) {
	s := NewScene()
	called := 0
	s.SetUpdateFunc(func() error {
		called++
		return nil
	})
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if called != 1 {
		t.Errorf("update func called %d times, want 1", called)
	}
}

func TestSceneDrawRecordsSize(t *testing.T) {
	s := NewScene()
	s.ClearColor = Color{0.1, 0.1, 0.1, 1}
	s.Attach(NewSphere("globe", NewSphereGeometry(GlobeRadius, 16, 8), &Material{Color: ColorWhite, Opacity: 1, Lit: true}))
	s.Attach(NewStarField("stars", 50, 500, 1))

	screen := ebiten.NewImage(320, 240)
	s.Draw(screen)
	if w, h := s.Size(); w != 320 || h != 240 {
		t.Errorf("Size = %dx%d, want 320x240", w, h)
	}
}

func TestSceneDrawSkipsHidden(t *testing.T) {
	s := NewScene()
	n := NewSphere("hidden", NewSphereGeometry(GlobeRadius, 8, 4), &Material{Color: ColorWhite, Opacity: 1})
	n.Visible = false
	s.Attach(n)

	var stats debugStats
	view := s.Camera().view(320, 240)
	s.drawNode(ebiten.NewImage(320, 240), s.Root(), &view, 1, &stats)
	if stats.drawCallCount != 0 {
		t.Errorf("draw calls = %d, want 0", stats.drawCallCount)
	}
}

func TestSceneDrawCountsTriangles(t *testing.T) {
	s := NewScene()
	s.Attach(NewSphere("globe", NewSphereGeometry(GlobeRadius, 16, 8), &Material{Color: ColorWhite, Opacity: 1}))

	var stats debugStats
	view := s.Camera().view(320, 240)
	s.drawNode(ebiten.NewImage(320, 240), s.Root(), &view, 1, &stats)
	if stats.drawCallCount != 1 {
		t.Errorf("draw calls = %d, want 1", stats.drawCallCount)
	}
	if stats.triangleCount == 0 {
		t.Error("expected some triangles")
	}
	if stats.nodeCount != 2 {
		t.Errorf("nodes = %d, want 2", stats.nodeCount)
	}
}

func TestSceneDrawPremultipliedVertexColors(t *testing.T) {
	s := NewScene()
	n := NewSphere("overlay", NewSphereGeometry(GlobeRadius, 16, 8), &Material{Color: ColorWhite, Opacity: 0.5})
	s.Attach(n)
	s.Attach(NewStarField("stars", 50, 500, 1))

	var stats debugStats
	view := s.Camera().view(320, 240)
	s.drawNode(ebiten.NewImage(320, 240), s.Root(), &view, 1, &stats)
	if stats.drawCallCount != 2 {
		t.Fatalf("draw calls = %d, want 2", stats.drawCallCount)
	}
	if s.triOp.ColorScaleMode != ebiten.ColorScaleModePremultipliedAlpha {
		t.Errorf("ColorScaleMode = %v, want premultiplied alpha", s.triOp.ColorScaleMode)
	}

	// White at half opacity must reach the GPU as (0.5, 0.5, 0.5, 0.5) so it
	// blends to mid gray over black.
	verts, idx := n.Mesh.buildFrame(&view, 0, 1, s.Light)
	if len(idx) == 0 {
		t.Fatal("no visible triangles")
	}
	v := verts[idx[0]]
	if !approxEqual(float64(v.ColorA), 0.5, 1e-6) || !approxEqual(float64(v.ColorR), 0.5, 1e-6) {
		t.Errorf("vertex color = (%f, %f), want (0.5, 0.5)", v.ColorR, v.ColorA)
	}
}

func TestNewStarFieldDeterministic(t *testing.T) {
	a := NewStarField("a", 100, 10, 42)
	b := NewStarField("b", 100, 10, 42)
	if len(a.Points.Positions) != 100 {
		t.Fatalf("len = %d, want 100", len(a.Points.Positions))
	}
	for i := range a.Points.Positions {
		if a.Points.Positions[i] != b.Points.Positions[i] {
			t.Fatalf("star %d differs between equal seeds", i)
		}
		p := a.Points.Positions[i]
		if p.X < -10 || p.X > 10 || p.Y < -10 || p.Y > 10 || p.Z < -10 || p.Z > 10 {
			t.Errorf("star %d out of bounds: %v", i, p)
		}
	}
	if n := NewStarField("c", -5, 10, 1); len(n.Points.Positions) != 0 {
		t.Error("negative count should give an empty field")
	}
}
