package globe

import (
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is the top-level object that owns the node tree, the orbit camera and
// the light. Nodes draw in tree order, so later siblings appear on top.
type Scene struct {
	root   *Node
	camera *OrbitCamera
	logger *slog.Logger
	debug  bool

	// ClearColor fills the screen before the tree is drawn. A zero alpha
	// leaves the screen untouched.
	ClearColor Color
	// Light shades materials with Lit set.
	Light Light
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	updateFunc      func() error
	screenshotQueue []string

	width, height int

	triOp ebiten.DrawTrianglesOptions
}

// NewScene creates a new scene with a pre-created root container and a camera
// at 2.5 globe radii.
func NewScene() *Scene {
	s := &Scene{
		root:          NewContainer("root"),
		camera:        NewOrbitCamera(GlobeRadius * 2.5),
		logger:        slog.Default(),
		Light:         DefaultLight(),
		ScreenshotDir: "screenshots",
	}
	// Sphere and point vertex colors are premultiplied by alpha.
	s.triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Camera returns the scene camera.
func (s *Scene) Camera() *OrbitCamera {
	return s.camera
}

// SetCamera replaces the scene camera.
func (s *Scene) SetCamera(c *OrbitCamera) {
	s.camera = c
}

// Attach adds n to the root so it draws above everything attached before it.
func (s *Scene) Attach(n *Node) {
	s.root.AddChild(n)
}

// Detach removes n from the tree. No-op if n is not attached.
func (s *Scene) Detach(n *Node) {
	n.RemoveFromParent()
}

// Contains reports whether n is attached somewhere under the root.
func (s *Scene) Contains(n *Node) bool {
	return n != nil && n != s.root && isAncestor(s.root, n)
}

// Logger returns the scene logger.
func (s *Scene) Logger() *slog.Logger {
	return s.logger
}

// SetLogger replaces the scene logger. A nil logger restores slog.Default().
func (s *Scene) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.logger = l
}

// SetUpdateFunc sets a callback run at the end of every Update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// Size returns the size of the last drawn frame.
func (s *Scene) Size() (w, h int) {
	return s.width, s.height
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// Update runs node callbacks, advances the camera and calls the update func.
func (s *Scene) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	s.updateTick(dt)
	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

func (s *Scene) updateTick(dt float64) {
	updateNodes(s.root, dt)
	if s.camera != nil {
		s.camera.update(float32(dt))
	}
}

func updateNodes(n *Node, dt float64) {
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
	}
	// OnUpdate may detach children; iterate over a stable snapshot length.
	for i := 0; i < len(n.children); i++ {
		updateNodes(n.children[i], dt)
	}
}

// Draw clears the screen and draws every visible node in tree order.
func (s *Scene) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	s.width, s.height = b.Dx(), b.Dy()
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	if s.camera == nil {
		return
	}

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	view := s.camera.view(float64(s.width), float64(s.height))
	s.drawNode(screen, s.root, &view, 1, &stats)

	if s.debug {
		stats.drawTime = time.Since(t0)
		s.debugLog(stats)
	}
	s.flushScreenshots(screen)
}

func (s *Scene) drawNode(screen *ebiten.Image, n *Node, view *viewTransform, parentAlpha float64, stats *debugStats) {
	if !n.Visible {
		return
	}
	alpha := parentAlpha * n.Alpha
	if alpha <= 0 {
		return
	}
	stats.nodeCount++

	switch n.Type {
	case NodeTypeSphere:
		if n.Mesh != nil {
			verts, idx := n.Mesh.buildFrame(view, n.RotationY, alpha, s.Light)
			if len(idx) > 0 {
				img := ensureWhitePixel()
				if m := n.Mesh.Material.Map; m != nil && !m.IsDisposed() {
					img = m.Image()
				}
				s.triOp.Blend = n.Mesh.Material.BlendMode.EbitenBlend()
				s.triOp.Filter = ebiten.FilterLinear
				s.triOp.Address = ebiten.AddressRepeat
				screen.DrawTriangles(verts, idx, img, &s.triOp)
				stats.triangleCount += len(idx) / 3
				stats.drawCallCount++
			}
		}
	case NodeTypePoints:
		if n.Points != nil {
			verts, idx := n.Points.buildFrame(view, n.RotationY, alpha)
			if len(idx) > 0 {
				s.triOp.Blend = n.Points.BlendMode.EbitenBlend()
				s.triOp.Filter = ebiten.FilterNearest
				s.triOp.Address = ebiten.AddressUnsafe
				screen.DrawTriangles(verts, idx, ensureWhitePixel(), &s.triOp)
				stats.triangleCount += len(idx) / 3
				stats.drawCallCount++
			}
		}
	}

	for _, child := range n.children {
		s.drawNode(screen, child, view, alpha, stats)
	}
}

// --- White pixel singleton; the scene graph is single-threaded ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by untextured materials and point clouds.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}
