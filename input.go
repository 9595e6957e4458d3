package globe

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	defaultDragDeadZone = 4.0 // pixels
	doubleClickTicks    = 20
	zoomBase            = 0.95
)

// pointerState tracks the mouse between press and release.
type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool
}

// OrbitControls turns pointer input into OrbitCamera motion: dragging orbits,
// the wheel dollies, and a press/release without movement is a click.
type OrbitControls struct {
	camera *OrbitCamera

	// RotateSpeed scales drag rotation. One full viewport height of drag
	// turns the camera a full circle at speed 1.
	RotateSpeed float64
	// ZoomSpeed scales wheel dolly.
	ZoomSpeed float64
	// DragDeadZone is how far the pointer must travel before a press
	// becomes a drag.
	DragDeadZone float64
	// Enabled gates all camera motion. Clicks still fire when disabled.
	Enabled bool

	// OnClick fires on a press and release without a drag.
	OnClick func(x, y float64)
	// OnDoubleClick fires instead of the second OnClick when two clicks land
	// close together in time and space.
	OnDoubleClick func(x, y float64)

	ptr        pointerState
	tick       int
	lastClick  int
	lastClickX float64
	lastClickY float64

	injectQueue []syntheticPointerEvent
}

// NewOrbitControls creates enabled controls for cam.
func NewOrbitControls(cam *OrbitCamera) *OrbitControls {
	return &OrbitControls{
		camera:       cam,
		RotateSpeed:  1,
		ZoomSpeed:    1,
		DragDeadZone: defaultDragDeadZone,
		Enabled:      true,
		lastClick:    -doubleClickTicks - 1,
	}
}

// Dragging reports whether a drag is in progress.
func (c *OrbitControls) Dragging() bool {
	return c.ptr.dragging
}

// Update reads one frame of input for a viewport of the given height. A
// queued synthetic event replaces real mouse input for the frame.
func (c *OrbitControls) Update(viewportHeight int) {
	c.tick++
	h := float64(viewportHeight)
	if c.processInjectedInput(h) {
		return
	}
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	c.processPointer(float64(mx), float64(my), pressed, h)

	if _, wy := ebiten.Wheel(); wy != 0 {
		c.Zoom(wy)
	}
}

// Zoom dollies the camera. Positive steps move closer.
func (c *OrbitControls) Zoom(steps float64) {
	if !c.Enabled || c.camera == nil {
		return
	}
	c.camera.Dolly(math.Pow(zoomBase, steps*c.ZoomSpeed))
}

// processPointer advances the pointer state machine by one sample.
func (c *OrbitControls) processPointer(x, y float64, pressed bool, viewportHeight float64) {
	p := &c.ptr
	switch {
	case pressed && !p.down:
		*p = pointerState{down: true, startX: x, startY: y, lastX: x, lastY: y}

	case pressed && p.down:
		if !p.dragging {
			if math.Hypot(x-p.startX, y-p.startY) < c.DragDeadZone {
				return
			}
			p.dragging = true
		}
		dx, dy := x-p.lastX, y-p.lastY
		p.lastX, p.lastY = x, y
		if c.Enabled && c.camera != nil && viewportHeight > 0 {
			k := 2 * math.Pi * c.RotateSpeed / viewportHeight
			c.camera.Rotate(-dx*k, -dy*k)
		}

	case !pressed && p.down:
		wasDrag := p.dragging
		*p = pointerState{}
		if !wasDrag {
			c.click(x, y)
		}
	}
}

func (c *OrbitControls) click(x, y float64) {
	near := math.Hypot(x-c.lastClickX, y-c.lastClickY) < c.DragDeadZone
	if c.tick-c.lastClick <= doubleClickTicks && near {
		c.lastClick = -doubleClickTicks - 1
		if c.OnDoubleClick != nil {
			c.OnDoubleClick(x, y)
		}
		return
	}
	c.lastClick = c.tick
	c.lastClickX, c.lastClickY = x, y
	if c.OnClick != nil {
		c.OnClick(x, y)
	}
}
