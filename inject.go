package globe

// syntheticPointerEvent is a queued left-button pointer sample in screen
// coordinates.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
}

// InjectPress queues a press at the given screen coordinates. Each queued
// event is consumed by one Update call.
func (c *OrbitControls) InjectPress(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a move with the button held. Use it between InjectPress
// and InjectRelease to simulate a drag.
func (c *OrbitControls) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a release at the given screen coordinates.
func (c *OrbitControls) InjectRelease(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectClick queues a press followed by a release. Consumes two frames.
func (c *OrbitControls) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2 linearly
// interpolated moves, and release at (toX, toY). Minimum frames is 2, which
// is too short to leave the dead zone; use at least 3 to rotate.
func (c *OrbitControls) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	c.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// Pending returns the number of queued synthetic events.
func (c *OrbitControls) Pending() int {
	return len(c.injectQueue)
}

// processInjectedInput pops one queued event and feeds it through
// processPointer. Returns true if an event was consumed.
func (c *OrbitControls) processInjectedInput(viewportHeight float64) bool {
	if len(c.injectQueue) == 0 {
		return false
	}
	evt := c.injectQueue[0]
	copy(c.injectQueue, c.injectQueue[1:])
	c.injectQueue = c.injectQueue[:len(c.injectQueue)-1]
	c.processPointer(evt.x, evt.y, evt.pressed, viewportHeight)
	return true
}
