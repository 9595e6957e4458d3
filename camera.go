package globe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// minPolar keeps the camera off the poles, where the view basis degenerates.
const minPolar = 1e-3

var worldUp = r3.Vector{Y: 1}

// flyAnim holds active fly-to tweens for camera azimuth and polar angle.
type flyAnim struct {
	tweenAz    *gween.Tween
	tweenPolar *gween.Tween
	doneAz     bool
	donePolar  bool
}

// OrbitCamera orbits the world origin on a sphere of radius Distance. At
// Azimuth 0 and Polar π/2 it sits on the +Z axis looking toward -Z.
type OrbitCamera struct {
	// Distance is the orbit radius, clamped to [MinDistance, MaxDistance].
	Distance    float64
	MinDistance float64
	MaxDistance float64
	// Azimuth is the angle about +Y in radians.
	Azimuth float64
	// Polar is the angle from +Y in radians (π/2 = equator).
	Polar float64
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Near is the near clipping distance.
	Near float64
	// Damping is the fraction of queued rotation applied each tick. The rest
	// carries over, which gives the orbit its inertia. Zero applies rotation
	// immediately.
	Damping float64

	velAzimuth float64
	velPolar   float64

	fly *flyAnim
}

// NewOrbitCamera creates a camera on the +Z axis at the given distance.
func NewOrbitCamera(distance float64) *OrbitCamera {
	return &OrbitCamera{
		Distance:    distance,
		MinDistance: 0,
		MaxDistance: math.Inf(1),
		Polar:       math.Pi / 2,
		FOV:         75,
		Near:        0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() r3.Vector {
	sinP, cosP := math.Sincos(c.Polar)
	sinA, cosA := math.Sincos(c.Azimuth)
	return r3.Vector{
		X: c.Distance * sinP * sinA,
		Y: c.Distance * cosP,
		Z: c.Distance * sinP * cosA,
	}
}

// basis returns the camera's right, up and forward unit vectors.
func (c *OrbitCamera) basis() (right, up, forward r3.Vector) {
	pos := c.Position()
	forward = pos.Mul(-1).Normalize()
	right = forward.Cross(worldUp).Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

// focal returns the focal length in pixels for a viewport of height h.
func (c *OrbitCamera) focal(h float64) float64 {
	return (h / 2) / math.Tan(c.FOV*math.Pi/360)
}

// viewTransform caches the per-frame projection state.
type viewTransform struct {
	pos, right, up, forward r3.Vector
	f, cx, cy, near         float64
}

func (c *OrbitCamera) view(w, h float64) viewTransform {
	right, up, forward := c.basis()
	return viewTransform{
		pos:     c.Position(),
		right:   right,
		up:      up,
		forward: forward,
		f:       c.focal(h),
		cx:      w / 2,
		cy:      h / 2,
		near:    c.Near,
	}
}

// project maps a world point to screen coordinates. ok is false for points
// at or behind the near plane.
func (v *viewTransform) project(p r3.Vector) (sx, sy, depth float64, ok bool) {
	d := p.Sub(v.pos)
	z := d.Dot(v.forward)
	if z <= v.near {
		return 0, 0, z, false
	}
	sx = v.cx + d.Dot(v.right)*v.f/z
	sy = v.cy - d.Dot(v.up)*v.f/z
	return sx, sy, z, true
}

// Project maps a world point to screen coordinates for a viewport of size
// w × h. ok is false for points behind the camera.
func (c *OrbitCamera) Project(p r3.Vector, w, h float64) (sx, sy float64, ok bool) {
	v := c.view(w, h)
	sx, sy, _, ok = v.project(p)
	return sx, sy, ok
}

// Rotate queues an orbit rotation in radians. With damping enabled the
// rotation is spread over the following ticks.
func (c *OrbitCamera) Rotate(dAzimuth, dPolar float64) {
	c.fly = nil
	c.velAzimuth += dAzimuth
	c.velPolar += dPolar
	if c.Damping <= 0 {
		c.applyRotation(1)
	}
}

// Dolly scales the orbit distance by factor and clamps it.
func (c *OrbitCamera) Dolly(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = c.clampDistance(c.Distance * factor)
}

// FlyTo animates the camera to look straight down at the given latitude and
// longitude (degrees, world frame) over duration seconds. The azimuth takes
// the short way around.
func (c *OrbitCamera) FlyTo(lat, lon float64, duration float32, easeFn ease.TweenFunc) {
	targetAz := lon * math.Pi / 180
	// Pick the equivalent target within π of the current azimuth.
	targetAz = c.Azimuth + math.Remainder(targetAz-c.Azimuth, 2*math.Pi)
	targetPolar := clampPolar(math.Pi/2 - lat*math.Pi/180)
	c.velAzimuth, c.velPolar = 0, 0
	c.fly = &flyAnim{
		tweenAz:    gween.New(float32(c.Azimuth), float32(targetAz), duration, easeFn),
		tweenPolar: gween.New(float32(c.Polar), float32(targetPolar), duration, easeFn),
	}
}

// Flying reports whether a FlyTo animation is in progress.
func (c *OrbitCamera) Flying() bool {
	return c.fly != nil
}

// PickSphere casts a ray through screen point (sx, sy) and intersects it with
// a sphere of the given radius at the origin, spun by rotationY. It returns
// the latitude and longitude of the hit in the sphere's own frame.
func (c *OrbitCamera) PickSphere(sx, sy, w, h, radius, rotationY float64) (lat, lon float64, ok bool) {
	v := c.view(w, h)
	dir := v.forward.
		Add(v.right.Mul((sx - v.cx) / v.f)).
		Add(v.up.Mul(-(sy - v.cy) / v.f)).
		Normalize()
	b := v.pos.Dot(dir)
	disc := b*b - (v.pos.Dot(v.pos) - radius*radius)
	if disc < 0 {
		return 0, 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		return 0, 0, false
	}
	hit := rotateY(v.pos.Add(dir.Mul(t)), -rotationY)
	ll := s2.LatLngFromPoint(worldToS2(hit))
	return ll.Lat.Degrees(), ll.Lng.Degrees(), true
}

// update advances damping and fly-to animation. Called from Scene.Update().
func (c *OrbitCamera) update(dt float32) {
	if c.fly != nil {
		if !c.fly.doneAz {
			val, done := c.fly.tweenAz.Update(dt)
			c.Azimuth = float64(val)
			c.fly.doneAz = done
		}
		if !c.fly.donePolar {
			val, done := c.fly.tweenPolar.Update(dt)
			c.Polar = float64(val)
			c.fly.donePolar = done
		}
		if c.fly.doneAz && c.fly.donePolar {
			c.fly = nil
		}
		return
	}
	if c.Damping > 0 {
		c.applyRotation(c.Damping)
	}
	c.Distance = c.clampDistance(c.Distance)
}

// applyRotation moves the given fraction of queued rotation into the camera.
func (c *OrbitCamera) applyRotation(fraction float64) {
	c.Azimuth = math.Remainder(c.Azimuth+c.velAzimuth*fraction, 2*math.Pi)
	c.Polar = clampPolar(c.Polar + c.velPolar*fraction)
	c.velAzimuth *= 1 - fraction
	c.velPolar *= 1 - fraction
}

func (c *OrbitCamera) clampDistance(d float64) float64 {
	return math.Max(c.MinDistance, math.Min(c.MaxDistance, d))
}

func clampPolar(p float64) float64 {
	return math.Max(minPolar, math.Min(math.Pi-minPolar, p))
}

// rotateY spins v about the world Y axis by angle radians.
func rotateY(v r3.Vector, angle float64) r3.Vector {
	s, c := math.Sincos(angle)
	return r3.Vector{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// The world frame is Y-up with longitude 0 on +Z and longitude 90°E on +X.
// s2 points have Z toward the north pole and longitude 0 on +X.

func s2ToWorld(p s2.Point) r3.Vector {
	return r3.Vector{X: p.Y, Y: p.Z, Z: p.X}
}

func worldToS2(v r3.Vector) s2.Point {
	return s2.Point{Vector: r3.Vector{X: v.Z, Y: v.X, Z: v.Y}}
}
