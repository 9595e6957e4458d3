package globe

import (
	"fmt"
	"log/slog"
)

// OverlayState is the lifecycle state of the heatmap overlay.
type OverlayState uint8

const (
	OverlayAbsent  OverlayState = iota // no overlay resources are live
	OverlayPresent                     // exactly one overlay is attached
)

func (s OverlayState) String() string {
	if s == OverlayPresent {
		return "present"
	}
	return "absent"
}

// Overlay is a live heatmap surface. Release detaches it and frees every
// resource it owns. Release must be idempotent.
type Overlay interface {
	Release()
}

// OverlayBackend turns a finished raster into a live overlay. If creation
// fails part way, the backend frees whatever it had already allocated before
// returning the error.
type OverlayBackend interface {
	CreateOverlay(r Raster) (Overlay, error)
}

// OverlayManager keeps at most one heatmap overlay alive. The previous
// overlay is always released before a replacement is created, so two
// overlays never hold resources at the same time. It is not safe for
// concurrent use; drive it from the main loop.
type OverlayManager struct {
	dataset *ClimateDataset
	synth   *Synthesizer
	backend OverlayBackend
	logger  *slog.Logger

	active Overlay
	year   int
}

// OverlayOption configures an OverlayManager.
type OverlayOption func(*OverlayManager)

// WithOverlayLogger sets the manager's logger.
func WithOverlayLogger(l *slog.Logger) OverlayOption {
	return func(m *OverlayManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewOverlayManager creates a manager in the Absent state. dataset may be nil
// until it has loaded; see SetDataset.
func NewOverlayManager(dataset *ClimateDataset, synth *Synthesizer, backend OverlayBackend, opts ...OverlayOption) *OverlayManager {
	m := &OverlayManager{
		dataset: dataset,
		synth:   synth,
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetDataset installs the loaded dataset. The current overlay, if any, is
// kept until the next SetActiveYear call.
func (m *OverlayManager) SetDataset(d *ClimateDataset) {
	m.dataset = d
}

// Dataset returns the installed dataset, or nil before it has loaded.
func (m *OverlayManager) Dataset() *ClimateDataset {
	return m.dataset
}

// State reports whether an overlay is live.
func (m *OverlayManager) State() OverlayState {
	if m.active != nil {
		return OverlayPresent
	}
	return OverlayAbsent
}

// Active returns the live overlay, or nil when Absent.
func (m *OverlayManager) Active() Overlay {
	return m.active
}

// Year returns the year of the live overlay. Only meaningful when Present.
func (m *OverlayManager) Year() int {
	return m.year
}

// SetActiveYear drives the overlay state machine:
//
//   - visible with samples for year: replace any live overlay with one for year
//   - visible, same year already live: no-op
//   - not visible, or no samples for year: release the live overlay, if any
//   - dataset not loaded yet: release the live overlay, if any
//
// An error from the backend leaves the manager Absent.
func (m *OverlayManager) SetActiveYear(year int, visible bool) error {
	if visible && m.active != nil && m.year == year {
		return nil
	}
	m.Release()
	if !visible {
		return nil
	}

	samples := m.dataset.Samples(year)
	if len(samples) == 0 {
		m.logger.Debug("no anomaly samples for year", slog.Int("year", year))
		return nil
	}
	return m.replace(year, samples)
}

// replace builds the overlay for year. The manager must already be Absent.
func (m *OverlayManager) replace(year int, samples []AnomalySample) error {
	raster := m.synth.Synthesize(samples)
	overlay, err := m.backend.CreateOverlay(raster)
	if err != nil {
		return fmt.Errorf("create overlay for %d: %w", year, err)
	}
	m.active = overlay
	m.year = year
	m.logger.Debug("overlay created", slog.Int("year", year), slog.Int("samples", len(samples)))
	return nil
}

// Release frees the live overlay. Calling it when Absent is a no-op.
func (m *OverlayManager) Release() {
	if m.active == nil {
		return
	}
	m.active.Release()
	m.active = nil
	m.logger.Debug("overlay released", slog.Int("year", m.year))
}

// SceneOverlayBackend builds overlays as transparent spheres floating just
// above a base globe node.
type SceneOverlayBackend struct {
	scene *Scene
	globe *Node

	// Radius is the overlay sphere radius.
	Radius float64
	// Segments is the sphere tessellation in both directions.
	Segments int
	// Opacity is the overlay material opacity.
	Opacity float64
}

var _ OverlayBackend = (*SceneOverlayBackend)(nil)

// NewSceneOverlayBackend creates a backend attaching overlays to scene. The
// overlay copies globe's rotation when created; globe may be nil.
func NewSceneOverlayBackend(scene *Scene, globe *Node) *SceneOverlayBackend {
	return &SceneOverlayBackend{
		scene:    scene,
		globe:    globe,
		Radius:   GlobeRadius + OverlayRadiusOffset,
		Segments: SphereSegments,
		Opacity:  OverlayOpacity,
	}
}

// CreateOverlay uploads r as a texture, wraps it in an unlit transparent
// sphere and attaches the sphere to the scene.
func (b *SceneOverlayBackend) CreateOverlay(r Raster) (Overlay, error) {
	tex, err := NewTextureFromRaster(r)
	if err != nil {
		return nil, fmt.Errorf("heatmap texture: %w", err)
	}
	geometry := NewSphereGeometry(b.Radius, b.Segments, b.Segments)
	material := &Material{
		Map:     tex,
		Color:   ColorWhite,
		Opacity: b.Opacity,
	}
	node := NewSphere("heatmap", geometry, material)
	if b.globe != nil {
		node.RotationY = b.globe.RotationY
	}
	b.scene.Attach(node)
	return &SceneOverlay{scene: b.scene, node: node, texture: tex, geometry: geometry, material: material}, nil
}

// SceneOverlay is a heatmap sphere attached to a Scene.
type SceneOverlay struct {
	scene    *Scene
	node     *Node
	texture  *Texture
	geometry *SphereGeometry
	material *Material
}

// Node returns the overlay's sphere node, or nil once released.
func (o *SceneOverlay) Node() *Node {
	return o.node
}

// Texture returns the overlay's heatmap texture.
func (o *SceneOverlay) Texture() *Texture {
	return o.texture
}

// Release detaches the sphere and frees its texture, geometry and material.
func (o *SceneOverlay) Release() {
	if o.node == nil {
		return
	}
	o.scene.Detach(o.node)
	o.texture.Dispose()
	o.geometry.Dispose()
	o.material.Dispose()
	o.node.Dispose()
	o.node = nil
}
