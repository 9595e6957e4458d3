package globe

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

const (
	starCount      = 5000
	starSeed       = 1850
	starSpin       = 0.0001 // radians per tick
	flyToDuration  = 1.2    // seconds
	spinResetTime  = 0.8    // seconds
	yearPageStep   = 10
	cameraDamping  = 0.05
	cameraStartMul = 2.5
	cameraMinMul   = 1.2
	cameraMaxMul   = 5
)

var fallbackGlobeColor = Color{R: 0x55 / 255.0, G: 0x55 / 255.0, B: 0x55 / 255.0, A: 1}

// AppConfig configures an App.
type AppConfig struct {
	// Load fetches the dataset. It runs once on its own goroutine. A nil
	// Load leaves the app without data.
	Load func(ctx context.Context) (*ClimateDataset, error)
	// GlobeTexture is the path of the base earth image. If it cannot be
	// read the globe is drawn flat gray.
	GlobeTexture string
	// Resolution is the heatmap raster width. Zero uses HeatmapResolution.
	Resolution int
	// Segments is the sphere tessellation. Zero uses SphereSegments.
	Segments int
	// StartVisible shows the overlay as soon as data arrives.
	StartVisible bool
	// AutoRotate spins the globe, in radians per second.
	AutoRotate float64
	// FadeIn is the overlay fade duration in seconds when it is switched on.
	// Zero shows it immediately.
	FadeIn float32
	// ShowFPS draws the FPS readout.
	ShowFPS bool
	// Debug enables scene debug mode.
	Debug bool
	// ScreenshotDir overrides the scene screenshot directory.
	ScreenshotDir string
	// ExitAfterScript ends the game loop once an attached script finishes.
	ExitAfterScript bool
	// Backend overrides the overlay backend. Nil uses a SceneOverlayBackend.
	Backend OverlayBackend
	Logger  *slog.Logger
}

type loadResult struct {
	dataset *ClimateDataset
	err     error
}

// App is the interactive globe. It owns the scene, the base globe, the
// dataset and the overlay manager, and implements ebiten.Game. Every
// mutation happens on the game loop.
type App struct {
	cfg    AppConfig
	logger *slog.Logger

	scene    *Scene
	controls *OrbitControls
	globe    *Node
	stars    *Node
	baseTex  *Texture
	synth    *Synthesizer
	overlays *OverlayManager
	hud      *hud

	loadCh  chan loadResult
	cancel  context.CancelFunc
	loaded  bool
	loadErr error
	firstYr int
	lastYr  int
	year    int
	visible bool
	fade    *TweenGroup
	spin    *TweenGroup
	runner  *TestRunner
	slider  bool
	width   int
	height  int
	closed  bool
}

var _ ebiten.Game = (*App)(nil)

// NewApp builds the scene and starts loading the dataset in the background.
func NewApp(cfg AppConfig) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	segments := cfg.Segments
	if segments <= 0 {
		segments = SphereSegments
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		scene:   NewScene(),
		synth:   NewSynthesizer(cfg.Resolution),
		visible: cfg.StartVisible,
	}
	a.scene.SetLogger(logger)
	a.scene.SetUpdateFunc(a.afterSceneUpdate)
	a.scene.SetDebugMode(cfg.Debug)
	a.scene.ClearColor = Color{R: 0x1a / 255.0, G: 0x1a / 255.0, B: 0x1a / 255.0, A: 1}
	if cfg.ScreenshotDir != "" {
		a.scene.ScreenshotDir = cfg.ScreenshotDir
	}

	cam := NewOrbitCamera(GlobeRadius * cameraStartMul)
	cam.MinDistance = GlobeRadius * cameraMinMul
	cam.MaxDistance = GlobeRadius * cameraMaxMul
	cam.Damping = cameraDamping
	a.scene.SetCamera(cam)

	a.stars = NewStarField("stars", starCount, GlobeRadius*10, starSeed)
	a.stars.OnUpdate = func(float64) { a.stars.RotationY += starSpin }
	a.scene.Attach(a.stars)

	a.globe = a.newBaseGlobe(segments)
	a.scene.Attach(a.globe)

	backend := cfg.Backend
	if backend == nil {
		sb := NewSceneOverlayBackend(a.scene, a.globe)
		sb.Segments = segments
		backend = sb
	}
	a.overlays = NewOverlayManager(nil, a.synth, backend, WithOverlayLogger(logger))

	a.controls = NewOrbitControls(cam)
	a.controls.OnClick = a.handleClick
	a.controls.OnDoubleClick = a.handleDoubleClick

	a.hud = newHUD(a.synth.Ramp(), cfg.ShowFPS)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.loadCh = make(chan loadResult, 1)
	if cfg.Load != nil {
		go func() {
			d, err := cfg.Load(ctx)
			a.loadCh <- loadResult{dataset: d, err: err}
		}()
	}
	return a
}

func (a *App) newBaseGlobe(segments int) *Node {
	geometry := NewSphereGeometry(GlobeRadius, segments, segments)
	if a.cfg.GlobeTexture != "" {
		img, _, err := ebitenutil.NewImageFromFile(a.cfg.GlobeTexture)
		if err == nil {
			a.baseTex = NewTextureFromImage(img)
			return NewSphere("globe", geometry, NewMaterial(a.baseTex))
		}
		a.logger.Warn("globe texture unavailable, using fallback",
			slog.String("path", a.cfg.GlobeTexture), slog.Any("error", err))
	}
	mat := NewMaterial(nil)
	mat.Color = fallbackGlobeColor
	return NewSphere("globe", geometry, mat)
}

// Scene returns the app's scene.
func (a *App) Scene() *Scene { return a.scene }

// Globe returns the base globe node.
func (a *App) Globe() *Node { return a.globe }

// Controls returns the orbit controls.
func (a *App) Controls() *OrbitControls { return a.controls }

// Overlays returns the overlay manager.
func (a *App) Overlays() *OverlayManager { return a.overlays }

// Year returns the selected year.
func (a *App) Year() int { return a.year }

// YearRange returns the first and last dataset years. Both are zero until
// data has loaded.
func (a *App) YearRange() (first, last int) { return a.firstYr, a.lastYr }

// Visible reports whether the overlay is switched on.
func (a *App) Visible() bool { return a.visible }

// Loaded reports whether the dataset arrived successfully.
func (a *App) Loaded() bool { return a.loaded }

// LoadError returns the dataset load failure, if any.
func (a *App) LoadError() error { return a.loadErr }

// SetTestRunner attaches a script. Its steps start once loading finishes.
func (a *App) SetTestRunner(r *TestRunner) { a.runner = r }

// ResetRotation eases the globe back to its starting orientation, turning
// the short way round. Auto-rotation pauses until the turn completes.
func (a *App) ResetRotation() {
	to := math.Round(a.globe.RotationY/(2*math.Pi)) * 2 * math.Pi
	a.spin = TweenRotationY(a.globe, to, spinResetTime, ease.InOutQuad)
}

// SetYear selects a year and refreshes the overlay. Out-of-range years are
// clamped to the dataset. Ignored before data has loaded.
func (a *App) SetYear(year int) {
	if !a.loaded {
		return
	}
	year = max(a.firstYr, min(a.lastYr, year))
	a.year = year
	a.refresh()
}

// SetVisible switches the overlay on or off.
func (a *App) SetVisible(visible bool) {
	was := a.visible
	a.visible = visible
	if !a.loaded {
		return
	}
	a.refresh()
	if visible && !was {
		a.startFade()
	}
}

// ToggleVisible flips overlay visibility.
func (a *App) ToggleVisible() {
	a.SetVisible(!a.visible)
}

func (a *App) refresh() {
	if err := a.overlays.SetActiveYear(a.year, a.visible); err != nil {
		a.logger.Error("heatmap update failed", slog.Int("year", a.year), slog.Any("error", err))
	}
	a.syncOverlayRotation()
}

func (a *App) overlayNode() *Node {
	if so, ok := a.overlays.Active().(*SceneOverlay); ok {
		return so.Node()
	}
	return nil
}

func (a *App) syncOverlayRotation() {
	if n := a.overlayNode(); n != nil {
		n.RotationY = a.globe.RotationY
	}
}

func (a *App) startFade() {
	a.fade = nil
	n := a.overlayNode()
	if n == nil || a.cfg.FadeIn <= 0 {
		return
	}
	n.Alpha = 0
	a.fade = TweenAlpha(n, 1, a.cfg.FadeIn, ease.OutQuad)
}

// pollLoad installs the dataset once the loader has delivered it.
func (a *App) pollLoad() {
	select {
	case res := <-a.loadCh:
		a.finishLoad(res)
	default:
	}
}

// awaitLoad blocks until the loader delivers.
func (a *App) awaitLoad() {
	if a.loaded || a.loadErr != nil || a.cfg.Load == nil {
		return
	}
	a.finishLoad(<-a.loadCh)
}

func (a *App) finishLoad(res loadResult) {
	if res.err == nil && res.dataset == nil {
		res.err = errors.New("loader returned no dataset")
	}
	if res.err != nil {
		a.loadErr = res.err
		a.logger.Error("climate data load failed", slog.Any("error", res.err))
		return
	}
	a.overlays.SetDataset(res.dataset)
	a.loaded = true
	if first, last, ok := res.dataset.Range(); ok {
		a.firstYr, a.lastYr = first, last
		a.year = last
	}
	a.logger.Info("climate data loaded",
		slog.Int("years", res.dataset.Len()), slog.Int("first", a.firstYr), slog.Int("last", a.lastYr))
	a.refresh()
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	a.pollLoad()
	if a.runner != nil && (a.loaded || a.loadErr != nil) {
		a.runner.step(a)
	}
	a.handleKeys()
	a.handleSlider()
	a.controls.Update(a.height)
	a.tick(1 / float64(ebiten.TPS()))
	return a.scene.Update()
}

// afterSceneUpdate ends the game loop once an attached script finishes and
// ExitAfterScript is set.
func (a *App) afterSceneUpdate() error {
	if a.runner != nil && a.runner.Done() && a.cfg.ExitAfterScript {
		return ebiten.Termination
	}
	return nil
}

// tick advances time-based state that does not depend on input.
func (a *App) tick(dt float64) {
	switch {
	case a.spin != nil:
		a.spin.Update(float32(dt))
		a.syncOverlayRotation()
		if a.spin.Done {
			a.spin = nil
		}
	case a.cfg.AutoRotate != 0:
		a.globe.RotationY += a.cfg.AutoRotate * dt
		a.syncOverlayRotation()
	}
	if a.fade != nil {
		a.fade.Update(float32(dt))
		if a.fade.Done {
			a.fade = nil
		}
	}
	a.hud.update(dt)
}

func (a *App) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		a.SetYear(a.year - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		a.SetYear(a.year + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		a.SetYear(a.year - yearPageStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		a.SetYear(a.year + yearPageStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		a.ToggleVisible()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.ResetRotation()
	}
}

// handleSlider scrubs the year while the mouse is held on the slider. Orbit
// motion is suspended for the duration.
func (a *App) handleSlider() {
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	if pressed && !a.slider && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		a.slider = a.hud.sliderRect(a.width, a.height).Contains(x, y)
	}
	if !pressed {
		a.slider = false
	}
	a.controls.Enabled = !a.slider
	if a.slider {
		a.scrubTo(x)
	}
}

func (a *App) scrubTo(x float64) {
	if !a.loaded {
		return
	}
	if y := a.hud.yearAt(x, a.width, a.firstYr, a.lastYr); y != a.year {
		a.SetYear(y)
	}
}

func (a *App) handleClick(x, y float64) {
	switch {
	case a.hud.toggleRect(a.width, a.height).Contains(x, y):
		a.ToggleVisible()
	case a.hud.sliderRect(a.width, a.height).Contains(x, y):
		a.scrubTo(x)
	}
}

func (a *App) handleDoubleClick(x, y float64) {
	cam := a.scene.Camera()
	lat, lon, ok := cam.PickSphere(x, y, float64(a.width), float64(a.height), GlobeRadius, a.globe.RotationY)
	if !ok {
		return
	}
	// Fly in the world frame so the picked point ends up facing the camera.
	lon += a.globe.RotationY * 180 / math.Pi
	cam.FlyTo(lat, lon, flyToDuration, ease.InOutCubic)
	a.logger.Debug("fly to", slog.Float64("lat", lat), slog.Float64("lon", lon))
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.scene.Draw(screen)
	a.hud.draw(screen, a)
}

// Layout implements ebiten.Game.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close stops the loader and frees the overlay and the base globe texture.
// Calling it again is a no-op.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.cancel()
	a.overlays.Release()
	if a.baseTex != nil {
		a.baseTex.Dispose()
	}
	a.hud.dispose()
}
