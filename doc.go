// Package globe renders an interactive climate-anomaly globe on [Ebitengine].
//
// The heart of the package is the heatmap pipeline: a year's sparse
// (lat, lon, value) samples are colored with a [ColorRamp], projected to an
// equirectangular raster with [Project], stamped as radial gradients and
// blurred by a [Synthesizer]. The finished [Raster] becomes a [Texture] on a
// transparent sphere floating just above the earth.
//
// # Quick start
//
// The simplest way to get started is [Run] with an [App]:
//
//	app := globe.NewApp(globe.AppConfig{
//		Load: func(ctx context.Context) (*globe.ClimateDataset, error) {
//			f, err := os.Open("temperature_anomalies.json")
//			if err != nil {
//				return nil, err
//			}
//			defer f.Close()
//			return globe.ParseDataset(f)
//		},
//		GlobeTexture: "earth.jpg",
//		StartVisible: true,
//	})
//	defer app.Close()
//	globe.Run(app, globe.RunConfig{Title: "Globe", Width: 1280, Height: 800})
//
// # Heatmaps without a window
//
// [Synthesizer] and [PixelRaster] are pure CPU code and safe to call from
// many goroutines at once, so servers and batch tools can render heatmaps
// without a GPU:
//
//	synth := globe.NewSynthesizer(1024)
//	raster := synth.Synthesize(dataset.Samples(2020))
//	globe.WritePNG("2020.png", raster)
//
// # Overlay lifecycle
//
// [OverlayManager] keeps at most one overlay alive. Every change of year or
// visibility goes through [OverlayManager.SetActiveYear], which releases the
// old overlay before creating the next one. The [OverlayBackend] interface
// decides what an overlay is: [SceneOverlayBackend] builds a sphere node, and
// other front ends can supply their own.
//
// # Scene graph
//
// A [Scene] holds a small tree of [Node] values (the globe, the overlay and
// a star field) viewed through an [OrbitCamera]. [OrbitControls] map mouse
// drags and the wheel to camera motion. Tweens come from [gween].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package globe
