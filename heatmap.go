package globe

// Synthesizer turns a year's anomaly samples into an equirectangular heatmap
// raster. It holds no per-call state and is safe for concurrent use.
type Synthesizer struct {
	width          int
	ramp           ColorRamp
	radiusFraction float64
	falloff        float64
	stampAlpha     float64
	blurSigma      float64
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithRamp replaces the default color ramp.
func WithRamp(r ColorRamp) SynthesizerOption {
	return func(s *Synthesizer) { s.ramp = r }
}

// WithStampAlpha sets the opacity applied to every stamp.
func WithStampAlpha(a float64) SynthesizerOption {
	return func(s *Synthesizer) { s.stampAlpha = a }
}

// WithBlurRadius sets the blur standard deviation in pixels. Zero disables
// the blur pass.
func WithBlurRadius(sigma float64) SynthesizerOption {
	return func(s *Synthesizer) { s.blurSigma = sigma }
}

// WithRadiusFraction sets the stamp radius as a fraction of the raster width.
func WithRadiusFraction(f float64) SynthesizerOption {
	return func(s *Synthesizer) { s.radiusFraction = f }
}

// NewSynthesizer creates a synthesizer producing width × width/2 rasters.
// A non-positive width falls back to HeatmapResolution.
func NewSynthesizer(width int, opts ...SynthesizerOption) *Synthesizer {
	if width <= 0 {
		width = HeatmapResolution
	}
	s := &Synthesizer{
		width:          width,
		ramp:           defaultRamp,
		radiusFraction: StampRadiusFraction,
		falloff:        StampFalloff,
		stampAlpha:     StampAlpha,
		blurSigma:      BlurRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Width returns the raster width.
func (s *Synthesizer) Width() int { return s.width }

// Height returns the raster height, always half the width.
func (s *Synthesizer) Height() int { return s.width / 2 }

// Ramp returns the color ramp used for stamps.
func (s *Synthesizer) Ramp() ColorRamp { return s.ramp }

// StampRadius returns the nominal stamp radius in pixels. Stamps fade to
// transparent at StampRadius * StampFalloff.
func (s *Synthesizer) StampRadius() float64 {
	return float64(s.width) * s.radiusFraction
}

// Synthesize renders samples into a new raster. An empty slice yields a fully
// transparent raster. samples is not modified.
func (s *Synthesizer) Synthesize(samples []AnomalySample) *PixelRaster {
	r := NewPixelRaster(s.Width(), s.Height())
	s.SynthesizeInto(r, samples)
	return r
}

// SynthesizeInto stamps samples onto dst in slice order and blurs the result.
// dst should start out transparent. Later samples composite over earlier ones
// where stamps overlap.
func (s *Synthesizer) SynthesizeInto(dst Raster, samples []AnomalySample) {
	if len(samples) == 0 {
		return
	}
	w, h := dst.Width(), dst.Height()
	outer := float64(w) * s.radiusFraction * s.falloff
	for _, sample := range samples {
		x, y := Project(sample.Lat, sample.Lon, w, h)
		dst.StampRadialGradient(x, y, outer, s.ramp.ColorFor(sample.Value), s.stampAlpha)
	}
	dst.Blur(s.blurSigma)
}
