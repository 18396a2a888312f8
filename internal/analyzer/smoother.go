package analyzer

// Default smoothing and beat-detection constants. Bass carries the most
// visual weight, so it gets the most inertia; high frequencies flicker and
// can afford to track quickly.
const (
	defaultBassAlpha    = 0.10
	defaultMidAlpha     = 0.16
	defaultHighAlpha    = 0.22
	defaultOverallAlpha = 0.14

	defaultBeatRatio      = 1.3
	defaultBeatRefractory = 0.1 // seconds
	defaultBeatDecay      = 0.88
	defaultBeatWindow     = 45 // frames of bass history
)

// SmootherConfig tunes the per-channel smoothing constants and the beat
// detector. Zero fields fall back to the defaults above. Alphas live in
// (0,1]: higher tracks faster, 1 disables smoothing for that channel.
type SmootherConfig struct {
	BassAlpha    float64
	MidAlpha     float64
	HighAlpha    float64
	OverallAlpha float64

	// BeatRatio is how far instant bass must rise above its rolling
	// average before a beat fires.
	BeatRatio float64
	// BeatRefractory is the minimum time in seconds between beats.
	BeatRefractory float64
	// BeatDecay multiplies the pulse every frame it does not refire.
	BeatDecay float64
	// BeatWindow is the rolling-average length in frames.
	BeatWindow int
}

func (c SmootherConfig) withDefaults() SmootherConfig {
	if c.BassAlpha <= 0 || c.BassAlpha > 1 {
		c.BassAlpha = defaultBassAlpha
	}
	if c.MidAlpha <= 0 || c.MidAlpha > 1 {
		c.MidAlpha = defaultMidAlpha
	}
	if c.HighAlpha <= 0 || c.HighAlpha > 1 {
		c.HighAlpha = defaultHighAlpha
	}
	if c.OverallAlpha <= 0 || c.OverallAlpha > 1 {
		c.OverallAlpha = defaultOverallAlpha
	}
	if c.BeatRatio <= 1 {
		c.BeatRatio = defaultBeatRatio
	}
	if c.BeatRefractory <= 0 {
		c.BeatRefractory = defaultBeatRefractory
	}
	if c.BeatDecay <= 0 || c.BeatDecay >= 1 {
		c.BeatDecay = defaultBeatDecay
	}
	if c.BeatWindow <= 0 {
		c.BeatWindow = defaultBeatWindow
	}
	return c
}

// Smoother applies an exponential moving average to each band and derives a
// decaying beat pulse from bass transients. One instance per audio session;
// not safe for concurrent use.
type Smoother struct {
	cfg SmootherConfig

	bass    float64
	mid     float64
	high    float64
	overall float64

	beat        float64
	bassHistory []float64
	sinceBeat   float64
}

// NewSmoother creates a smoother with all state at rest.
func NewSmoother(cfg SmootherConfig) *Smoother {
	cfg = cfg.withDefaults()
	return &Smoother{
		cfg:         cfg,
		bassHistory: make([]float64, 0, cfg.BeatWindow),
		// allow a beat on the very first qualifying frame
		sinceBeat: cfg.BeatRefractory,
	}
}

// Update folds one frame of raw bands into the smoothed state and returns the
// complete feature snapshot. dt is the frame duration in seconds.
func (s *Smoother) Update(b Bands, dt float64) Features {
	b.Bass = clamp01(b.Bass)
	b.Mid = clamp01(b.Mid)
	b.High = clamp01(b.High)
	b.Overall = clamp01(b.Overall)

	s.bass += (b.Bass - s.bass) * s.cfg.BassAlpha
	s.mid += (b.Mid - s.mid) * s.cfg.MidAlpha
	s.high += (b.High - s.high) * s.cfg.HighAlpha
	s.overall += (b.Overall - s.overall) * s.cfg.OverallAlpha

	if dt > 0 {
		s.sinceBeat += dt
	}
	avg := average(s.bassHistory)
	if avg > 0 && b.Bass >= avg*s.cfg.BeatRatio && s.sinceBeat >= s.cfg.BeatRefractory {
		s.beat = 1.0
		s.sinceBeat = 0
	} else {
		s.beat *= s.cfg.BeatDecay
	}
	s.pushBass(b.Bass)

	return Features{
		Bass:    b.Bass,
		Mid:     b.Mid,
		High:    b.High,
		Overall: b.Overall,

		BassSmooth:    clamp01(s.bass),
		MidSmooth:     clamp01(s.mid),
		HighSmooth:    clamp01(s.high),
		OverallSmooth: clamp01(s.overall),

		BeatIntensity: clamp01(s.beat),
	}
}

// Reset returns the smoother to its initial state, as if no audio had been
// seen. Call it when the audio source is stopped or replaced.
func (s *Smoother) Reset() {
	s.bass, s.mid, s.high, s.overall = 0, 0, 0, 0
	s.beat = 0
	s.bassHistory = s.bassHistory[:0]
	s.sinceBeat = s.cfg.BeatRefractory
}

// pushBass records the frame after beat detection so a spike cannot raise the
// average it is measured against.
func (s *Smoother) pushBass(value float64) {
	s.bassHistory = append(s.bassHistory, value)
	if len(s.bassHistory) > s.cfg.BeatWindow {
		copy(s.bassHistory, s.bassHistory[1:])
		s.bassHistory = s.bassHistory[:len(s.bassHistory)-1]
	}
}
