package analyzer

// Pipeline is the complete per-frame feature path: windowed FFT, band
// extraction, temporal smoothing. It carries all session state, so swapping
// audio sources means calling Reset rather than rebuilding consumers. Drive
// it once per frame from the main loop; it is not safe for concurrent use.
type Pipeline struct {
	front    *FrontEnd
	smoother *Smoother
	last     Features
}

// PipelineConfig bundles the front-end and smoother configuration.
type PipelineConfig struct {
	FrontEnd FrontEndConfig
	Smoother SmootherConfig
}

// NewPipeline builds a pipeline with all state at rest.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		front:    NewFrontEnd(cfg.FrontEnd),
		smoother: NewSmoother(cfg.Smoother),
	}
}

// WindowSize returns how many samples Tick wants per call.
func (p *Pipeline) WindowSize() int { return p.front.Size() }

// Tick advances the pipeline by one frame. samples may be nil or shorter
// than the transform window, in which case the frame counts as silence and
// the smoothed values glide toward zero instead of freezing. dt is the frame
// duration in seconds.
func (p *Pipeline) Tick(samples []float32, dt float64) Features {
	snap := p.front.Analyze(samples)
	p.last = p.smoother.Update(ExtractBands(snap), dt)
	return p.last
}

// Last returns the features produced by the most recent Tick.
func (p *Pipeline) Last() Features { return p.last }

// Reset clears the smoothing and beat state. The next Tick starts a fresh
// session from silence.
func (p *Pipeline) Reset() {
	p.smoother.Reset()
	p.last = Features{}
}
