package analyzer

import "testing"

func TestPipelineSilenceConvergesToQuiescent(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	silence := make([]float32, p.WindowSize())

	// Charge the smoother with a loud tone first.
	loud := sine(p.WindowSize(), 44100, 100, 0.9)
	for i := 0; i < 60; i++ {
		p.Tick(loud, tickDt)
	}

	var f Features
	for i := 0; i < 400; i++ {
		f = p.Tick(silence, tickDt)
	}
	if f.BassSmooth > 0.001 || f.MidSmooth > 0.001 || f.HighSmooth > 0.001 || f.OverallSmooth > 0.001 {
		t.Fatalf("smoothed features did not converge to zero: %+v", f)
	}
	if f.BeatIntensity > 0.001 {
		t.Fatalf("beat pulse survived silence: %f", f.BeatIntensity)
	}
}

func TestPipelineNilSamplesCountAsSilence(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	f := p.Tick(nil, tickDt)
	if !f.Silent() {
		t.Fatalf("first tick without data should be silent, got %+v", f)
	}
	for i := 0; i < 10; i++ {
		f = p.Tick(nil, tickDt)
	}
	if !f.Silent() {
		t.Fatalf("repeated empty ticks should stay silent, got %+v", f)
	}
}

func TestPipelineBassSpikeFiresBeat(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	n := p.WindowSize()

	quiet := sine(n, 44100, 110, 0.08)
	loud := sine(n, 44100, 110, 0.9)

	for i := 0; i < 90; i++ {
		if f := p.Tick(quiet, tickDt); f.BeatIntensity == 1.0 {
			t.Fatalf("steady quiet tone fired a beat at tick %d", i)
		}
	}
	f := p.Tick(loud, tickDt)
	if f.BeatIntensity != 1.0 {
		t.Fatalf("bass jump should fire a beat, got %f", f.BeatIntensity)
	}
	if f.Bass <= 0 {
		t.Fatalf("loud 110 Hz tone should register bass energy")
	}

	// Back at the quiet baseline the pulse decays monotonically.
	prev := f.BeatIntensity
	for i := 0; i < 20; i++ {
		f = p.Tick(quiet, tickDt)
		if f.BeatIntensity > prev {
			t.Fatalf("tick %d: pulse rose without a new transient: %f -> %f", i, prev, f.BeatIntensity)
		}
		prev = f.BeatIntensity
	}
}

func TestPipelineResetStartsFreshSession(t *testing.T) {
	p := NewPipeline(PipelineConfig{})
	loud := sine(p.WindowSize(), 44100, 200, 0.9)
	for i := 0; i < 60; i++ {
		p.Tick(loud, tickDt)
	}
	if p.Last().Silent() {
		t.Fatalf("expected energy before reset")
	}

	p.Reset()
	if !p.Last().Silent() {
		t.Fatalf("reset should clear the last snapshot")
	}
	if f := p.Tick(nil, tickDt); !f.Silent() {
		t.Fatalf("first tick after reset should be silent, got %+v", f)
	}
}
