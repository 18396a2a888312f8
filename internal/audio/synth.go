package audio

import (
	"math"
	"sync"
	"time"
)

const (
	synthRate = 44100.0
	synthBPM  = 128.0
)

// Synth is a Source that needs no hardware: it renders a looping test
// groove on demand, advancing by wall-clock time between calls. It exists
// so the whole pipeline can run on machines without audio devices.
type Synth struct {
	mu     sync.Mutex
	ring   *ring
	phase  int64
	last   time.Time
	now    func() time.Time
	buffer []float32
}

// NewSynth returns a synthetic source with the given analysis window.
func NewSynth(window int) *Synth {
	if window <= 0 {
		window = defaultWindow
	}
	return &Synth{
		ring: newRing(window),
		now:  time.Now,
	}
}

// Samples advances the groove by the elapsed wall-clock time and returns
// the latest window.
func (s *Synth) Samples() []float32 {
	s.mu.Lock()
	now := s.now()
	if s.last.IsZero() {
		s.last = now
	}
	elapsed := now.Sub(s.last).Seconds()
	s.last = now
	if elapsed > 0.5 {
		elapsed = 0.5
	}
	n := int(elapsed * synthRate)
	if n > 0 {
		s.generate(n)
	}
	s.mu.Unlock()
	return s.ring.latest()
}

// SampleRate returns the synth's fixed rate.
func (s *Synth) SampleRate() float64 { return synthRate }

// Close is a no-op; the synth holds no resources.
func (s *Synth) Close() error { return nil }

// generate renders n samples starting at the current phase and pushes them
// into the ring. Callers hold s.mu.
func (s *Synth) generate(n int) {
	if cap(s.buffer) < n {
		s.buffer = make([]float32, n)
	}
	buf := s.buffer[:n]
	for i := range buf {
		buf[i] = s.sample(s.phase + int64(i))
	}
	s.phase += int64(n)
	s.ring.push(buf)
}

// arpNotes is a minor pentatonic run, one note per eighth.
var arpNotes = [...]float64{220.0, 261.63, 293.66, 329.63, 392.0}

// sample renders one mono sample at absolute frame k.
func (s *Synth) sample(k int64) float32 {
	t := float64(k) / synthRate
	beat := 60.0 / synthBPM

	// Kick on every beat: 55 Hz burst with a fast exponential envelope.
	tb := math.Mod(t, beat)
	v := math.Sin(2*math.Pi*55*tb) * math.Exp(-tb*18) * 0.9

	// Arpeggio on eighths.
	eighth := beat / 2
	step := int(t/eighth) % len(arpNotes)
	te := math.Mod(t, eighth)
	v += math.Sin(2*math.Pi*arpNotes[step]*t) * math.Exp(-te*6) * 0.25

	// A little hiss so the high band never sits at zero.
	v += noiseAt(k) * 0.02

	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return float32(v)
}

// noiseAt is a cheap deterministic pseudo-noise in [-1, 1].
func noiseAt(k int64) float64 {
	x := math.Sin(float64(k)*12.9898) * 43758.5453
	return 2*(x-math.Floor(x)) - 1
}
