package analyzer

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Snapshot is one frequency-domain frame produced by a FrontEnd. Magnitudes
// holds the bin magnitudes from DC up to just below Nyquist. FullScale is the
// largest magnitude a full-scale input can concentrate into a single bin, so
// consumers can normalize without knowing how the frame was produced. The zero
// Snapshot means "no data yet" and is safe to pass downstream.
type Snapshot struct {
	Magnitudes []float64
	SampleRate float64
	FullScale  float64
}

// Valid reports whether the snapshot carries a usable frame.
func (s Snapshot) Valid() bool {
	return len(s.Magnitudes) > 0 && s.SampleRate > 0 && s.FullScale > 0
}

// FrontEnd turns windows of time-domain samples into magnitude snapshots.
// It is not safe for concurrent use; drive it from the frame loop only.
type FrontEnd struct {
	sampleRate float64
	size       int

	buffer []complex128
	window []float64
	mags   []float64
}

// FrontEndConfig controls FrontEnd behavior. Zero fields fall back to
// 44.1 kHz and a 2048-point transform.
type FrontEndConfig struct {
	SampleRate float64
	FFTSize    int
}

// NewFrontEnd creates a front end with its transform workspace preallocated.
// FFTSize is rounded up to the next power of two.
func NewFrontEnd(cfg FrontEndConfig) *FrontEnd {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44_100
	}
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 2048
	}
	size := nextPow2(cfg.FFTSize)

	fe := &FrontEnd{
		sampleRate: cfg.SampleRate,
		size:       size,
		buffer:     make([]complex128, size),
		window:     make([]float64, size),
		mags:       make([]float64, size/2),
	}
	sizeF := float64(size)
	for i := range fe.window {
		fe.window[i] = hann(float64(i), sizeF)
	}
	return fe
}

// Size returns the transform length in samples.
func (fe *FrontEnd) Size() int { return fe.size }

// SampleRate returns the sample rate the front end assumes for its input.
func (fe *FrontEnd) SampleRate() float64 { return fe.sampleRate }

// Analyze produces the magnitude snapshot for the most recent transform-sized
// window of samples. Shorter input yields the zero Snapshot rather than an
// error so the frame loop can proceed through silence or a source still
// warming up. The returned magnitude slice is reused on the next call.
func (fe *FrontEnd) Analyze(samples []float32) Snapshot {
	if len(samples) < fe.size {
		return Snapshot{}
	}
	samples = samples[len(samples)-fe.size:]

	for i := 0; i < fe.size; i++ {
		fe.buffer[i] = complex(float64(samples[i])*fe.window[i], 0)
	}
	res := fft.FFT(fe.buffer)
	for i := range fe.mags {
		fe.mags[i] = cmag(res[i])
	}

	return Snapshot{
		Magnitudes: fe.mags,
		SampleRate: fe.sampleRate,
		// A full-scale sine lands about size/4 in its bin after Hann
		// windowing: size/2 from the transform, halved by the window.
		FullScale: float64(fe.size) / 4,
	}
}

func hann(i, size float64) float64 {
	return 0.5 * (1.0 - math.Cos(2.0*math.Pi*i/size))
}

func cmag(c complex128) float64 {
	return math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
