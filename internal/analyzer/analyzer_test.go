package analyzer

import (
	"math"
	"testing"
)

func TestAverage(t *testing.T) {
	vals := []float64{0.2, 0.4, 0.6, 0.8}
	want := 0.5
	if got := average(vals); math.Abs(got-want) > 1e-6 {
		t.Fatalf("average=%f want=%f", got, want)
	}
	if got := average(nil); got != 0 {
		t.Fatalf("average of empty slice=%f want=0", got)
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{
		0:    1,
		1:    1,
		2:    2,
		3:    4,
		5:    8,
		16:   16,
		31:   32,
		257:  512,
		2048: 2048,
	}
	for input, want := range cases {
		if got := nextPow2(input); got != want {
			t.Fatalf("nextPow2(%d)=%d want=%d", input, got, want)
		}
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(2) != 1 {
		t.Fatalf("expected clamp high to be 1")
	}
	if clamp01(-1) != 0 {
		t.Fatalf("expected clamp low to be 0")
	}
	if clamp01(0.5) != 0.5 {
		t.Fatalf("expected clamp middle to be unchanged")
	}
}

// sine fills a buffer with a pure tone at the given frequency and amplitude.
func sine(n int, sampleRate, freq, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

func TestFrontEndShortInputYieldsZeroSnapshot(t *testing.T) {
	fe := NewFrontEnd(FrontEndConfig{SampleRate: 44100, FFTSize: 1024})
	if snap := fe.Analyze(make([]float32, 100)); snap.Valid() {
		t.Fatalf("expected zero snapshot for short input, got %d bins", len(snap.Magnitudes))
	}
	if snap := fe.Analyze(nil); snap.Valid() {
		t.Fatalf("expected zero snapshot for nil input")
	}
}

func TestFrontEndSinePeaksAtExpectedBin(t *testing.T) {
	const (
		rate = 44100.0
		size = 2048
		freq = 430.6640625 // exactly bin 20 at this size and rate
	)
	fe := NewFrontEnd(FrontEndConfig{SampleRate: rate, FFTSize: size})
	snap := fe.Analyze(sine(size, rate, freq, 1.0))
	if !snap.Valid() {
		t.Fatalf("expected valid snapshot")
	}
	if len(snap.Magnitudes) != size/2 {
		t.Fatalf("magnitude count=%d want=%d", len(snap.Magnitudes), size/2)
	}

	peak := 0
	for i, m := range snap.Magnitudes {
		if m > snap.Magnitudes[peak] {
			peak = i
		}
	}
	if peak != 20 {
		t.Fatalf("peak bin=%d want=20", peak)
	}
	// A full-scale sine should read close to FullScale in its bin.
	if ratio := snap.Magnitudes[peak] / snap.FullScale; ratio < 0.9 || ratio > 1.1 {
		t.Fatalf("normalized peak=%f want near 1", ratio)
	}
}

func TestFrontEndUsesMostRecentWindow(t *testing.T) {
	const (
		rate = 44100.0
		size = 1024
	)
	fe := NewFrontEnd(FrontEndConfig{SampleRate: rate, FFTSize: size})

	// Old half is loud, recent half is silent: the snapshot must reflect
	// only the trailing window.
	samples := make([]float32, size*2)
	copy(samples, sine(size, rate, 1000, 1.0))
	snap := fe.Analyze(samples)

	total := 0.0
	for _, m := range snap.Magnitudes {
		total += m
	}
	if total > 1e-6 {
		t.Fatalf("expected silence from trailing window, got total magnitude %f", total)
	}
}
