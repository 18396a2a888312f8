package audio

import (
	"testing"
	"time"
)

func floatsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingLatestOldestFirst(t *testing.T) {
	r := newRing(8)
	r.push([]float32{1, 2, 3, 4, 5, 6})

	got := r.latest()
	want := []float32{0, 0, 1, 2, 3, 4, 5, 6}
	if !floatsEqual(got, want) {
		t.Fatalf("latest = %v, want %v", got, want)
	}
}

func TestRingWraparound(t *testing.T) {
	r := newRing(8)
	r.push([]float32{1, 2, 3, 4, 5, 6})
	r.push([]float32{7, 8, 9, 10})

	got := r.latest()
	want := []float32{3, 4, 5, 6, 7, 8, 9, 10}
	if !floatsEqual(got, want) {
		t.Fatalf("latest after wrap = %v, want %v", got, want)
	}
}

func TestRingOversizedBlockKeepsTail(t *testing.T) {
	r := newRing(4)
	r.push([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	got := r.latest()
	want := []float32{7, 8, 9, 10}
	if !floatsEqual(got, want) {
		t.Fatalf("latest after oversized push = %v, want %v", got, want)
	}
}

func TestRingExactFitKeepsOrder(t *testing.T) {
	r := newRing(4)
	r.push([]float32{1, 2})
	r.push([]float32{3, 4})
	r.push([]float32{5})

	got := r.latest()
	want := []float32{2, 3, 4, 5}
	if !floatsEqual(got, want) {
		t.Fatalf("latest = %v, want %v", got, want)
	}
}

func TestRingLatestIsACopy(t *testing.T) {
	r := newRing(4)
	r.push([]float32{1, 2, 3, 4})

	first := r.latest()
	first[0] = 99

	if got := r.latest(); got[0] != 1 {
		t.Fatalf("mutating the returned window leaked into the ring: %v", got)
	}
}

func TestDownmix(t *testing.T) {
	cases := map[string]struct {
		in       []float32
		channels int
		want     []float32
	}{
		"mono passthrough": {
			in:       []float32{1, 2, 3},
			channels: 1,
			want:     []float32{1, 2, 3},
		},
		"stereo average": {
			in:       []float32{1, 3, -2, 2},
			channels: 2,
			want:     []float32{2, 0},
		},
		"quad average": {
			in:       []float32{1, 1, 1, 5},
			channels: 4,
			want:     []float32{2},
		},
		"partial frame dropped": {
			in:       []float32{2, 4, 6},
			channels: 2,
			want:     []float32{3},
		},
	}
	for name, tc := range cases {
		got := downmix(nil, tc.in, tc.channels)
		if !floatsEqual(got, tc.want) {
			t.Fatalf("%s: downmix = %v, want %v", name, got, tc.want)
		}
	}
}

func TestSynthDeterministic(t *testing.T) {
	a := NewSynth(1024)
	b := NewSynth(1024)

	a.generate(1000)
	b.generate(400)
	b.generate(600)

	if !floatsEqual(a.ring.latest(), b.ring.latest()) {
		t.Fatal("same total frame count produced different windows")
	}
}

func TestSynthSampleRange(t *testing.T) {
	s := NewSynth(0)
	s.generate(int(synthRate)) // one full second covers every beat phase

	for i, v := range s.ring.latest() {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d = %v outside [-1, 1]", i, v)
		}
	}
}

func TestSynthAdvancesByWallClock(t *testing.T) {
	s := NewSynth(1 << 15)
	base := time.Unix(0, 0)
	current := base
	s.now = func() time.Time { return current }

	s.Samples() // first call only arms the clock
	if s.phase != 0 {
		t.Fatalf("phase after arming call = %d, want 0", s.phase)
	}

	current = base.Add(100 * time.Millisecond)
	s.Samples()
	if want := int64(0.1 * synthRate); s.phase != want {
		t.Fatalf("phase after 100ms = %d, want %d", s.phase, want)
	}

	// Long stalls are clamped so a paused process does not render minutes
	// of audio in one call.
	current = current.Add(time.Minute)
	s.Samples()
	if want := int64(0.1*synthRate) + int64(0.5*synthRate); s.phase != want {
		t.Fatalf("phase after clamped stall = %d, want %d", s.phase, want)
	}
}
