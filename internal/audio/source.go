package audio

import "sync"

// Default ring size in samples. Two FFT windows of headroom keeps the
// analyzer fed even when callback blocks arrive unevenly.
const defaultWindow = 4096

// Source is anything that can feed the analyzer: live capture, file
// playback or the builtin synth. Samples returns the most recent window of
// mono samples oldest-first; the returned slice is a copy the caller may
// keep. Implementations are safe to read from the frame loop while their
// producer goroutine writes.
type Source interface {
	Samples() []float32
	SampleRate() float64
	Close() error
}

// ring is the fixed-size sample buffer shared by every source. Producers
// push blocks from their callback goroutine, the frame loop copies the
// window out through latest.
type ring struct {
	mu    sync.RWMutex
	buf   []float32
	index int
}

func newRing(size int) *ring {
	if size <= 0 {
		size = defaultWindow
	}
	return &ring{buf: make([]float32, size)}
}

// push folds a block into the ring, overwriting the oldest samples. Blocks
// larger than the ring keep only their tail.
func (r *ring) push(in []float32) {
	if len(in) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(in) >= len(r.buf) {
		copy(r.buf, in[len(in)-len(r.buf):])
		r.index = 0
		return
	}

	if r.index+len(in) <= len(r.buf) {
		copy(r.buf[r.index:], in)
		r.index += len(in)
		if r.index == len(r.buf) {
			r.index = 0
		}
		return
	}

	remaining := len(r.buf) - r.index
	copy(r.buf[r.index:], in[:remaining])
	copy(r.buf, in[remaining:])
	r.index = len(in) - remaining
}

// latest returns the window contents oldest-first as a fresh copy.
func (r *ring) latest() []float32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp := make([]float32, len(r.buf))
	if r.index == 0 {
		copy(cp, r.buf)
		return cp
	}
	copy(cp, r.buf[r.index:])
	copy(cp[len(r.buf)-r.index:], r.buf[:r.index])
	return cp
}

// downmix folds interleaved multichannel samples to mono in place of dst,
// growing it as needed, and returns the mono slice.
func downmix(dst, in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	if cap(dst) < frames {
		dst = make([]float32, frames)
	}
	dst = dst[:frames]
	for i := 0; i < frames; i++ {
		sum := float32(0)
		base := i * channels
		for ch := 0; ch < channels; ch++ {
			sum += in[base+ch]
		}
		dst[i] = sum / float32(channels)
	}
	return dst
}
