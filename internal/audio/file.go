package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// FileConfig controls file playback.
type FileConfig struct {
	Path   string
	Window int
	Loop   bool
}

// File is the playback Source: it decodes a WAV file, plays it through the
// default output and mirrors the mono mix of everything it plays into the
// analysis ring, so the visuals react to exactly what is audible.
type File struct {
	ring     *ring
	format   beep.Format
	streamer beep.StreamSeekCloser
	done     chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// OpenFile decodes the file and starts playback. The speaker is initialized
// once per process at the first file's sample rate.
func OpenFile(cfg FileConfig) (*File, error) {
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if ext := strings.ToLower(filepath.Ext(cfg.Path)); ext != ".wav" {
		return nil, fmt.Errorf("unsupported audio file %q: wav only", cfg.Path)
	}

	fh, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	streamer, format, err := wav.Decode(fh)
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("decode wav: %w", err)
	}

	speakerOnce.Do(func() {
		speakerErr = speaker.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond))
	})
	if speakerErr != nil {
		_ = streamer.Close()
		return nil, fmt.Errorf("init speaker: %w", speakerErr)
	}

	f := &File{
		ring:     newRing(cfg.Window),
		format:   format,
		streamer: streamer,
		done:     make(chan struct{}),
	}

	var src beep.Streamer = streamer
	if cfg.Loop {
		src = beep.Loop(-1, streamer)
	}
	speaker.Play(beep.Seq(
		&analysisTap{src: src, ring: f.ring},
		beep.Callback(func() { close(f.done) }),
	))
	return f, nil
}

// Samples returns the latest window of played-back mono samples.
func (f *File) Samples() []float32 { return f.ring.latest() }

// SampleRate returns the decoded file's sample rate.
func (f *File) SampleRate() float64 { return float64(f.format.SampleRate) }

// Done is closed when a non-looping file finishes playing.
func (f *File) Done() <-chan struct{} { return f.done }

// Close stops playback and releases the decoder.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		speaker.Clear()
		f.closeErr = f.streamer.Close()
	})
	return f.closeErr
}

// analysisTap passes a streamer through unchanged while pushing the mono
// mix of every pulled block into the ring. It runs on the speaker
// goroutine.
type analysisTap struct {
	src  beep.Streamer
	ring *ring
	mono []float32
}

func (t *analysisTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	if n > 0 {
		if cap(t.mono) < n {
			t.mono = make([]float32, n)
		}
		mono := t.mono[:n]
		for i := 0; i < n; i++ {
			mono[i] = float32((samples[i][0] + samples[i][1]) * 0.5)
		}
		t.ring.push(mono)
	}
	return n, ok
}

func (t *analysisTap) Err() error { return t.src.Err() }
