package audio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Capture is the live-input Source: a PortAudio stream downmixed to mono
// into the analysis ring.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	device     *portaudio.DeviceInfo

	ring *ring
	mono []float32
}

// CaptureConfig controls how the input stream is opened. Window is the ring
// size in samples; it should cover at least one analyzer FFT window.
type CaptureConfig struct {
	DeviceName string
	Window     int
	Channels   int
}

// NewCapture opens and starts a PortAudio input stream. With no device name
// the best available input is picked automatically, preferring monitor and
// loopback devices that carry whatever the machine is playing.
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	device, err := findDevice(cfg.DeviceName)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		sampleRate: device.DefaultSampleRate,
		channels:   cfg.Channels,
		device:     device,
		ring:       newRing(cfg.Window),
	}

	framesPerBuffer := cfg.Window / cfg.Channels
	if framesPerBuffer < 64 {
		framesPerBuffer = portaudio.FramesPerBufferUnspecified
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      c.sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}, c.process)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		_ = c.stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return c, nil
}

// process runs on the PortAudio callback goroutine.
func (c *Capture) process(in []float32) {
	c.mono = downmix(c.mono, in, c.channels)
	c.ring.push(c.mono)
}

// Samples returns the latest window of mono samples.
func (c *Capture) Samples() []float32 { return c.ring.latest() }

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 { return c.sampleRate }

// DeviceName returns the name of the opened input device.
func (c *Capture) DeviceName() string {
	if c.device == nil {
		return ""
	}
	return c.device.Name
}

// Close stops and closes the stream. Stopping an already-stopped stream is
// not treated as an error.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil && !isInvalidStreamState(err) {
		return err
	}
	return c.stream.Close()
}

func findDevice(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		return findDeviceByName(name)
	}

	if dev, err := portaudio.DefaultInputDevice(); err == nil && dev != nil && dev.MaxInputChannels > 0 {
		return dev, nil
	}
	if host, err := portaudio.DefaultHostApi(); err == nil && host != nil {
		if host.DefaultInputDevice != nil && host.DefaultInputDevice.MaxInputChannels > 0 {
			return host.DefaultInputDevice, nil
		}
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	if candidate := pickBestDevice(devices); candidate != nil {
		return candidate, nil
	}
	return nil, fmt.Errorf("no suitable audio input device found")
}

func findDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	name = strings.ToLower(name)
	for _, device := range devices {
		if device.MaxInputChannels == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(device.Name), name) {
			return device, nil
		}
	}
	return nil, fmt.Errorf("audio device %q not found", name)
}

// loopbackKeywords mark devices that hear the system mix rather than the
// microphone. Those are what a visualizer usually wants.
var loopbackKeywords = []string{"monitor", "loopback", "mix", "stereo mix", "what u hear"}

// pickBestDevice ranks every usable input device and returns the winner, or
// nil when no device accepts input at all.
func pickBestDevice(devices []*portaudio.DeviceInfo) *portaudio.DeviceInfo {
	defaultInputIndex := -1
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultInputIndex = def.Index
	}
	defaultHostIndex := -1
	if host, err := portaudio.DefaultHostApi(); err == nil && host != nil && host.DefaultInputDevice != nil {
		defaultHostIndex = host.DefaultInputDevice.Index
	}

	var best *portaudio.DeviceInfo
	bestScore := -1
	for _, d := range devices {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		s := scoreDevice(d, defaultInputIndex, defaultHostIndex)
		switch {
		case s > bestScore:
			best, bestScore = d, s
		case s == bestScore && best != nil &&
			strings.ToLower(d.Name) < strings.ToLower(best.Name):
			best = d
		}
	}
	return best
}

func scoreDevice(d *portaudio.DeviceInfo, defaultInputIndex, defaultHostIndex int) int {
	score := d.MaxInputChannels
	if d.Index == defaultInputIndex {
		score += 50
	}
	if d.Index == defaultHostIndex {
		score += 40
	}
	lower := strings.ToLower(d.Name)
	for _, kw := range loopbackKeywords {
		if strings.Contains(lower, kw) {
			score += 20
			break
		}
	}
	if strings.Contains(lower, "default") {
		score += 10
	}
	return score
}

// isInvalidStreamState matches the PortAudio error for stopping a stream
// that is not running.
func isInvalidStreamState(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "PaErrorCode -9986")
}
