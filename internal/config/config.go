// Package config provides the YAML configuration schema and loader for the
// lumenfield binary. Flags layer on top of it in cmd: flag values win over
// file values, file values win over defaults.
package config

import (
	"github.com/mgriesel/lumenfield/internal/effects"
	"github.com/mgriesel/lumenfield/internal/params"
)

// SourceKind selects where the analysis samples come from.
type SourceKind string

const (
	// SourceCapture records from a PortAudio input device.
	SourceCapture SourceKind = "capture"

	// SourceFile plays a WAV file and analyzes the playback.
	SourceFile SourceKind = "file"

	// SourceSynth renders the builtin groove, for machines without audio.
	SourceSynth SourceKind = "synth"
)

// IsValid reports whether s is a recognised source kind.
func (s SourceKind) IsValid() bool {
	switch s {
	case SourceCapture, SourceFile, SourceSynth:
		return true
	}
	return false
}

// Backend selects the preview renderer.
type Backend string

const (
	// BackendANSI draws 256-color cells into the terminal.
	BackendANSI Backend = "ansi"

	// BackendSDL draws into an SDL window. Needs a binary built with
	// -tags sdl; without it, selecting this backend fails at startup.
	BackendSDL Backend = "sdl"
)

// IsValid reports whether b is a recognised backend.
func (b Backend) IsValid() bool {
	return b == BackendANSI || b == BackendSDL
}

// Config is the root configuration, typically loaded with [Load].
type Config struct {
	Audio  AudioConfig  `yaml:"audio"`
	Engine EngineConfig `yaml:"engine"`
	Render RenderConfig `yaml:"render"`
	Web    WebConfig    `yaml:"web"`

	// Presets are additional post-processing presets, available alongside
	// the builtin ones under their own ids.
	Presets []effects.Preset `yaml:"presets"`

	// Settings is a partial override of the default visual settings.
	Settings params.Patch `yaml:"settings"`
}

// AudioConfig describes the analysis source.
type AudioConfig struct {
	// Source picks the sample source. Defaults to "capture".
	Source SourceKind `yaml:"source"`

	// Device is a substring matched against PortAudio device names when
	// Source is "capture". Empty picks the best loopback-looking device.
	Device string `yaml:"device"`

	// File is the WAV path played when Source is "file".
	File string `yaml:"file"`

	// Loop restarts file playback when it ends.
	Loop bool `yaml:"loop"`

	// Window is the analysis ring size in samples.
	Window int `yaml:"window"`

	// FFTSize is the transform size. Rounded up to a power of two.
	FFTSize int `yaml:"fft_size"`
}

// EngineConfig seeds the visual engine.
type EngineConfig struct {
	// Mode is the id of the mode active at startup. Empty picks the first
	// registered mode.
	Mode string `yaml:"mode"`

	// Preset is the id of the post-processing preset active at startup.
	Preset string `yaml:"preset"`

	// FPS is the frame loop target rate.
	FPS float64 `yaml:"fps"`

	// Seed fixes the particle layout RNG. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// RenderConfig controls the preview renderer.
type RenderConfig struct {
	// Backend picks the output. Defaults to "ansi".
	Backend Backend `yaml:"backend"`

	// NoColor disables ANSI color codes, leaving the glyph ramp only.
	NoColor bool `yaml:"no_color"`

	// Palette names the glyph ramp used for brightness.
	Palette string `yaml:"palette"`

	// HideStatusBar drops the one-line status footer.
	HideStatusBar bool `yaml:"hide_status_bar"`
}

// WebConfig controls the browser control panel.
type WebConfig struct {
	// Enabled starts the web server.
	Enabled bool `yaml:"enabled"`

	// Listen is the address the server binds, e.g. ":8776".
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Source:  SourceCapture,
			Window:  4096,
			FFTSize: 2048,
		},
		Engine: EngineConfig{
			FPS: 60,
		},
		Render: RenderConfig{
			Backend: BackendANSI,
			Palette: "default",
		},
		Web: WebConfig{
			Listen: ":8776",
		},
	}
}
