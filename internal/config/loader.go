package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Absent fields keep their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Useful in tests where configs are string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Audio.Source.IsValid() {
		errs = append(errs, fmt.Errorf("audio.source %q is invalid; valid values: capture, file, synth", cfg.Audio.Source))
	}
	if cfg.Audio.Source == SourceFile && cfg.Audio.File == "" {
		errs = append(errs, errors.New("audio.file is required when audio.source is file"))
	}
	if cfg.Audio.Window < 0 {
		errs = append(errs, fmt.Errorf("audio.window %d is negative", cfg.Audio.Window))
	}
	if cfg.Audio.FFTSize < 0 {
		errs = append(errs, fmt.Errorf("audio.fft_size %d is negative", cfg.Audio.FFTSize))
	}

	if cfg.Engine.FPS <= 0 {
		errs = append(errs, fmt.Errorf("engine.fps %.2f must be positive", cfg.Engine.FPS))
	}

	if !cfg.Render.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("render.backend %q is invalid; valid values: ansi, sdl", cfg.Render.Backend))
	}

	if cfg.Web.Enabled && cfg.Web.Listen == "" {
		errs = append(errs, errors.New("web.listen is required when web.enabled is true"))
	}

	seen := make(map[string]int, len(cfg.Presets))
	for i, p := range cfg.Presets {
		prefix := fmt.Sprintf("presets[%d]", i)
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			continue
		}
		if prev, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("%s.id %q is a duplicate of presets[%d]", prefix, p.ID, prev))
		}
		seen[p.ID] = i
	}

	return errors.Join(errs...)
}
