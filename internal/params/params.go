package params

import "strings"

// Declared bounds for every tunable. Apply clamps into these ranges so a
// wild value from the web panel or a config file can never take the frame
// loop down.
const (
	MinParticles = 64
	MaxParticles = 65536

	MinSpread = 1.0
	MaxSpread = 40.0

	MinSpeed = 0.0
	MaxSpeed = 4.0

	MinHueRange = 0.0
	MaxHueRange = 1.0

	MinSizeBase = 0.2
	MaxSizeBase = 8.0

	MinSizeGain = 0.0
	MaxSizeGain = 6.0

	MaxTextLen = 32
)

// Settings are the live tunables every mode reads while animating. They are
// value semantics throughout: the engine hands copies out, and updates come
// back in as a Patch.
type Settings struct {
	ParticleCount int     `json:"particleCount" yaml:"particle_count"`
	Spread        float64 `json:"spread" yaml:"spread"`
	Speed         float64 `json:"speed" yaml:"speed"`
	Hue           float64 `json:"hue" yaml:"hue"`
	HueRange      float64 `json:"hueRange" yaml:"hue_range"`
	SizeBase      float64 `json:"sizeBase" yaml:"size_base"`
	SizeGain      float64 `json:"sizeGain" yaml:"size_gain"`
	Text          string  `json:"text" yaml:"text"`
}

// Defaults returns the settings the engine starts with.
func Defaults() Settings {
	return Settings{
		ParticleCount: 2048,
		Spread:        6.0,
		Speed:         1.0,
		Hue:           0.58,
		HueRange:      0.25,
		SizeBase:      1.0,
		SizeGain:      1.5,
		Text:          "LUMEN",
	}
}

// Patch is a partial settings update. Nil fields keep their current value,
// so callers send only what changed.
type Patch struct {
	ParticleCount *int     `json:"particleCount,omitempty" yaml:"particle_count,omitempty"`
	Spread        *float64 `json:"spread,omitempty" yaml:"spread,omitempty"`
	Speed         *float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Hue           *float64 `json:"hue,omitempty" yaml:"hue,omitempty"`
	HueRange      *float64 `json:"hueRange,omitempty" yaml:"hue_range,omitempty"`
	SizeBase      *float64 `json:"sizeBase,omitempty" yaml:"size_base,omitempty"`
	SizeGain      *float64 `json:"sizeGain,omitempty" yaml:"size_gain,omitempty"`
	Text          *string  `json:"text,omitempty" yaml:"text,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply merges the patch into s and returns the result clamped into the
// declared bounds. The receiver is untouched; out-of-range values are pulled
// to the nearest bound rather than rejected, so a slider pegged past the
// limit still does something sensible.
func (s Settings) Apply(p Patch) Settings {
	if p.ParticleCount != nil {
		s.ParticleCount = *p.ParticleCount
	}
	if p.Spread != nil {
		s.Spread = *p.Spread
	}
	if p.Speed != nil {
		s.Speed = *p.Speed
	}
	if p.Hue != nil {
		s.Hue = *p.Hue
	}
	if p.HueRange != nil {
		s.HueRange = *p.HueRange
	}
	if p.SizeBase != nil {
		s.SizeBase = *p.SizeBase
	}
	if p.SizeGain != nil {
		s.SizeGain = *p.SizeGain
	}
	if p.Text != nil {
		s.Text = *p.Text
	}
	return s.Clamped()
}

// Clamped returns a copy with every field forced into its declared range.
func (s Settings) Clamped() Settings {
	s.ParticleCount = clampInt(s.ParticleCount, MinParticles, MaxParticles)
	s.Spread = clamp(s.Spread, MinSpread, MaxSpread)
	s.Speed = clamp(s.Speed, MinSpeed, MaxSpeed)
	s.Hue = wrapHue(s.Hue)
	s.HueRange = clamp(s.HueRange, MinHueRange, MaxHueRange)
	s.SizeBase = clamp(s.SizeBase, MinSizeBase, MaxSizeBase)
	s.SizeGain = clamp(s.SizeGain, MinSizeGain, MaxSizeGain)
	s.Text = cleanText(s.Text)
	return s
}

// cleanText trims, caps the length and uppercases so text modes can assume a
// short, displayable string.
func cleanText(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}
	return strings.ToUpper(text)
}

// wrapHue keeps hue on the color wheel instead of clamping, so sweeping past
// red wraps around rather than sticking.
func wrapHue(h float64) float64 {
	h -= float64(int(h))
	if h < 0 {
		h++
	}
	return h
}

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
