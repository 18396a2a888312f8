package effects

import (
	"fmt"
	"math"
)

// Preset is a named post-processing baseline. The mapper pushes Bloom,
// ColorShift, TrailDamp and Exposure around these baselines in response to
// audio; BloomRadius, BloomThreshold and ColorShiftAngle are static renderer
// hints a preset carries unchanged. A preset sets the resting look of a
// scene rather than a fixed one.
type Preset struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
	Bloom           float64 `json:"bloom" yaml:"bloom"`
	BloomRadius     float64 `json:"bloomRadius" yaml:"bloom_radius"`
	BloomThreshold  float64 `json:"bloomThreshold" yaml:"bloom_threshold"`
	ColorShift      float64 `json:"colorShift" yaml:"color_shift"`
	ColorShiftAngle float64 `json:"colorShiftAngle" yaml:"color_shift_angle"`
	TrailDamp       float64 `json:"trailDamp" yaml:"trail_damp"`
	Exposure        float64 `json:"exposure" yaml:"exposure"`
}

// Validate reports whether the preset can be registered.
func (p Preset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("preset needs an id")
	}
	return nil
}

// Clamped returns the preset with its baselines forced into the safe ranges,
// so a hand-edited config file cannot push the live values out of bounds
// before the mapper even runs.
func (p Preset) Clamped() Preset {
	p.Bloom = clamp(p.Bloom, BloomMin, BloomMax)
	p.BloomRadius = clamp(p.BloomRadius, BloomRadiusMin, BloomRadiusMax)
	p.BloomThreshold = clamp(p.BloomThreshold, BloomThresholdMin, BloomThresholdMax)
	p.ColorShift = clamp(p.ColorShift, ColorShiftMin, ColorShiftMax)
	p.ColorShiftAngle = wrapAngle(p.ColorShiftAngle)
	p.TrailDamp = clamp(p.TrailDamp, TrailDampMin, TrailDampMax)
	p.Exposure = clamp(p.Exposure, ExposureMin, ExposureMax)
	return p
}

// wrapAngle folds a hue angle in turns into [0, 1). Angles wrap rather than
// clamp so 1.25 and 0.25 mean the same base hue.
func wrapAngle(v float64) float64 {
	v = math.Mod(v, 1.0)
	if v < 0 {
		v += 1.0
	}
	return v
}

// BuiltinPresets returns the stock presets in display order.
func BuiltinPresets() []Preset {
	return []Preset{
		{
			ID:             "clean",
			Name:           "Clean",
			Description:    "neutral baseline, short trails",
			Bloom:          0.6,
			BloomRadius:    1.0,
			BloomThreshold: 0.6,
			ColorShift:     0.05,
			TrailDamp:      0.62,
			Exposure:       1.0,
		},
		{
			ID:              "neon",
			Name:            "Neon",
			Description:     "hot bloom and fast color motion",
			Bloom:           1.4,
			BloomRadius:     2.5,
			BloomThreshold:  0.35,
			ColorShift:      0.25,
			ColorShiftAngle: 0.78,
			TrailDamp:       0.7,
			Exposure:        1.25,
		},
		{
			ID:              "afterglow",
			Name:            "Afterglow",
			Description:     "long trails, slow color drift",
			Bloom:           0.9,
			BloomRadius:     1.5,
			BloomThreshold:  0.5,
			ColorShift:      0.1,
			ColorShiftAngle: 0.08,
			TrailDamp:       0.93,
			Exposure:        0.9,
		},
		{
			ID:             "strobe",
			Name:           "Strobe",
			Description:    "minimal trails, beat-heavy bloom",
			Bloom:          1.1,
			BloomRadius:    2.0,
			BloomThreshold: 0.25,
			ColorShift:     0.15,
			TrailDamp:      0.52,
			Exposure:       1.4,
		},
	}
}
