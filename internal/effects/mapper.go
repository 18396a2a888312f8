package effects

import "github.com/mgriesel/lumenfield/internal/analyzer"

// Safe operating ranges for the live post-processing values. React never
// returns a target outside them, whatever the preset or the audio does.
const (
	BloomMin = 0.0
	BloomMax = 3.0

	BloomRadiusMin = 0.0
	BloomRadiusMax = 4.0

	BloomThresholdMin = 0.0
	BloomThresholdMax = 1.0

	ColorShiftMin = 0.0
	ColorShiftMax = 1.0

	TrailDampMin = 0.45
	TrailDampMax = 0.98

	ExposureMin = 0.2
	ExposureMax = 2.5
)

// Audio-to-effect gains. Beats drive bloom, mids and highs drive color
// motion, sustained bass stretches trails.
const (
	bloomBeatGain    = 0.9
	bloomOverallGain = 0.5

	shiftMidGain  = 0.35
	shiftHighGain = 0.2

	trailBassGain = 0.12

	exposureOverallGain = 0.4
	exposureBeatGain    = 0.25
)

// Targets are the post-processing values the mapper wants this frame. They
// are targets, not final values: the engine interpolates the live state
// toward them so a beat reads as a swell rather than a pop.
type Targets struct {
	Bloom      float64 `json:"bloom"`
	ColorShift float64 `json:"colorShift"`
	TrailDamp  float64 `json:"trailDamp"`
	Exposure   float64 `json:"exposure"`
}

// React derives effect targets from the feature snapshot around the preset's
// baselines. It is stateless and pure: all temporal behavior lives upstream
// in the smoother and downstream in the interpolator, so the same snapshot
// and preset always produce the same targets.
func React(f analyzer.Features, p Preset) Targets {
	return Targets{
		Bloom: clamp(p.Bloom+
			f.BeatIntensity*bloomBeatGain+
			f.OverallSmooth*bloomOverallGain, BloomMin, BloomMax),

		ColorShift: clamp(p.ColorShift+
			f.MidSmooth*shiftMidGain+
			f.HighSmooth*shiftHighGain, ColorShiftMin, ColorShiftMax),

		TrailDamp: clamp(p.TrailDamp+
			f.BassSmooth*trailBassGain, TrailDampMin, TrailDampMax),

		Exposure: clamp(p.Exposure+
			f.OverallSmooth*exposureOverallGain+
			f.BeatIntensity*exposureBeatGain, ExposureMin, ExposureMax),
	}
}

// Resting returns the targets React produces for silence: the preset's own
// baselines clamped into range.
func Resting(p Preset) Targets {
	return React(analyzer.Features{}, p)
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
