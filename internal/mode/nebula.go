package mode

import (
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/params"
)

// Nebula is a drifting dust cloud. Bass swells the whole cloud around its
// center, beats kick it outward, value noise keeps the drift organic.
type Nebula struct{}

// NewNebula returns the nebula mode.
func NewNebula() *Nebula { return &Nebula{} }

func (m *Nebula) Info() Info {
	return Info{
		ID:          "nebula",
		Name:        "Nebula",
		Description: "drifting dust cloud with bass swell",
	}
}

func (m *Nebula) InitParticles(n int, s params.Settings, rng *rand.Rand) ([]float32, []float32) {
	positions := make([]float32, 3*n)
	colors := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		positions[3*i] = float32(rng.NormFloat64() * s.Spread * 0.55)
		positions[3*i+1] = float32(rng.NormFloat64() * s.Spread * 0.3)
		positions[3*i+2] = float32(rng.NormFloat64() * s.Spread * 0.55)

		t := float64(i) / float64(n)
		setColor(colors, i, bandHue(s.Hue, s.HueRange, t), 0.7, 0.5+0.5*rng.Float64())
	}
	return positions, colors
}

func (m *Nebula) Animate(f Frame) {
	feat := f.Features
	swell := 1.0 + feat.BassSmooth*0.35 + feat.BeatIntensity*0.3
	size := f.Settings.SizeBase * (1 + feat.BassSmooth*f.Settings.SizeGain*0.5 + feat.BeatIntensity*0.7)

	for i := 0; i < f.Count; i++ {
		bx := float64(f.Base[3*i])
		by := float64(f.Base[3*i+1])
		bz := float64(f.Base[3*i+2])

		nx := fractalNoise(bx*0.22+f.Time*0.12, bz*0.22) * 0.9
		ny := fractalNoise(by*0.3-f.Time*0.08, bx*0.18) * 0.5
		nz := fractalNoise(bz*0.22, by*0.22+f.Time*0.1) * 0.9

		f.TargetPositions[3*i] = float32(bx*swell + nx)
		f.TargetPositions[3*i+1] = float32(by*swell + ny)
		f.TargetPositions[3*i+2] = float32(bz*swell + nz)

		t := float64(i) / float64(f.Count)
		hue := bandHue(f.Settings.Hue, f.Settings.HueRange, t) + feat.MidSmooth*0.08
		setColor(f.TargetColors, i, hue, 0.6+feat.HighSmooth*0.3, 0.45+feat.OverallSmooth*0.55)
		f.TargetSizes[i] = float32(size)
	}
}
