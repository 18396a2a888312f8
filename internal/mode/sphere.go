package mode

import (
	"math"
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/params"
)

// Sphere arranges particles on a fibonacci sphere that breathes with bass
// and shivers at the surface with highs.
type Sphere struct{}

// NewSphere returns the sphere mode.
func NewSphere() *Sphere { return &Sphere{} }

func (m *Sphere) Info() Info {
	return Info{
		ID:          "sphere",
		Name:        "Pulse Sphere",
		Description: "breathing sphere shell",
	}
}

func (m *Sphere) InitParticles(n int, s params.Settings, rng *rand.Rand) ([]float32, []float32) {
	positions := make([]float32, 3*n)
	colors := make([]float32, 3*n)

	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)

		positions[3*i] = float32(math.Cos(theta) * r * s.Spread)
		positions[3*i+1] = float32(y * s.Spread)
		positions[3*i+2] = float32(math.Sin(theta) * r * s.Spread)

		// hue sweeps pole to pole
		setColor(colors, i, bandHue(s.Hue, s.HueRange, (y+1)/2), 0.75, 0.75)
	}
	return positions, colors
}

func (m *Sphere) Animate(f Frame) {
	feat := f.Features
	radius := f.Settings.Spread * (1 + 0.22*feat.BassSmooth + 0.3*feat.BeatIntensity)
	shiver := feat.HighSmooth * f.Settings.Spread * 0.08
	size := f.Settings.SizeBase * (1 + feat.HighSmooth*f.Settings.SizeGain*0.4 + feat.BeatIntensity*0.5)

	for i := 0; i < f.Count; i++ {
		bx := float64(f.Base[3*i])
		by := float64(f.Base[3*i+1])
		bz := float64(f.Base[3*i+2])

		norm := math.Sqrt(bx*bx + by*by + bz*bz)
		if norm == 0 {
			norm = 1
		}
		r := radius
		if shiver > 0 {
			r += fractalNoise(bx*0.6+f.Time*0.7, by*0.6-bz*0.3) * shiver
		}

		f.TargetPositions[3*i] = float32(bx / norm * r)
		f.TargetPositions[3*i+1] = float32(by / norm * r)
		f.TargetPositions[3*i+2] = float32(bz / norm * r)

		hue := bandHue(f.Settings.Hue, f.Settings.HueRange, (by/norm+1)/2) + f.Time*0.01 + feat.MidSmooth*0.05
		setColor(f.TargetColors, i, hue, 0.7, 0.55+feat.OverallSmooth*0.45)
		f.TargetSizes[i] = float32(size)
	}
}
