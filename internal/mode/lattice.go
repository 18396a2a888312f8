package mode

import (
	"math"
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/params"
)

// Lattice lays particles on a cubic grid and runs mid-driven waves through
// it. Beats light the whole structure up for a frame.
type Lattice struct{}

// NewLattice returns the lattice mode.
func NewLattice() *Lattice { return &Lattice{} }

func (m *Lattice) Info() Info {
	return Info{
		ID:          "lattice",
		Name:        "Lattice",
		Description: "cubic grid with traveling waves",
	}
}

// side returns the smallest cube edge that fits n points.
func latticeSide(n int) int {
	side := int(math.Cbrt(float64(n)))
	for side*side*side < n {
		side++
	}
	if side < 2 {
		side = 2
	}
	return side
}

func (m *Lattice) InitParticles(n int, s params.Settings, rng *rand.Rand) ([]float32, []float32) {
	positions := make([]float32, 3*n)
	colors := make([]float32, 3*n)

	side := latticeSide(n)
	step := 2 * s.Spread / float64(side-1)
	for i := 0; i < n; i++ {
		ix := i % side
		iy := (i / side) % side
		iz := i / (side * side)

		positions[3*i] = float32(-s.Spread + float64(ix)*step)
		positions[3*i+1] = float32(-s.Spread + float64(iy)*step)
		positions[3*i+2] = float32(-s.Spread + float64(iz)*step)

		setColor(colors, i, bandHue(s.Hue, s.HueRange, float64(iy)/float64(side-1)), 0.6, 0.6)
	}
	return positions, colors
}

func (m *Lattice) Animate(f Frame) {
	feat := f.Features
	amp := f.Settings.Spread * (0.12 + feat.MidSmooth*0.5)
	glow := 0.4 + feat.OverallSmooth*0.35 + feat.BeatIntensity*0.25
	size := f.Settings.SizeBase * (1 + feat.MidSmooth*f.Settings.SizeGain*0.4)

	for i := 0; i < f.Count; i++ {
		bx := float64(f.Base[3*i])
		by := float64(f.Base[3*i+1])
		bz := float64(f.Base[3*i+2])

		// plane wave traveling along x+z
		phase := (bx+bz)*0.45 - f.Time*2.2
		wave := math.Sin(phase) * amp

		f.TargetPositions[3*i] = float32(bx)
		f.TargetPositions[3*i+1] = float32(by + wave)
		f.TargetPositions[3*i+2] = float32(bz)

		crest := (math.Sin(phase) + 1) / 2
		hue := bandHue(f.Settings.Hue, f.Settings.HueRange, crest) + feat.HighSmooth*0.06
		setColor(f.TargetColors, i, hue, 0.55+crest*0.25, glow+crest*0.2)
		f.TargetSizes[i] = float32(size * (0.8 + crest*0.5))
	}
}
