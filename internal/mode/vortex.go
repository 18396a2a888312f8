package mode

import (
	"math"
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/params"
)

const (
	vortexArms       = 3
	vortexRingCount  = 2
	vortexRingPoints = 96
)

// Vortex spins particles along logarithmic spiral arms and owns a pair of
// halo rings as auxiliary objects. Beats contract the spiral and flare the
// rings.
type Vortex struct {
	rings []*AuxObject
}

// NewVortex returns the vortex mode.
func NewVortex() *Vortex { return &Vortex{} }

func (m *Vortex) Info() Info {
	return Info{
		ID:          "vortex",
		Name:        "Vortex",
		Description: "spiral arms with halo rings",
		Caps:        CapAuxiliary,
	}
}

func (m *Vortex) InitParticles(n int, s params.Settings, rng *rand.Rand) ([]float32, []float32) {
	positions := make([]float32, 3*n)
	colors := make([]float32, 3*n)

	for i := 0; i < n; i++ {
		arm := i % vortexArms
		t := float64(i) / float64(n)

		radius := s.Spread * math.Pow(t, 0.7)
		angle := t*6*math.Pi + float64(arm)*2*math.Pi/vortexArms
		height := rng.NormFloat64() * s.Spread * 0.08 * (1 - t)

		positions[3*i] = float32(math.Cos(angle) * radius)
		positions[3*i+1] = float32(height)
		positions[3*i+2] = float32(math.Sin(angle) * radius)

		setColor(colors, i, bandHue(s.Hue, s.HueRange, t), 0.8, 0.9-0.4*t)
	}
	return positions, colors
}

func (m *Vortex) Animate(f Frame) {
	feat := f.Features
	spin := f.Time * (0.4 + feat.OverallSmooth*1.4)
	contract := 1 - feat.BeatIntensity*0.18
	size := f.Settings.SizeBase * (1 + feat.BassSmooth*f.Settings.SizeGain*0.5)

	for i := 0; i < f.Count; i++ {
		bx := float64(f.Base[3*i])
		by := float64(f.Base[3*i+1])
		bz := float64(f.Base[3*i+2])

		r := math.Hypot(bx, bz) * contract
		angle := math.Atan2(bz, bx) + spin

		f.TargetPositions[3*i] = float32(math.Cos(angle) * r)
		f.TargetPositions[3*i+1] = float32(by * (1 + feat.MidSmooth*0.6))
		f.TargetPositions[3*i+2] = float32(math.Sin(angle) * r)

		t := float64(i) / float64(f.Count)
		setColor(f.TargetColors, i, bandHue(f.Settings.Hue, f.Settings.HueRange, t)+feat.HighSmooth*0.07, 0.8, 0.5+feat.OverallSmooth*0.5)
		// inner particles run larger so the core glows
		f.TargetSizes[i] = float32(size * (1.4 - 0.8*t))
	}

	m.animateRings(f)
}

// CreateAuxiliary allocates the halo rings. Their buffers are filled on the
// next Animate, which also keeps them in sync with the live settings.
func (m *Vortex) CreateAuxiliary() []*AuxObject {
	m.rings = make([]*AuxObject, vortexRingCount)
	for i := range m.rings {
		m.rings[i] = NewAuxObject(vortexRingPoints)
	}
	return m.rings
}

// DisposeAuxiliary drops the rings; the engine stops rendering them.
func (m *Vortex) DisposeAuxiliary() {
	m.rings = nil
}

func (m *Vortex) animateRings(f Frame) {
	feat := f.Features
	for ri, ring := range m.rings {
		baseR := f.Settings.Spread * (1.1 + 0.25*float64(ri))
		r := baseR * (1 + feat.BeatIntensity*0.2)
		tilt := 0.35 * float64(1+ri)
		hue := f.Settings.Hue + 0.1 + 0.08*float64(ri)
		glow := 0.35 + feat.BeatIntensity*0.6 + feat.HighSmooth*0.2

		for k := 0; k < ring.Count(); k++ {
			theta := 2*math.Pi*float64(k)/float64(ring.Count()) + f.Time*(0.3+0.15*float64(ri))
			y := math.Sin(theta*2+f.Time) * tilt

			ring.Positions[3*k] = float32(math.Cos(theta) * r)
			ring.Positions[3*k+1] = float32(y)
			ring.Positions[3*k+2] = float32(math.Sin(theta) * r)
			setColor(ring.Colors, k, hue, 0.6, glow)
			ring.Sizes[k] = float32(f.Settings.SizeBase * (0.7 + feat.BeatIntensity*0.8))
		}
	}
}
