package mode

import (
	"math"
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/params"
)

const (
	auroraRibbons      = 3
	auroraRibbonPoints = 160
)

// Aurora hides the shared particle field and renders three band-driven light
// ribbons as auxiliary objects: bass, mid and high each get a curtain whose
// height follows that band's smoothed energy.
type Aurora struct {
	ribbons []*AuxObject
}

// NewAurora returns the aurora mode.
func NewAurora() *Aurora { return &Aurora{} }

func (m *Aurora) Info() Info {
	return Info{
		ID:          "aurora",
		Name:        "Aurora",
		Description: "spectral light curtains",
		Caps:        CapAuxiliary | CapHidesParticles,
	}
}

// InitParticles still supplies a well-formed layout even though the field is
// hidden while this mode is active; the buffers keep easing underneath so the
// next mode switch starts from sane state.
func (m *Aurora) InitParticles(n int, s params.Settings, rng *rand.Rand) ([]float32, []float32) {
	positions := make([]float32, 3*n)
	colors := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		positions[3*i] = float32((rng.Float64()*2 - 1) * s.Spread)
		positions[3*i+1] = float32((rng.Float64()*2 - 1) * s.Spread * 0.4)
		positions[3*i+2] = float32((rng.Float64()*2 - 1) * s.Spread)
		setColor(colors, i, s.Hue, 0.4, 0.15)
	}
	return positions, colors
}

func (m *Aurora) Animate(f Frame) {
	// keep the hidden field resting at its base layout
	copy(f.TargetPositions, f.Base)
	for i := 0; i < f.Count; i++ {
		f.TargetSizes[i] = float32(f.Settings.SizeBase * 0.5)
	}

	feat := f.Features
	levels := [auroraRibbons]float64{feat.BassSmooth, feat.MidSmooth, feat.HighSmooth}
	for ri, ribbon := range m.ribbons {
		level := levels[ri%auroraRibbons]
		depth := (float64(ri) - 1) * f.Settings.Spread * 0.45
		hue := f.Settings.Hue + float64(ri)*0.12
		height := f.Settings.Spread * (0.25 + level*1.1)

		for k := 0; k < ribbon.Count(); k++ {
			t := float64(k) / float64(ribbon.Count()-1)
			x := (t*2 - 1) * f.Settings.Spread * 1.3
			ripple := fractalNoise(t*3.5+f.Time*0.25, float64(ri)*7.3) * f.Settings.Spread * 0.2
			sway := math.Sin(t*4*math.Pi+f.Time*0.8+float64(ri)) * 0.4

			ribbon.Positions[3*k] = float32(x)
			ribbon.Positions[3*k+1] = float32(height*envelopeWindow(t) + ripple)
			ribbon.Positions[3*k+2] = float32(depth + sway)

			setColor(ribbon.Colors, k, hue+t*0.05, 0.7, 0.25+level*0.65+feat.BeatIntensity*0.1)
			ribbon.Sizes[k] = float32(f.Settings.SizeBase * (0.8 + level*1.2))
		}
	}
}

// CreateAuxiliary allocates the ribbons; Animate fills them.
func (m *Aurora) CreateAuxiliary() []*AuxObject {
	m.ribbons = make([]*AuxObject, auroraRibbons)
	for i := range m.ribbons {
		m.ribbons[i] = NewAuxObject(auroraRibbonPoints)
	}
	return m.ribbons
}

// DisposeAuxiliary drops the ribbons.
func (m *Aurora) DisposeAuxiliary() {
	m.ribbons = nil
}

// envelopeWindow fades the curtain toward its horizontal ends.
func envelopeWindow(t float64) float64 {
	return math.Sin(t * math.Pi)
}
