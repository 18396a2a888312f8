package mode

import (
	"math"
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/params"
)

// Marquee spells the text setting out of particles on a dot-matrix plane.
// Particles assigned to glyph cells hold the letterforms and pop on beats;
// the rest scatter into a dim backdrop. The layout rebuilds itself whenever
// the text or the particle count changes.
type Marquee struct {
	text  string
	count int
	width int
	slots []marqueeSlot
}

type marqueeSlot struct {
	x, y float64
	lit  bool
}

// NewMarquee returns the marquee mode.
func NewMarquee() *Marquee { return &Marquee{} }

func (m *Marquee) Info() Info {
	return Info{
		ID:          "marquee",
		Name:        "Marquee",
		Description: "particle lettering from the text setting",
		Caps:        CapTextInput,
	}
}

func (m *Marquee) InitParticles(n int, s params.Settings, rng *rand.Rand) ([]float32, []float32) {
	m.layout(s.Text, n)

	positions := make([]float32, 3*n)
	colors := make([]float32, 3*n)
	scale := m.cellScale(s)
	for i, slot := range m.slots {
		if slot.lit {
			positions[3*i] = float32(slot.x * scale)
			positions[3*i+1] = float32(slot.y * scale)
			positions[3*i+2] = 0
			setColor(colors, i, s.Hue, 0.85, 0.95)
			continue
		}
		positions[3*i] = float32(rng.NormFloat64() * s.Spread)
		positions[3*i+1] = float32(rng.NormFloat64() * s.Spread * 0.5)
		positions[3*i+2] = float32(-2 - rng.Float64()*s.Spread*0.5)
		setColor(colors, i, s.Hue+0.4, 0.3, 0.2)
	}
	return positions, colors
}

func (m *Marquee) Animate(f Frame) {
	if f.Settings.Text != m.text || f.Count != m.count {
		m.layout(f.Settings.Text, f.Count)
	}

	feat := f.Features
	scale := m.cellScale(f.Settings)
	pop := feat.BeatIntensity * 1.4
	wobble := 0.1 + feat.HighSmooth*0.3

	for i := 0; i < f.Count && i < len(m.slots); i++ {
		slot := m.slots[i]
		if slot.lit {
			jx := math.Sin(f.Time*3.1+float64(i)) * wobble * 0.3
			jy := math.Cos(f.Time*2.7+float64(i)*1.7) * wobble * 0.3

			f.TargetPositions[3*i] = float32(slot.x*scale + jx)
			f.TargetPositions[3*i+1] = float32(slot.y*scale + jy)
			f.TargetPositions[3*i+2] = float32(pop)

			setColor(f.TargetColors, i, f.Settings.Hue+feat.MidSmooth*0.1, 0.85, 0.75+feat.BeatIntensity*0.25)
			f.TargetSizes[i] = float32(f.Settings.SizeBase * (1.1 + feat.BassSmooth*f.Settings.SizeGain*0.4 + pop*0.3))
			continue
		}

		bx := float64(f.Base[3*i])
		by := float64(f.Base[3*i+1])
		bz := float64(f.Base[3*i+2])
		drift := fractalNoise(bx*0.2+f.Time*0.1, by*0.2) * 0.6

		f.TargetPositions[3*i] = float32(bx + drift)
		f.TargetPositions[3*i+1] = float32(by + drift*0.4)
		f.TargetPositions[3*i+2] = float32(bz)
		setColor(f.TargetColors, i, f.Settings.Hue+0.4, 0.3, 0.1+feat.OverallSmooth*0.2)
		f.TargetSizes[i] = float32(f.Settings.SizeBase * 0.4)
	}
}

// layout assigns particles to glyph cells. With more particles than cells
// the extras become backdrop; with fewer, cells are sampled evenly so the
// text stays legible at any density.
func (m *Marquee) layout(text string, count int) {
	m.text = text
	m.count = count
	m.slots = make([]marqueeSlot, count)

	pixels, width := glyphPixels(text)
	m.width = width
	if len(pixels) == 0 {
		return
	}

	lit := count
	if len(pixels) < lit {
		lit = len(pixels)
	}
	for i := 0; i < lit; i++ {
		// even sampling keeps every letter partially lit when short
		px := pixels[i*len(pixels)/lit]
		m.slots[i] = marqueeSlot{
			x:   float64(px[0]) - float64(width)/2,
			y:   float64(glyphRows)/2 - float64(px[1]),
			lit: true,
		}
	}
}

// cellScale sizes the dot matrix so the text spans the spread setting.
func (m *Marquee) cellScale(s params.Settings) float64 {
	if m.width == 0 {
		return 1
	}
	return 2 * s.Spread / float64(m.width)
}
