package mode

import (
	"math/rand"
	"testing"

	"github.com/mgriesel/lumenfield/internal/params"
)

func TestGlyphPixelsKnownLetter(t *testing.T) {
	// 'I' is a 3-wide column glyph: top bar, stem, bottom bar.
	pixels, width := glyphPixels("I")
	if width != glyphCols {
		t.Fatalf("width=%d want=%d", width, glyphCols)
	}
	if len(pixels) != 11 {
		t.Fatalf("pixel count=%d want=11", len(pixels))
	}
	for _, px := range pixels {
		if px[0] < 0 || px[0] >= glyphCols || px[1] < 0 || px[1] >= glyphRows {
			t.Fatalf("pixel %v outside the cell", px)
		}
	}
}

func TestGlyphPixelsSpacingAndUnknownRunes(t *testing.T) {
	_, one := glyphPixels("A")
	_, two := glyphPixels("AA")
	if two != 2*glyphCols+1 {
		t.Fatalf("two glyphs width=%d want=%d", two, 2*glyphCols+1)
	}
	if one != glyphCols {
		t.Fatalf("one glyph width=%d want=%d", one, glyphCols)
	}

	// unknown runes reserve a blank cell
	px, width := glyphPixels("~")
	if len(px) != 0 {
		t.Fatalf("unknown rune should have no pixels, got %d", len(px))
	}
	if width != glyphCols {
		t.Fatalf("unknown rune width=%d want=%d", width, glyphCols)
	}

	if px, width := glyphPixels(""); len(px) != 0 || width != 0 {
		t.Fatalf("empty text should be empty, got %d pixels width %d", len(px), width)
	}
}

func TestMarqueeRelayoutsOnTextChange(t *testing.T) {
	m := NewMarquee()
	s := params.Defaults()
	rng := rand.New(rand.NewSource(1))

	const n = 256
	positions, colors := m.InitParticles(n, s, rng)
	base := make([]float32, 3*n)
	copy(base, positions)

	f := Frame{
		TargetPositions: positions,
		TargetSizes:     make([]float32, n),
		TargetColors:    colors,
		Base:            base,
		Count:           n,
		Settings:        s,
		Dt:              1.0 / 60.0,
	}
	m.Animate(f)
	before := make([]float32, 3*n)
	copy(before, f.TargetPositions)

	f.Settings.Text = "HI"
	m.Animate(f)
	if m.text != "HI" {
		t.Fatalf("marquee did not pick up the new text, still %q", m.text)
	}

	changed := false
	for i := range before {
		if before[i] != f.TargetPositions[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatalf("targets unchanged after text swap")
	}
}

func TestMarqueeHandlesEmptyTextAndTinyCounts(t *testing.T) {
	m := NewMarquee()
	s := params.Defaults()
	s.Text = ""
	rng := rand.New(rand.NewSource(2))

	positions, colors := m.InitParticles(64, s, rng)
	if len(positions) != 192 || len(colors) != 192 {
		t.Fatalf("empty text should still lay out buffers")
	}

	// fewer particles than glyph pixels samples the text evenly
	s.Text = "WIDE TEXT 123"
	m2 := NewMarquee()
	m2.InitParticles(64, s, rng)
	lit := 0
	for _, slot := range m2.slots {
		if slot.lit {
			lit++
		}
	}
	if lit != 64 {
		t.Fatalf("all 64 particles should be lit glyph cells, got %d", lit)
	}
}
