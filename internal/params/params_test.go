package params

import "testing"

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func strp(v string) *string { return &v }

func TestDefaultsAreInBounds(t *testing.T) {
	s := Defaults()
	if s != s.Clamped() {
		t.Fatalf("defaults changed under clamping: %+v vs %+v", s, s.Clamped())
	}
}

func TestApplyEmptyPatchKeepsSettings(t *testing.T) {
	s := Defaults()
	if got := s.Apply(Patch{}); got != s {
		t.Fatalf("empty patch changed settings: %+v -> %+v", s, got)
	}
	if !(Patch{}).Empty() {
		t.Fatalf("zero patch should report empty")
	}
	if (Patch{Speed: floatp(1)}).Empty() {
		t.Fatalf("non-nil field should report non-empty")
	}
}

func TestApplyMergesOnlyProvidedFields(t *testing.T) {
	s := Defaults()
	got := s.Apply(Patch{Speed: floatp(2.0), Text: strp("hello")})

	if got.Speed != 2.0 {
		t.Fatalf("speed=%f want=2", got.Speed)
	}
	if got.Text != "HELLO" {
		t.Fatalf("text=%q want=HELLO", got.Text)
	}
	if got.ParticleCount != s.ParticleCount || got.Spread != s.Spread || got.Hue != s.Hue {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestApplyClampsOutOfRangeValues(t *testing.T) {
	s := Defaults()
	got := s.Apply(Patch{
		ParticleCount: intp(10_000_000),
		Spread:        floatp(-3),
		Speed:         floatp(99),
		SizeBase:      floatp(0),
	})

	if got.ParticleCount != MaxParticles {
		t.Fatalf("particleCount=%d want=%d", got.ParticleCount, MaxParticles)
	}
	if got.Spread != MinSpread {
		t.Fatalf("spread=%f want=%f", got.Spread, float64(MinSpread))
	}
	if got.Speed != MaxSpeed {
		t.Fatalf("speed=%f want=%f", got.Speed, float64(MaxSpeed))
	}
	if got.SizeBase != MinSizeBase {
		t.Fatalf("sizeBase=%f want=%f", got.SizeBase, MinSizeBase)
	}
}

func TestHueWrapsInsteadOfClamping(t *testing.T) {
	cases := map[float64]float64{
		0.25:  0.25,
		1.25:  0.25,
		-0.25: 0.75,
		2.0:   0.0,
	}
	for in, want := range cases {
		s := Defaults()
		got := s.Apply(Patch{Hue: floatp(in)})
		if diff := got.Hue - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("hue(%f)=%f want=%f", in, got.Hue, want)
		}
	}
}

func TestTextIsTrimmedCappedAndUppercased(t *testing.T) {
	long := " abcdefghijklmnopqrstuvwxyz0123456789 "
	s := Defaults().Apply(Patch{Text: &long})
	if len(s.Text) != MaxTextLen {
		t.Fatalf("text length=%d want=%d", len(s.Text), MaxTextLen)
	}
	if s.Text[0] != 'A' {
		t.Fatalf("text=%q should be trimmed and uppercased", s.Text)
	}
}
