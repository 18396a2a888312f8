package app

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/mgriesel/lumenfield/internal/params"
	"github.com/mgriesel/lumenfield/internal/web"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{
		Source: "synth",
		Width:  40,
		Height: 12,
		Log:    log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return a
}

func TestNewWithSynthSource(t *testing.T) {
	a := newTestApp(t)

	st := a.Status()
	if st.Mode != "nebula" {
		t.Fatalf("initial mode = %q, want nebula", st.Mode)
	}
	if st.Preset == "" {
		t.Fatalf("initial preset is empty")
	}
	if st.Settings.ParticleCount != params.Defaults().ParticleCount {
		t.Fatalf("settings = %+v, want defaults", st.Settings)
	}
	if len(a.Modes()) == 0 || len(a.Presets()) == 0 {
		t.Fatalf("modes or presets listing is empty")
	}
}

func TestNewRejectsUnknownSource(t *testing.T) {
	_, err := New(Config{
		Source: "theremin",
		Log:    log.New(io.Discard, "", 0),
	})
	if err == nil || !strings.Contains(err.Error(), "theremin") {
		t.Fatalf("err = %v, want unknown source naming theremin", err)
	}
}

func TestApplyRoutesChanges(t *testing.T) {
	a := newTestApp(t)

	newMode := "vortex"
	newPreset := "neon"
	speed := 2.0
	fps := 30.0
	st, err := a.Apply(web.Update{
		Mode:     &newMode,
		Preset:   &newPreset,
		Settings: params.Patch{Speed: &speed},
		FPS:      &fps,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if st.Mode != "vortex" || st.Preset != "neon" {
		t.Fatalf("status = %+v", st)
	}
	if st.Settings.Speed != 2.0 {
		t.Fatalf("speed = %v, want 2", st.Settings.Speed)
	}
	if got, want := a.framePeriod(), time.Second/30; got != want {
		t.Fatalf("frame period = %v, want %v", got, want)
	}
}

func TestApplyRejectsUnknownMode(t *testing.T) {
	a := newTestApp(t)

	bad := "nope"
	if _, err := a.Apply(web.Update{Mode: &bad}); err == nil {
		t.Fatalf("unknown mode should error")
	}
	if st := a.Status(); st.Mode != "nebula" {
		t.Fatalf("failed apply changed the mode to %q", st.Mode)
	}
}

func TestApplyClampsFPS(t *testing.T) {
	a := newTestApp(t)

	fps := 100000.0
	if _, err := a.Apply(web.Update{FPS: &fps}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := a.framePeriod(), time.Duration(float64(time.Second)/maxFPS); got != want {
		t.Fatalf("frame period = %v, want %v", got, want)
	}
}

func TestStatusBar(t *testing.T) {
	if got := statusBar("abc", 6); got != "abc   " {
		t.Fatalf("padded = %q", got)
	}
	if got := statusBar("abcdef", 4); got != "abcd" {
		t.Fatalf("truncated = %q", got)
	}
	if got := statusBar("abc", 0); got != "abc" {
		t.Fatalf("zero width = %q", got)
	}
}

func TestPickRandomPrefersDifferent(t *testing.T) {
	a := newTestApp(t)

	options := []string{"alpha", "beta"}
	different := 0
	for i := 0; i < 50; i++ {
		switch got := pickRandom(options, "alpha", a.rng); got {
		case "beta":
			different++
		case "alpha":
		default:
			t.Fatalf("pick %d = %q, not an option", i, got)
		}
	}
	// Repeats the draw after four collisions, so a stray "alpha" is fine,
	// but most picks must avoid the current value.
	if different < 40 {
		t.Fatalf("only %d of 50 picks avoided the current value", different)
	}
	if got := pickRandom([]string{"solo"}, "solo", a.rng); got != "solo" {
		t.Fatalf("single option = %q", got)
	}
	if got := pickRandom(nil, "current", a.rng); got != "current" {
		t.Fatalf("no options = %q", got)
	}
}
