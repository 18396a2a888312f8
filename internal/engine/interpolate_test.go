package engine

import (
	"math"
	"testing"
)

func TestApproachFollowsGeometricDecay(t *testing.T) {
	const (
		factor = 0.25
		start  = 0.0
		target = 10.0
	)
	current := start
	for k := 1; k <= 60; k++ {
		current = approach(current, target, factor)
		want := target - (target-start)*math.Pow(1-factor, float64(k))
		if math.Abs(current-want) > 1e-9 {
			t.Fatalf("step %d: current=%v want=%v", k, current, want)
		}
	}
}

func TestApproachNeverOvershoots(t *testing.T) {
	for _, factor := range []float64{0.05, 0.3, 0.7, 0.99, 1.0} {
		current, target := -5.0, 3.0
		prev := math.Abs(target - current)
		for k := 0; k < 200; k++ {
			current = approach(current, target, factor)
			dist := math.Abs(target - current)
			if dist > prev+1e-12 {
				t.Fatalf("factor %v step %d: distance grew %v -> %v", factor, k, prev, dist)
			}
			prev = dist
		}
		if math.Abs(target-current) > 1e-6 {
			t.Fatalf("factor %v: did not converge, dist=%v", factor, math.Abs(target-current))
		}
	}
}

func TestApproachFactorOneSnaps(t *testing.T) {
	if got := approach(2, 9, 1); got != 9 {
		t.Fatalf("factor 1 should land exactly, got %v", got)
	}
}

func TestApproachBufferAdvancesEveryElement(t *testing.T) {
	current := []float32{0, 0, 0, 0}
	target := []float32{4, -4, 8, 0}
	approachBuffer(current, target, 0.5)

	want := []float32{2, -2, 4, 0}
	for i := range want {
		if current[i] != want[i] {
			t.Fatalf("elem %d: got %v want %v", i, current[i], want[i])
		}
	}
}

func TestApproachBufferToleratesLengthMismatch(t *testing.T) {
	current := []float32{0, 0, 0}
	approachBuffer(current, []float32{10}, 0.5)
	if current[0] != 5 || current[1] != 0 || current[2] != 0 {
		t.Fatalf("only the overlap should move, got %v", current)
	}
}

func TestScalarSnapAndAdvance(t *testing.T) {
	var s Scalar
	s.Snap(3)
	if s.Current != 3 || s.Target != 3 {
		t.Fatalf("snap should set both sides, got %+v", s)
	}
	s.Target = 5
	s.advance(0.5)
	if s.Current != 4 {
		t.Fatalf("advance: got %v want 4", s.Current)
	}
}

func TestFactorsSanitized(t *testing.T) {
	def := DefaultFactors()
	bad := Factors{Position: -1, Size: 2, Color: 0, Camera: 0.5, Effect: 1}
	got := bad.sanitized()

	if got.Position != def.Position || got.Size != def.Size || got.Color != def.Color {
		t.Fatalf("invalid coefficients should fall back to defaults, got %+v", got)
	}
	if got.Camera != 0.5 || got.Effect != 1 {
		t.Fatalf("valid coefficients should survive, got %+v", got)
	}
}
