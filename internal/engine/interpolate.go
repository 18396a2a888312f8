package engine

// Factors holds the per-channel interpolation coefficients, each in (0,1].
// Every frame the rendered state closes that fraction of its remaining gap
// to the target, so the distance decays geometrically and never overshoots.
// Positions get the most inertia; sizes and effects track faster.
type Factors struct {
	Position float64
	Size     float64
	Color    float64
	Camera   float64
	Effect   float64
}

// DefaultFactors returns the stock convergence rates.
func DefaultFactors() Factors {
	return Factors{
		Position: 0.12,
		Size:     0.22,
		Color:    0.16,
		Camera:   0.06,
		Effect:   0.1,
	}
}

// sanitized replaces out-of-range coefficients with their defaults so a bad
// config softens motion instead of freezing or exploding it.
func (f Factors) sanitized() Factors {
	def := DefaultFactors()
	if f.Position <= 0 || f.Position > 1 {
		f.Position = def.Position
	}
	if f.Size <= 0 || f.Size > 1 {
		f.Size = def.Size
	}
	if f.Color <= 0 || f.Color > 1 {
		f.Color = def.Color
	}
	if f.Camera <= 0 || f.Camera > 1 {
		f.Camera = def.Camera
	}
	if f.Effect <= 0 || f.Effect > 1 {
		f.Effect = def.Effect
	}
	return f
}

// approach moves current toward target by factor and returns the result.
func approach(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

// approachBuffer advances every element of current toward target in place.
// Extra elements on either side are left alone.
func approachBuffer(current, target []float32, factor float64) {
	n := len(current)
	if len(target) < n {
		n = len(target)
	}
	f := float32(factor)
	for i := 0; i < n; i++ {
		current[i] += (target[i] - current[i]) * f
	}
}

// Scalar is a single interpolated channel: a rendered value easing toward a
// target under the shared discipline.
type Scalar struct {
	Current float64
	Target  float64
}

// Snap sets both sides at once, skipping the ease-in.
func (s *Scalar) Snap(v float64) {
	s.Current = v
	s.Target = v
}

func (s *Scalar) advance(factor float64) {
	s.Current = approach(s.Current, s.Target, factor)
}
