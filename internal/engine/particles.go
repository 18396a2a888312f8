package engine

// Field owns the shared particle buffers in their flat layouts: positions
// and colors as x,y,z / r,g,b triples, sizes one float per particle. The
// target buffers belong to the active mode, the rendered buffers to the
// interpolator; Base is the layout captured at the last activation and is
// read-only in between.
type Field struct {
	count int

	Base []float32

	TargetPositions []float32
	TargetSizes     []float32
	TargetColors    []float32

	Positions []float32
	Sizes     []float32
	Colors    []float32
}

// NewField allocates zeroed buffers for count particles.
func NewField(count int) *Field {
	if count < 1 {
		count = 1
	}
	return &Field{
		count:           count,
		Base:            make([]float32, 3*count),
		TargetPositions: make([]float32, 3*count),
		TargetSizes:     make([]float32, count),
		TargetColors:    make([]float32, 3*count),
		Positions:       make([]float32, 3*count),
		Sizes:           make([]float32, count),
		Colors:          make([]float32, 3*count),
	}
}

// Count returns the particle count.
func (f *Field) Count() int { return f.count }

// Activate installs a fresh mode layout: positions land in the target buffer
// and in Base, colors in the target colors, sizes reset to size. Rendered
// buffers are left alone; interpolation carries them to the new layout.
func (f *Field) Activate(positions, colors []float32, size float32) {
	copy(f.TargetPositions, positions)
	copy(f.Base, f.TargetPositions)
	copy(f.TargetColors, colors)
	for i := range f.TargetSizes {
		f.TargetSizes[i] = size
	}
}

// advance eases every rendered buffer toward its target.
func (f *Field) advance(factors Factors) {
	approachBuffer(f.Positions, f.TargetPositions, factors.Position)
	approachBuffer(f.Sizes, f.TargetSizes, factors.Size)
	approachBuffer(f.Colors, f.TargetColors, factors.Color)
}

// adoptFrom copies the overlapping prefix of another field's buffers, so a
// particle-count change keeps the survivors where they were instead of
// restarting everyone from the origin.
func (f *Field) adoptFrom(old *Field) {
	copy(f.Base, old.Base)
	copy(f.TargetPositions, old.TargetPositions)
	copy(f.TargetSizes, old.TargetSizes)
	copy(f.TargetColors, old.TargetColors)
	copy(f.Positions, old.Positions)
	copy(f.Sizes, old.Sizes)
	copy(f.Colors, old.Colors)
}
