package mode

import (
	"fmt"
	"math/rand"

	"github.com/mgriesel/lumenfield/internal/analyzer"
	"github.com/mgriesel/lumenfield/internal/params"
)

// Capability flags declare the optional behaviors a mode supports. The
// engine and the control surfaces consult the flags instead of probing for
// interfaces, so a mode must declare what it implements.
type Capability uint8

const (
	// CapAuxiliary marks modes that own extra renderables beyond the
	// shared particle field. Requires the AuxOwner interface.
	CapAuxiliary Capability = 1 << iota
	// CapTextInput marks modes that render the text setting.
	CapTextInput
	// CapHidesParticles marks modes whose frame hides the shared field,
	// leaving only auxiliary objects visible.
	CapHidesParticles
)

// Has reports whether all bits of flag are set.
func (c Capability) Has(flag Capability) bool { return c&flag == flag }

// Info identifies a mode to the control surfaces.
type Info struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Caps        Capability `json:"caps"`
}

// Frame carries everything a mode may touch during one animation step. The
// target slices are written in place; Base is the layout captured at
// activation and is read-only. Time is already scaled by the speed setting.
type Frame struct {
	TargetPositions []float32
	TargetSizes     []float32
	TargetColors    []float32
	Base            []float32

	Count    int
	Features analyzer.Features
	Time     float64
	Dt       float64
	Settings params.Settings
}

// Mode is a pluggable visualization strategy. InitParticles runs once per
// activation and returns the fresh layout; Animate runs every frame and
// writes the target state the engine then eases the rendered state toward.
type Mode interface {
	Info() Info

	// InitParticles returns positions and colors for n particles, both of
	// length 3n, laid out for this mode's opening look. rng is the only
	// randomness source so activations can be reproduced under test.
	InitParticles(n int, s params.Settings, rng *rand.Rand) (positions, colors []float32)

	// Animate writes this frame's targets in place. It must not resize
	// or reallocate the frame's slices.
	Animate(f Frame)
}

// AuxOwner is the companion interface for CapAuxiliary. CreateAuxiliary runs
// after InitParticles on activation; DisposeAuxiliary runs when the mode is
// switched away from, before the next mode initializes. The returned objects
// stay owned by the mode, which may rewrite their buffers during Animate.
type AuxOwner interface {
	CreateAuxiliary() []*AuxObject
	DisposeAuxiliary()
}

// AuxObject is an extra point group a mode renders alongside (or instead of)
// the shared particle field. Its buffers are drawn as-is each frame, without
// target interpolation; easing is the owning mode's business.
type AuxObject struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
}

// NewAuxObject allocates an aux group of n points.
func NewAuxObject(n int) *AuxObject {
	return &AuxObject{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Sizes:     make([]float32, n),
	}
}

// Count returns the number of points in the group.
func (a *AuxObject) Count() int { return len(a.Sizes) }

// Registry holds the selectable modes in registration order.
type Registry struct {
	modes map[string]Mode
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modes: map[string]Mode{}}
}

// Register adds a mode, rejecting duplicate ids and modes whose declared
// capabilities disagree with the interfaces they actually implement. The
// check runs here, once, so the engine can trust the flags at switch time.
func (r *Registry) Register(m Mode) error {
	info := m.Info()
	if info.ID == "" {
		return fmt.Errorf("mode needs an id")
	}
	if _, dup := r.modes[info.ID]; dup {
		return fmt.Errorf("mode %q already registered", info.ID)
	}

	_, hasAux := m.(AuxOwner)
	if info.Caps.Has(CapAuxiliary) && !hasAux {
		return fmt.Errorf("mode %q declares auxiliary objects but does not implement AuxOwner", info.ID)
	}
	if hasAux && !info.Caps.Has(CapAuxiliary) {
		return fmt.Errorf("mode %q implements AuxOwner without declaring the capability", info.ID)
	}
	if info.Caps.Has(CapHidesParticles) && !info.Caps.Has(CapAuxiliary) {
		return fmt.Errorf("mode %q would render nothing: hiding particles requires auxiliary objects", info.ID)
	}

	r.modes[info.ID] = m
	r.order = append(r.order, info.ID)
	return nil
}

// Get returns the mode for id.
func (r *Registry) Get(id string) (Mode, error) {
	m, ok := r.modes[id]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", id)
	}
	return m, nil
}

// IDs returns the mode ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Infos returns every mode's Info in registration order.
func (r *Registry) Infos() []Info {
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modes[id].Info())
	}
	return out
}

// After returns the id following the given one, wrapping around, so the
// keyboard can cycle modes. An unknown id yields the first mode.
func (r *Registry) After(id string) string {
	if len(r.order) == 0 {
		return ""
	}
	for i, cur := range r.order {
		if cur == id {
			return r.order[(i+1)%len(r.order)]
		}
	}
	return r.order[0]
}

// Builtin returns a registry with every stock mode registered.
func Builtin() *Registry {
	r := NewRegistry()
	for _, m := range []Mode{
		NewNebula(),
		NewSphere(),
		NewLattice(),
		NewVortex(),
		NewAurora(),
		NewMarquee(),
	} {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}
