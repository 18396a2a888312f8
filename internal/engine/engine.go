package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mgriesel/lumenfield/internal/analyzer"
	"github.com/mgriesel/lumenfield/internal/effects"
	"github.com/mgriesel/lumenfield/internal/mode"
	"github.com/mgriesel/lumenfield/internal/params"
)

// Steps longer than this are clamped, so a stall or a suspended terminal
// resumes with one softened frame instead of a teleport.
const maxStepSeconds = 0.25

// Engine advances the rendered visual state toward whatever the active mode
// and the effect mapper want each frame. It owns the particle field, the
// camera, the live effect values and the mode switch state machine. All
// methods must be called from the frame loop goroutine.
type Engine struct {
	modes   *mode.Registry
	presets map[string]effects.Preset
	order   []string

	settings params.Settings
	factors  Factors
	rng      *rand.Rand

	field  *Field
	camera Camera
	fx     EffectState
	yaw    float64

	active     mode.Mode
	activeInfo mode.Info
	aux        []*mode.AuxObject
	hidden     bool

	preset  effects.Preset
	elapsed float64
}

// Config assembles an engine. Zero fields fall back to the builtin registry,
// the builtin presets, default settings and factors, and a time seed.
type Config struct {
	Registry *mode.Registry
	Presets  []effects.Preset
	Settings params.Settings
	Factors  Factors
	Mode     string
	Preset   string
	Seed     int64
}

// New builds an engine and activates the initial mode.
func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		cfg.Registry = mode.Builtin()
	}
	if len(cfg.Registry.IDs()) == 0 {
		return nil, fmt.Errorf("mode registry is empty")
	}
	if len(cfg.Presets) == 0 {
		cfg.Presets = effects.BuiltinPresets()
	}
	if cfg.Settings == (params.Settings{}) {
		cfg.Settings = params.Defaults()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	e := &Engine{
		modes:    cfg.Registry,
		presets:  make(map[string]effects.Preset, len(cfg.Presets)),
		settings: cfg.Settings.Clamped(),
		factors:  cfg.Factors.sanitized(),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		camera:   newCamera(),
	}

	for _, p := range cfg.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		p = p.Clamped()
		if _, dup := e.presets[p.ID]; dup {
			return nil, fmt.Errorf("preset %q already defined", p.ID)
		}
		e.presets[p.ID] = p
		e.order = append(e.order, p.ID)
	}

	if cfg.Preset == "" {
		cfg.Preset = e.order[0]
	}
	if err := e.SetPreset(cfg.Preset); err != nil {
		return nil, err
	}
	rest := effects.Resting(e.preset)
	e.fx.Bloom.Snap(rest.Bloom)
	e.fx.ColorShift.Snap(rest.ColorShift)
	e.fx.TrailDamp.Snap(rest.TrailDamp)
	e.fx.Exposure.Snap(rest.Exposure)

	e.field = NewField(e.settings.ParticleCount)
	if cfg.Mode == "" {
		cfg.Mode = cfg.Registry.IDs()[0]
	}
	if err := e.SwitchMode(cfg.Mode); err != nil {
		return nil, err
	}
	return e, nil
}

// SwitchMode activates the mode with the given id. The rendered buffers are
// never reset here: old auxiliary objects are disposed, the new mode lays
// out fresh targets and Base, new auxiliary objects are created, and the
// hide flag is updated. An unknown id is an error and leaves the current
// mode running.
func (e *Engine) SwitchMode(id string) error {
	next, err := e.modes.Get(id)
	if err != nil {
		return err
	}

	if owner, ok := e.active.(mode.AuxOwner); ok {
		owner.DisposeAuxiliary()
		e.aux = nil
	}

	positions, colors := next.InitParticles(e.field.Count(), e.settings, e.rng)
	e.field.Activate(positions, colors, float32(e.settings.SizeBase))

	info := next.Info()
	if owner, ok := next.(mode.AuxOwner); ok {
		e.aux = owner.CreateAuxiliary()
	}
	e.hidden = info.Caps.Has(mode.CapHidesParticles)

	e.active = next
	e.activeInfo = info
	return nil
}

// Step advances the whole visual state by one frame: the active mode writes
// its targets, the camera and effect targets are derived from the features,
// then every rendered channel eases toward its target.
func (e *Engine) Step(feat analyzer.Features, dt float64) {
	if dt <= 0 {
		dt = 1.0 / 60.0
	} else if dt > maxStepSeconds {
		dt = maxStepSeconds
	}
	e.elapsed += dt * e.settings.Speed

	if e.active != nil {
		e.active.Animate(mode.Frame{
			TargetPositions: e.field.TargetPositions,
			TargetSizes:     e.field.TargetSizes,
			TargetColors:    e.field.TargetColors,
			Base:            e.field.Base,
			Count:           e.field.Count(),
			Features:        feat,
			Time:            e.elapsed,
			Dt:              dt,
			Settings:        e.settings,
		})
	}

	e.camera.retarget(feat.BassSmooth, feat.OverallSmooth, feat.BeatIntensity, e.settings.Speed)

	t := effects.React(feat, e.preset)
	e.fx.Bloom.Target = t.Bloom
	e.fx.ColorShift.Target = t.ColorShift
	e.fx.TrailDamp.Target = t.TrailDamp
	e.fx.Exposure.Target = t.Exposure

	e.field.advance(e.factors)
	e.camera.advance(e.factors.Camera)
	e.fx.advance(e.factors.Effect)
	e.yaw += e.camera.RotationSpeed.Current * dt
}

// ApplySettings merges a patch into the live settings and returns the
// clamped result. A particle-count change reallocates the field, keeping
// the overlapping prefix and asking the active mode for a layout at the new
// density.
func (e *Engine) ApplySettings(p params.Patch) params.Settings {
	next := e.settings.Apply(p)
	resize := next.ParticleCount != e.settings.ParticleCount
	e.settings = next

	if resize {
		old := e.field
		e.field = NewField(next.ParticleCount)
		e.field.adoptFrom(old)
		if e.active != nil {
			positions, colors := e.active.InitParticles(e.field.Count(), e.settings, e.rng)
			e.field.Activate(positions, colors, float32(e.settings.SizeBase))
		}
	}
	return e.settings
}

// Settings returns the live settings.
func (e *Engine) Settings() params.Settings { return e.settings }

// SetPreset selects a post-processing preset by id. The live effect values
// ease over to the new baselines; an unknown id is an error and keeps the
// current preset.
func (e *Engine) SetPreset(id string) error {
	p, ok := e.presets[id]
	if !ok {
		return fmt.Errorf("unknown preset %q", id)
	}
	e.preset = p
	return nil
}

// Preset returns the active preset.
func (e *Engine) Preset() effects.Preset { return e.preset }

// Presets returns every registered preset in definition order.
func (e *Engine) Presets() []effects.Preset {
	out := make([]effects.Preset, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.presets[id])
	}
	return out
}

// NextPreset cycles to the preset after the active one and returns its id.
func (e *Engine) NextPreset() string {
	for i, id := range e.order {
		if id == e.preset.ID {
			next := e.order[(i+1)%len(e.order)]
			e.preset = e.presets[next]
			return next
		}
	}
	return e.preset.ID
}

// Mode returns the active mode's Info.
func (e *Engine) Mode() mode.Info { return e.activeInfo }

// Modes returns every registered mode's Info.
func (e *Engine) Modes() []mode.Info { return e.modes.Infos() }

// NextMode switches to the mode after the active one and returns its id.
func (e *Engine) NextMode() string {
	id := e.modes.After(e.activeInfo.ID)
	if err := e.SwitchMode(id); err != nil {
		return e.activeInfo.ID
	}
	return id
}

// Effects returns the live post-processing values.
func (e *Engine) Effects() effects.Targets {
	return effects.Targets{
		Bloom:      e.fx.Bloom.Current,
		ColorShift: e.fx.ColorShift.Current,
		TrailDamp:  e.fx.TrailDamp.Current,
		Exposure:   e.fx.Exposure.Current,
	}
}

// View is the read-only frame handed to renderers. The slices alias the
// live buffers and are valid until the next Step.
type View struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
	Count     int

	Hidden bool
	Aux    []*mode.AuxObject

	CamX, CamY, CamZ float64
	Yaw, Pitch       float64

	Bloom, ColorShift, TrailDamp, Exposure float64

	// Static renderer hints from the active preset.
	BloomRadius, BloomThreshold, ColorShiftAngle float64
}

// View snapshots the rendered state for drawing.
func (e *Engine) View() View {
	return View{
		Positions: e.field.Positions,
		Colors:    e.field.Colors,
		Sizes:     e.field.Sizes,
		Count:     e.field.Count(),

		Hidden: e.hidden,
		Aux:    e.aux,

		CamX:  e.camera.X.Current,
		CamY:  e.camera.Y.Current,
		CamZ:  e.camera.Z.Current,
		Yaw:   e.yaw,
		Pitch: e.camera.Pitch.Current,

		Bloom:      e.fx.Bloom.Current,
		ColorShift: e.fx.ColorShift.Current,
		TrailDamp:  e.fx.TrailDamp.Current,
		Exposure:   e.fx.Exposure.Current,

		BloomRadius:     e.preset.BloomRadius,
		BloomThreshold:  e.preset.BloomThreshold,
		ColorShiftAngle: e.preset.ColorShiftAngle,
	}
}
