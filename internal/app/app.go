// Package app owns the runtime: it builds the audio source, analysis
// pipeline, engine and renderer from one config, runs the frame loop, and
// exposes the control surface the web panel drives.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/mgriesel/lumenfield/internal/analyzer"
	"github.com/mgriesel/lumenfield/internal/audio"
	"github.com/mgriesel/lumenfield/internal/effects"
	"github.com/mgriesel/lumenfield/internal/engine"
	"github.com/mgriesel/lumenfield/internal/mode"
	"github.com/mgriesel/lumenfield/internal/params"
	"github.com/mgriesel/lumenfield/internal/render"
	"github.com/mgriesel/lumenfield/internal/web"
)

const (
	minFPS = 1.0
	maxFPS = 240.0
)

// Config configures the application runtime. Source selects where samples
// come from: "capture" (default), "file" or "synth".
type Config struct {
	Source string
	Device string
	File   string
	Loop   bool

	Window  int
	FFTSize int

	Mode     string
	Preset   string
	Presets  []effects.Preset
	Settings params.Patch
	Seed     int64

	Width         int
	Height        int
	TargetFPS     float64
	Palette       string
	Backend       string
	NoColor       bool
	ShowStatusBar bool
	ProfilePath   string
	Log           *log.Logger
}

type inputEvent int

const (
	inputEventNextMode inputEvent = iota
	inputEventNextPreset
	inputEventRandomize
	inputEventQuit
)

// App ties together the audio source, analysis, animation and rendering.
type App struct {
	cfg Config
	log *log.Logger

	source      audio.Source
	sourceLabel string
	fileDone    <-chan struct{}

	pipeline *analyzer.Pipeline
	renderer *render.Renderer
	profiler *profiler

	// mu guards the engine and the fields below it. The frame loop and the
	// web handlers both reach in.
	mu        sync.Mutex
	engine    *engine.Engine
	targetFPS float64
	fpsActual float64

	last         time.Time
	terminal     bool
	width        int
	height       int
	renderHeight int
	inputEvents  chan inputEvent
	rng          *rand.Rand
}

// New constructs the application using the provided configuration.
func New(cfg Config) (*App, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	cfg.TargetFPS = clampFPS(cfg.TargetFPS)
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "", log.LstdFlags)
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}

	terminal := !strings.EqualFold(cfg.Backend, "sdl")
	renderHeight := cfg.Height
	if terminal && cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}

	renderer, err := render.New(cfg.Width, renderHeight, cfg.Palette, cfg.Backend, !cfg.NoColor)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:          cfg,
		log:          cfg.Log,
		renderer:     renderer,
		profiler:     newProfiler(cfg.ProfilePath, cfg.Log),
		targetFPS:    cfg.TargetFPS,
		fpsActual:    cfg.TargetFPS,
		terminal:     terminal,
		width:        cfg.Width,
		height:       cfg.Height,
		renderHeight: renderHeight,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := app.openSource(); err != nil {
		renderer.Close()
		return nil, err
	}

	app.pipeline = analyzer.NewPipeline(analyzer.PipelineConfig{
		FrontEnd: analyzer.FrontEndConfig{
			SampleRate: app.source.SampleRate(),
			FFTSize:    cfg.FFTSize,
		},
	})

	eng, err := engine.New(engine.Config{
		Presets:  cfg.Presets,
		Settings: params.Defaults().Apply(cfg.Settings),
		Mode:     cfg.Mode,
		Preset:   cfg.Preset,
		Seed:     cfg.Seed,
	})
	if err != nil {
		app.source.Close()
		renderer.Close()
		return nil, err
	}
	app.engine = eng

	app.last = time.Now()
	return app, nil
}

func (a *App) openSource() error {
	switch strings.ToLower(a.cfg.Source) {
	case "", "capture":
		capture, err := audio.NewCapture(audio.CaptureConfig{
			DeviceName: a.cfg.Device,
			Window:     a.cfg.Window,
			Channels:   2,
		})
		if err != nil {
			return fmt.Errorf("audio capture: %w", err)
		}
		a.source = capture
		a.sourceLabel = capture.DeviceName()
		a.log.Printf("listening on %q @ %.0f Hz", capture.DeviceName(), capture.SampleRate())
	case "file":
		file, err := audio.OpenFile(audio.FileConfig{
			Path:   a.cfg.File,
			Window: a.cfg.Window,
			Loop:   a.cfg.Loop,
		})
		if err != nil {
			return fmt.Errorf("audio file: %w", err)
		}
		a.source = file
		a.sourceLabel = filepath.Base(a.cfg.File)
		a.fileDone = file.Done()
		a.log.Printf("playing %q @ %.0f Hz", a.cfg.File, file.SampleRate())
	case "synth":
		a.source = audio.NewSynth(a.cfg.Window)
		a.sourceLabel = "synth"
		a.log.Println("no audio input, using builtin synth")
	default:
		return fmt.Errorf("unknown audio source %q", a.cfg.Source)
	}
	return nil
}

// Run starts the frame loop until context cancellation, a quit key, a
// closed renderer window, or the end of file playback.
func (a *App) Run(ctx context.Context) error {
	period := time.Duration(float64(time.Second) / a.cfg.TargetFPS)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	if a.terminal {
		enterAltScreen()
		clearScreen()
		hideCursor()
		defer func() {
			showCursor()
			exitAltScreen()
		}()
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)
	a.ensureDimensions()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.fileDone:
			a.log.Println("playback finished")
			return nil
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			switch evt {
			case inputEventNextMode:
				a.nextMode()
			case inputEventNextPreset:
				a.nextPreset()
			case inputEventRandomize:
				a.randomizeVisuals()
			case inputEventQuit:
				return nil
			}
		case <-ticker.C:
			if p := a.framePeriod(); p != period {
				period = p
				ticker.Reset(period)
			}
			if err := a.step(); err != nil {
				if errors.Is(err, render.ErrRendererQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Close releases held resources and leaves the analysis state at rest.
func (a *App) Close() error {
	var first error
	if a.source != nil {
		first = a.source.Close()
		a.mu.Lock()
		a.pipeline.Reset()
		a.mu.Unlock()
	}
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := a.profiler.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

func (a *App) framePeriod() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Duration(float64(time.Second) / a.targetFPS)
}

func (a *App) step() error {
	a.ensureDimensions()

	now := time.Now()
	delta := now.Sub(a.last).Seconds()
	if delta <= 0 {
		delta = 1.0 / a.cfg.TargetFPS
	}
	a.last = now

	a.profiler.beginFrame()
	samples := a.source.Samples()

	a.mu.Lock()
	feat := a.pipeline.Tick(samples, delta)
	a.profiler.markSection("analyze")

	a.engine.Step(feat, delta)
	view := a.engine.View()
	a.profiler.markSection("animate")

	a.fpsActual += (1.0/delta - a.fpsActual) * 0.1
	fps := a.fpsActual
	modeID := a.engine.Mode().ID
	presetID := a.engine.Preset().ID
	a.mu.Unlock()

	frame := a.renderer.Render(view, feat, fps)
	a.profiler.markSection("render")

	status := fmt.Sprintf("%s | %s/%s", frame.Status, modeID, presetID)
	if a.sourceLabel != "" {
		status = fmt.Sprintf("%s | src=%s", status, a.sourceLabel)
	}

	if frame.Present != nil {
		if err := frame.Present(status); err != nil {
			return err
		}
	} else {
		moveCursorHome()
		for _, line := range frame.Lines {
			fmt.Println(line)
		}
		if a.cfg.ShowStatusBar {
			fmt.Println(statusBar(status, a.width))
		}
	}
	a.profiler.endFrame()
	return nil
}

func (a *App) ensureDimensions() {
	if !a.terminal {
		return
	}
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}

	renderHeight := h
	if a.cfg.ShowStatusBar && renderHeight > 1 {
		renderHeight--
	}
	if renderHeight <= 0 {
		renderHeight = 1
	}

	if w == a.width && h == a.height && renderHeight == a.renderHeight {
		return
	}

	a.width = w
	a.height = h
	a.renderHeight = renderHeight
	a.renderer.Resize(w, renderHeight)
}

func (a *App) startInputListener(ctx context.Context) {
	if !a.terminal {
		return
	}
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
				events <- inputEventQuit
				return
			case char == 'q' || char == 'Q':
				events <- inputEventQuit
				return
			case char == 'm' || char == 'M':
				select {
				case events <- inputEventNextMode:
				default:
				}
			case char == 'p' || char == 'P':
				select {
				case events <- inputEventNextPreset:
				default:
				}
			case char == 'r' || char == 'R':
				select {
				case events <- inputEventRandomize:
				default:
				}
			}
		}
	}()
}

func (a *App) nextMode() {
	a.mu.Lock()
	id := a.engine.NextMode()
	a.mu.Unlock()
	a.log.Printf("mode -> %s", id)
}

func (a *App) nextPreset() {
	a.mu.Lock()
	id := a.engine.NextPreset()
	a.mu.Unlock()
	a.log.Printf("preset -> %s", id)
}

// randomizeVisuals jumps to a random mode, preset and palette, preferring
// choices different from the current ones.
func (a *App) randomizeVisuals() {
	a.mu.Lock()
	modeIDs := ids(a.engine.Modes())
	presetIDs := presetIDs(a.engine.Presets())
	modeID := pickRandom(modeIDs, a.engine.Mode().ID, a.rng)
	presetID := pickRandom(presetIDs, a.engine.Preset().ID, a.rng)
	_ = a.engine.SwitchMode(modeID)
	_ = a.engine.SetPreset(presetID)
	a.mu.Unlock()

	palette := pickRandom(render.PaletteNames(), a.renderer.PaletteName(), a.rng)
	a.renderer.SetPalette(palette)

	a.log.Printf("randomize -> mode=%s preset=%s palette=%s", modeID, presetID, palette)
}

// Status implements web.Controller.
func (a *App) Status() web.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusLocked()
}

func (a *App) statusLocked() web.Status {
	return web.Status{
		Mode:     a.engine.Mode().ID,
		Preset:   a.engine.Preset().ID,
		Settings: a.engine.Settings(),
		Effects:  a.engine.Effects(),
		Features: a.pipeline.Last(),
		FPS:      a.fpsActual,
	}
}

// Modes implements web.Controller.
func (a *App) Modes() []mode.Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Modes()
}

// Presets implements web.Controller.
func (a *App) Presets() []effects.Preset {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Presets()
}

// Apply implements web.Controller. Changes land between frames; an unknown
// mode or preset id rejects the whole update.
func (a *App) Apply(u web.Update) (web.Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if u.Mode != nil {
		if err := a.engine.SwitchMode(*u.Mode); err != nil {
			return web.Status{}, err
		}
	}
	if u.Preset != nil {
		if err := a.engine.SetPreset(*u.Preset); err != nil {
			return web.Status{}, err
		}
	}
	if !u.Settings.Empty() {
		a.engine.ApplySettings(u.Settings)
	}
	if u.FPS != nil {
		a.targetFPS = clampFPS(*u.FPS)
	}
	return a.statusLocked(), nil
}

func clampFPS(v float64) float64 {
	if v < minFPS {
		return minFPS
	}
	if v > maxFPS {
		return maxFPS
	}
	return v
}

func ids(infos []mode.Info) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.ID
	}
	return out
}

func presetIDs(presets []effects.Preset) []string {
	out := make([]string, len(presets))
	for i, p := range presets {
		out[i] = p.ID
	}
	return out
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	return text + strings.Repeat(" ", padding)
}

func clearScreen() {
	fmt.Print("\x1b[2J")
	moveCursorHome()
}

func moveCursorHome() {
	fmt.Print("\x1b[H")
}

func hideCursor() {
	fmt.Print("\x1b[?25l")
}

func showCursor() {
	fmt.Print("\x1b[?25h")
}

func enterAltScreen() {
	fmt.Print("\x1b[?1049h")
}

func exitAltScreen() {
	fmt.Print("\x1b[?1049l\x1b[0m")
}

func pickRandom(options []string, current string, rng *rand.Rand) string {
	if len(options) == 0 {
		return current
	}
	if len(options) == 1 {
		return options[0]
	}
	var choice string
	for attempts := 0; attempts < 4; attempts++ {
		choice = options[rng.Intn(len(options))]
		if !strings.EqualFold(choice, current) {
			return choice
		}
	}
	return options[rng.Intn(len(options))]
}
