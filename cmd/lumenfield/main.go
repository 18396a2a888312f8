package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/mgriesel/lumenfield/internal/app"
	"github.com/mgriesel/lumenfield/internal/audio"
	"github.com/mgriesel/lumenfield/internal/config"
	"github.com/mgriesel/lumenfield/internal/effects"
	"github.com/mgriesel/lumenfield/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		source     = flag.String("source", "", "Audio source (capture|file|synth)")
		device     = flag.String("audio-device", "", "PortAudio device name (substring match)")
		audioFile  = flag.String("audio-file", "", "WAV file to play and analyze (implies -source file)")
		loop       = flag.Bool("loop", false, "Restart file playback when it ends")
		listDevs   = flag.Bool("list-audio-devices", false, "List audio devices and exit")
		fftSize    = flag.Int("fft-size", 0, "FFT size (rounded up to a power of two)")

		fps       = flag.Float64("fps", 0, "Target frames per second")
		modeID    = flag.String("mode", "", "Initial mode id")
		presetID  = flag.String("preset", "", "Initial preset id")
		particles = flag.Int("particles", 0, "Particle count")
		seed      = flag.Int64("seed", 0, "Particle layout seed (0 seeds from the clock)")

		backend    = flag.String("backend", "", "Renderer backend (ansi|sdl)")
		palette    = flag.String("palette", "", "Glyph palette (default|box|lines|spark)")
		noColor    = flag.Bool("no-color", false, "Disable ANSI color output")
		hideStatus = flag.Bool("no-status", false, "Hide the status bar")

		serveWeb  = flag.Bool("web", false, "Serve the browser control panel")
		webListen = flag.String("web-listen", "", "Control panel listen address")

		debug       = flag.Bool("debug", false, "Enable verbose logging")
		profilePath = flag.String("profile", "", "Append per-frame timings to this CSV file")
	)

	flag.Parse()

	logger := log.New(os.Stdout, "[lumenfield] ", log.LstdFlags)
	if !*debug {
		logger.SetOutput(os.Stderr)
		logger.SetFlags(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		cfg = *loaded
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["source"] {
		cfg.Audio.Source = config.SourceKind(*source)
	}
	if set["audio-device"] {
		cfg.Audio.Device = *device
	}
	if set["audio-file"] {
		cfg.Audio.File = *audioFile
		if !set["source"] {
			cfg.Audio.Source = config.SourceFile
		}
	}
	if set["loop"] {
		cfg.Audio.Loop = *loop
	}
	if set["fft-size"] {
		cfg.Audio.FFTSize = *fftSize
	}
	if set["fps"] {
		cfg.Engine.FPS = *fps
	}
	if set["mode"] {
		cfg.Engine.Mode = *modeID
	}
	if set["preset"] {
		cfg.Engine.Preset = *presetID
	}
	if set["particles"] {
		cfg.Settings.ParticleCount = particles
	}
	if set["seed"] {
		cfg.Engine.Seed = *seed
	}
	if set["backend"] {
		cfg.Render.Backend = config.Backend(*backend)
	}
	if set["palette"] {
		cfg.Render.Palette = *palette
	}
	if set["no-color"] {
		cfg.Render.NoColor = *noColor
	}
	if set["no-status"] {
		cfg.Render.HideStatusBar = *hideStatus
	}
	if set["web"] {
		cfg.Web.Enabled = *serveWeb
	}
	if set["web-listen"] {
		cfg.Web.Listen = *webListen
		if !set["web"] {
			cfg.Web.Enabled = true
		}
	}

	if err := config.Validate(&cfg); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	needAudio := cfg.Audio.Source == config.SourceCapture || *listDevs
	if needAudio {
		if err := audio.Initialize(); err != nil {
			logger.Fatalf("initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
	}

	if *listDevs {
		devices, err := audio.ListDevices()
		if err != nil {
			logger.Fatalf("list devices: %v", err)
		}
		fmt.Println("Audio devices (* marks the default input):")
		for _, dev := range devices {
			fmt.Println(dev)
		}
		return
	}

	width, height := 80, 24
	if fd := int(os.Stdout.Fd()); fd >= 0 {
		if w, h, err := term.GetSize(fd); err == nil {
			if w > 0 {
				width = w
			}
			if h > 0 {
				height = h
			}
		}
	}

	a, err := app.New(app.Config{
		Source:        string(cfg.Audio.Source),
		Device:        cfg.Audio.Device,
		File:          cfg.Audio.File,
		Loop:          cfg.Audio.Loop,
		Window:        cfg.Audio.Window,
		FFTSize:       cfg.Audio.FFTSize,
		Mode:          cfg.Engine.Mode,
		Preset:        cfg.Engine.Preset,
		Presets:       allPresets(cfg),
		Settings:      cfg.Settings,
		Seed:          cfg.Engine.Seed,
		Width:         width,
		Height:        height,
		TargetFPS:     cfg.Engine.FPS,
		Palette:       cfg.Render.Palette,
		Backend:       string(cfg.Render.Backend),
		NoColor:       cfg.Render.NoColor,
		ShowStatusBar: !cfg.Render.HideStatusBar,
		ProfilePath:   *profilePath,
		Log:           logger,
	})
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if cfg.Web.Enabled {
		server := web.NewServer(a, logger)
		go func() {
			if err := server.Start(ctx, cfg.Web.Listen); err != nil {
				logger.Printf("web server: %v", err)
			}
		}()
	}

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}

// allPresets merges the builtin presets with any extras from the config
// file. An extra preset reusing a builtin id fails at startup.
func allPresets(cfg config.Config) []effects.Preset {
	if len(cfg.Presets) == 0 {
		return nil
	}
	return append(effects.BuiltinPresets(), cfg.Presets...)
}
