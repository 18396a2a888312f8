//go:build !sdl

package render

import (
	"errors"

	"github.com/mgriesel/lumenfield/internal/analyzer"
	"github.com/mgriesel/lumenfield/internal/engine"
)

type sdlState struct{}

func (r *Renderer) initSDL() error {
	return errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func (r *Renderer) renderSDL(v engine.View, feat analyzer.Features, fps float64) Frame {
	return Frame{
		Status: "SDL backend unavailable (build without -tags sdl)",
		Present: func(string) error {
			return ErrRendererQuit
		},
	}
}

func (r *Renderer) resizeSDL() {}

func (r *Renderer) closeSDL() error { return nil }

// SupportsSDL reports whether this binary carries the SDL backend.
func SupportsSDL() bool { return false }
