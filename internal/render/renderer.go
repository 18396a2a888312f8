package render

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/mgriesel/lumenfield/internal/analyzer"
	"github.com/mgriesel/lumenfield/internal/engine"
)

// ErrRendererQuit is returned by a Frame's Present when the user closed the
// output (SDL window close). The run loop treats it as a quit request.
var ErrRendererQuit = errors.New("renderer requested quit")

type backendKind int

const (
	backendANSI backendKind = iota
	backendSDL
)

const (
	// nearClip drops particles this close to (or behind) the camera.
	nearClip = 0.5

	// cellAspect compensates terminal cells being about twice as tall as
	// they are wide.
	cellAspect = 2.0

	// splatBrightness scales a size-1 particle's contribution at depth 1.
	splatBrightness = 8.0

	// crossSpill is the fraction of a splat bled into the four neighbor
	// cells, softening single-cell points.
	crossSpill = 0.22

	// bloomSpill scales how much over-threshold light leaks outward.
	bloomSpill = 0.35

	// shiftSwing is the widest hue swing the live color-shift amount adds
	// on top of the preset's base angle, in turns.
	shiftSwing = 0.5
)

// Renderer projects the engine's rendered buffers into a cell grid and
// emits it as ANSI terminal lines, or hands it to the SDL backend when one
// is compiled in. It owns the trail accumulation buffers, so effect state
// like TrailDamp acts here.
type Renderer struct {
	width   int
	height  int
	useANSI bool

	palette     []rune
	paletteName string

	backend backendKind
	sdl     *sdlState

	// accum carries light across frames (trails); out is the displayed
	// frame after bloom. Both are RGB triples per cell.
	accum []float64
	out   []float64

	statusBuilder strings.Builder
}

// Frame is one rendered frame. ANSI frames carry Lines; SDL frames carry a
// Present closure instead, called by the run loop after the status text is
// final.
type Frame struct {
	Lines   []string
	Status  string
	Present func(status string) error
}

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// New creates a Renderer. backendName selects "ansi" or "sdl"; the SDL
// backend needs a binary built with -tags sdl and fails here otherwise.
func New(width, height int, paletteName, backendName string, useANSI bool) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d height=%d", width, height)
	}

	r := &Renderer{
		width:       width,
		height:      height,
		useANSI:     useANSI,
		palette:     Palette(paletteName),
		paletteName: paletteName,
	}
	r.allocate()

	if strings.EqualFold(backendName, "sdl") {
		if err := r.initSDL(); err != nil {
			return nil, err
		}
		r.backend = backendSDL
		r.useANSI = false
	}
	return r, nil
}

// PaletteName returns the active glyph ramp's name.
func (r *Renderer) PaletteName() string { return r.paletteName }

// SetPalette switches the glyph ramp.
func (r *Renderer) SetPalette(name string) {
	r.palette = Palette(name)
	r.paletteName = name
}

// Resize updates the cell grid dimensions. Trails are cleared because the
// old light field has no meaningful mapping onto the new grid.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height
	r.allocate()
	r.resizeSDL()
}

// Close releases backend resources.
func (r *Renderer) Close() error {
	return r.closeSDL()
}

func (r *Renderer) allocate() {
	r.accum = make([]float64, r.width*r.height*3)
	r.out = make([]float64, r.width*r.height*3)
}

// Render projects the view into the cell grid and emits a frame. The
// sequence per frame: decay trails, splat particles and aux objects, spill
// bloom, then emit with hue rotation and exposure applied.
func (r *Renderer) Render(v engine.View, feat analyzer.Features, fps float64) Frame {
	if r.width <= 0 || r.height <= 0 {
		return Frame{}
	}

	r.decay(v.TrailDamp)

	if !v.Hidden {
		r.splat(v, v.Positions, v.Colors, v.Sizes, v.Count)
	}
	for _, aux := range v.Aux {
		if aux != nil {
			r.splat(v, aux.Positions, aux.Colors, aux.Sizes, aux.Count())
		}
	}

	r.bloom(v.Bloom, v.BloomRadius, v.BloomThreshold)

	if r.backend == backendSDL {
		return r.renderSDL(v, feat, fps)
	}
	return r.emitANSI(v, feat, fps)
}

func (r *Renderer) decay(damp float64) {
	if damp < 0 {
		damp = 0
	} else if damp > 1 {
		damp = 1
	}
	for i := range r.accum {
		r.accum[i] *= damp
	}
}

// splat projects each point and adds its light into the accumulation grid.
func (r *Renderer) splat(v engine.View, positions, colors, sizes []float32, count int) {
	if count <= 0 {
		return
	}
	if len(positions) < count*3 || len(colors) < count*3 || len(sizes) < count {
		return
	}

	sinYaw, cosYaw := math.Sincos(v.Yaw)
	sinPitch, cosPitch := math.Sincos(v.Pitch)
	focal := 0.9 * float64(r.height)
	cx := float64(r.width) * 0.5
	cy := float64(r.height) * 0.5

	for i := 0; i < count; i++ {
		x := float64(positions[i*3])
		y := float64(positions[i*3+1])
		z := float64(positions[i*3+2])

		// Orbit: yaw about Y, pitch about X, then camera space.
		x1 := x*cosYaw + z*sinYaw
		z1 := z*cosYaw - x*sinYaw
		y2 := y*cosPitch - z1*sinPitch
		z2 := z1*cosPitch + y*sinPitch

		depth := v.CamZ - z2
		if depth < nearClip || math.IsNaN(depth) {
			continue
		}
		invD := 1.0 / depth
		sx := cx + (x1-v.CamX)*focal*cellAspect*invD
		sy := cy - (y2-v.CamY)*focal*invD
		if math.IsNaN(sx) || math.IsNaN(sy) {
			continue
		}

		ix := int(sx)
		iy := int(sy)
		if sx < 0 || ix >= r.width || sy < 0 || iy >= r.height {
			continue
		}

		w := float64(sizes[i]) * splatBrightness * invD
		if w <= 0 {
			continue
		}
		cr := float64(colors[i*3]) * w
		cg := float64(colors[i*3+1]) * w
		cb := float64(colors[i*3+2]) * w

		r.add(ix, iy, cr, cg, cb)
		r.add(ix-1, iy, cr*crossSpill, cg*crossSpill, cb*crossSpill)
		r.add(ix+1, iy, cr*crossSpill, cg*crossSpill, cb*crossSpill)
		r.add(ix, iy-1, cr*crossSpill, cg*crossSpill, cb*crossSpill)
		r.add(ix, iy+1, cr*crossSpill, cg*crossSpill, cb*crossSpill)
	}
}

func (r *Renderer) add(x, y int, cr, cg, cb float64) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	i := (y*r.width + x) * 3
	r.accum[i] += cr
	r.accum[i+1] += cg
	r.accum[i+2] += cb
}

// bloom copies the trail field into the output buffer and leaks light from
// cells brighter than the threshold into their neighborhood.
func (r *Renderer) bloom(strength, radius, threshold float64) {
	copy(r.out, r.accum)

	rad := int(radius + 0.5)
	if strength <= 0 || rad <= 0 {
		return
	}

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			i := (y*r.width + x) * 3
			cr, cg, cb := r.accum[i], r.accum[i+1], r.accum[i+2]
			lum := cr
			if cg > lum {
				lum = cg
			}
			if cb > lum {
				lum = cb
			}
			if lum <= threshold {
				continue
			}

			excess := (lum - threshold) * strength * bloomSpill / lum
			for dy := -rad; dy <= rad; dy++ {
				for dx := -rad; dx <= rad; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= r.width || ny < 0 || ny >= r.height {
						continue
					}
					falloff := excess / float64(1+dx*dx+dy*dy)
					n := (ny*r.width + nx) * 3
					r.out[n] += cr * falloff
					r.out[n+1] += cg * falloff
					r.out[n+2] += cb * falloff
				}
			}
		}
	}
}

func (r *Renderer) emitANSI(v engine.View, feat analyzer.Features, fps float64) Frame {
	lines := make([]string, r.height)
	m := hueMatrix(v.ColorShiftAngle + v.ColorShift*shiftSwing)
	exposure := v.Exposure

	width := r.width
	useANSI := r.useANSI
	palette := r.palette

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > r.height {
		numWorkers = r.height
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	rowJobs := make(chan int, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowJobs {
				var builder strings.Builder
				builder.Grow(width * 8)
				lastColor := -1
				row := r.out[y*width*3 : (y+1)*width*3]
				for x := 0; x < width; x++ {
					cr, cg, cb := shadeCell(row[x*3], row[x*3+1], row[x*3+2], m, exposure)

					lum := cr
					if cg > lum {
						lum = cg
					}
					if cb > lum {
						lum = cb
					}
					idx := int(lum*float64(len(palette)-1) + 0.5)
					if idx < 0 {
						idx = 0
					} else if idx >= len(palette) {
						idx = len(palette) - 1
					}

					if useANSI {
						fg := rgbToANSI(cr, cg, cb)
						if fg != lastColor {
							builder.WriteString(colorCode(fg))
							lastColor = fg
						}
					}
					builder.WriteRune(palette[idx])
				}
				if useANSI {
					builder.WriteString(resetANSI)
				}
				lines[y] = builder.String()
			}
		}()
	}

	for y := 0; y < r.height; y++ {
		rowJobs <- y
	}
	close(rowJobs)
	wg.Wait()

	return Frame{
		Lines:  lines,
		Status: r.buildStatus(v, feat, fps),
	}
}

// shadeCell applies hue rotation and exposure to one cell and clamps the
// result to displayable range.
func shadeCell(cr, cg, cb float64, m [9]float64, exposure float64) (float64, float64, float64) {
	rr := m[0]*cr + m[1]*cg + m[2]*cb
	rg := m[3]*cr + m[4]*cg + m[5]*cb
	rb := m[6]*cr + m[7]*cg + m[8]*cb
	return clamp01(rr * exposure), clamp01(rg * exposure), clamp01(rb * exposure)
}

// hueMatrix builds the RGB-space rotation for a hue angle in turns.
func hueMatrix(turns float64) [9]float64 {
	s, c := math.Sincos(turns * 2 * math.Pi)
	oneC := (1.0 - c) / 3.0
	sq := s * 0.5773502691896258

	return [9]float64{
		c + oneC, oneC - sq, oneC + sq,
		oneC + sq, c + oneC, oneC - sq,
		oneC - sq, oneC + sq, c + oneC,
	}
}

func colorCode(index int) string {
	if index < 0 {
		index = 0
	} else if index >= len(precomputedANSI) {
		index = len(precomputedANSI) - 1
	}
	return precomputedANSI[index]
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for near-neutral cells.
	if math.Abs(r-g) < 0.02 && math.Abs(g-b) < 0.02 {
		gray := int(clampFloat(math.Round(r*23), 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (r *Renderer) buildStatus(v engine.View, feat analyzer.Features, fps float64) string {
	builder := &r.statusBuilder
	builder.Reset()
	builder.Grow(128)
	builder.WriteString("bass ")
	appendFloat(builder, feat.BassSmooth, 2)
	builder.WriteString(" mid ")
	appendFloat(builder, feat.MidSmooth, 2)
	builder.WriteString(" high ")
	appendFloat(builder, feat.HighSmooth, 2)
	builder.WriteString(" beat ")
	appendFloat(builder, feat.BeatIntensity, 2)
	builder.WriteString(" | n=")
	builder.WriteString(strconv.Itoa(v.Count))
	builder.WriteString(" bloom ")
	appendFloat(builder, v.Bloom, 2)
	builder.WriteString(" fps ")
	appendFloat(builder, fps, 1)
	return builder.String()
}

func appendFloat(builder *strings.Builder, value float64, precision int) {
	var buf [32]byte
	b := strconv.AppendFloat(buf[:0], value, 'f', precision, 64)
	builder.Write(b)
}
