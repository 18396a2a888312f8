package mode

import "math"

// hsvToRGB converts h,s,v in [0,1] to r,g,b in [0,1]. Hue wraps.
func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = h - math.Floor(h)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// setColor writes an HSV color into a flat RGB buffer at particle index i.
// Saturation and value are clamped so band math can run hot without pushing
// the buffer out of [0,1].
func setColor(colors []float32, i int, h, s, v float64) {
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	r, g, b := hsvToRGB(h, s, v)
	colors[3*i] = float32(r)
	colors[3*i+1] = float32(g)
	colors[3*i+2] = float32(b)
}

// bandHue spreads a particle's hue across the configured range by its
// normalized index, so fields read as a gradient rather than a single tone.
func bandHue(base, hueRange, t float64) float64 {
	return base + (t-0.5)*hueRange
}
