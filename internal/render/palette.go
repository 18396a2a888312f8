package render

// Glyph ramps ordered dark to bright. The emit pass indexes them by cell
// luminance, so a ramp's length sets how many brightness steps survive.
var (
	defaultPalette = []rune(" .,:;+*oO#@█")
	boxPalette     = []rune(" ░▒▓█")
	linesPalette   = []rune(" `.-=+*%╬█")
	sparkPalette   = []rune(" `^~:;*+oO@█")
)

// Palette returns the glyph ramp registered under name.
func Palette(name string) []rune {
	switch name {
	case "box":
		return boxPalette
	case "lines":
		return linesPalette
	case "spark":
		return sparkPalette
	default:
		return defaultPalette
	}
}

// PaletteNames returns all palette identifiers.
func PaletteNames() []string {
	return []string{"default", "box", "lines", "spark"}
}
