package ansi

// Color represents a terminal color.
type Color struct {
	R, G, B uint8
	Index   int  // -1 for RGB, 0-255 for indexed
	Default bool // Use default fg/bg
}

// DefaultForeground is the default foreground color.
var DefaultForeground = Color{Default: true}

// DefaultBackground is the default background color.
var DefaultBackground = Color{Default: true}

// Standard ANSI colors (indices 0-15).
var (
	ColorBlack         = Color{Index: 0, R: 0, G: 0, B: 0}
	ColorRed           = Color{Index: 1, R: 205, G: 0, B: 0}
	ColorGreen         = Color{Index: 2, R: 0, G: 205, B: 0}
	ColorYellow        = Color{Index: 3, R: 205, G: 205, B: 0}
	ColorBlue          = Color{Index: 4, R: 0, G: 0, B: 238}
	ColorMagenta       = Color{Index: 5, R: 205, G: 0, B: 205}
	ColorCyan          = Color{Index: 6, R: 0, G: 205, B: 205}
	ColorWhite         = Color{Index: 7, R: 229, G: 229, B: 229}
	ColorBrightBlack   = Color{Index: 8, R: 127, G: 127, B: 127}
	ColorBrightRed     = Color{Index: 9, R: 255, G: 0, B: 0}
	ColorBrightGreen   = Color{Index: 10, R: 0, G: 255, B: 0}
	ColorBrightYellow  = Color{Index: 11, R: 255, G: 255, B: 0}
	ColorBrightBlue    = Color{Index: 12, R: 92, G: 92, B: 255}
	ColorBrightMagenta = Color{Index: 13, R: 255, G: 0, B: 255}
	ColorBrightCyan    = Color{Index: 14, R: 0, G: 255, B: 255}
	ColorBrightWhite   = Color{Index: 15, R: 255, G: 255, B: 255}
)

// Palette16 is the standard 16-color palette in index order.
var Palette16 = []Color{
	ColorBlack, ColorRed, ColorGreen, ColorYellow,
	ColorBlue, ColorMagenta, ColorCyan, ColorWhite,
	ColorBrightBlack, ColorBrightRed, ColorBrightGreen, ColorBrightYellow,
	ColorBrightBlue, ColorBrightMagenta, ColorBrightCyan, ColorBrightWhite,
}

// ColorFromIndex returns a color from the xterm 256-color palette.
// Indices 0-15 map to the standard/bright colors, 16-231 to the
// 6x6x6 RGB cube, and 232-255 to the 24-step grayscale ramp.
func ColorFromIndex(index int) Color {
	if index < 0 {
		index = 0
	}
	if index > 255 {
		index = 255
	}

	if index < 16 {
		return Palette16[index]
	}

	if index < 232 {
		cube := index - 16
		r := uint8((cube / 36) * 51)
		g := uint8(((cube / 6) % 6) * 51)
		b := uint8((cube % 6) * 51)
		return Color{R: r, G: g, B: b, Index: index}
	}

	gray := uint8((index-232)*10 + 8)
	return Color{R: gray, G: gray, B: gray, Index: index}
}

// ColorFromRGB creates a direct 24-bit color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Index: -1}
}
