package render

import (
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/termpane/internal/ansi"
)

// Adapter converts parsed styles to tcell styles and draws transcript
// lines onto a tcell screen.
type Adapter struct {
	// TrueColor enables 24-bit output. When false, RGB colors are
	// downgraded to the nearest 256-palette entry.
	TrueColor bool
}

// Style converts a parsed style to a tcell style.
func (a Adapter) Style(s ansi.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.Default {
		style = style.Foreground(a.color(s.Foreground))
	}
	if !s.Background.Default {
		style = style.Background(a.color(s.Background))
	}

	if s.Bold() {
		style = style.Bold(true)
	}
	if s.Italic() {
		style = style.Italic(true)
	}
	if s.Underline() {
		style = style.Underline(true)
	}
	return style
}

func (a Adapter) color(c ansi.Color) tcell.Color {
	if c.Index >= 0 {
		return tcell.PaletteColor(c.Index)
	}
	if a.TrueColor {
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return tcell.PaletteColor(NearestPalette(c))
}

// DrawLine draws one transcript line at (x, y), clipped to maxWidth
// screen cells. It returns the number of cells used. Wide runes that
// would straddle the clip edge are dropped; zero-width combining runes
// attach to the cell of their base rune.
func (a Adapter) DrawLine(screen tcell.Screen, x, y, maxWidth int, line ansi.Line) int {
	col := 0
	byteOff := 0
	spanIdx := 0

	// One cell is held pending so trailing combining runes can join it
	// before it is committed to the screen.
	var (
		base    rune
		baseW   int
		comb    []rune
		style   ansi.Style
		pending bool
	)
	commit := func() {
		if !pending {
			return
		}
		screen.SetContent(x+col, y, base, comb, a.Style(style))
		col += baseW
		pending = false
		comb = nil
	}

	for _, r := range line.Text {
		w := runewidth.RuneWidth(r)

		for spanIdx < len(line.Spans) && byteOff >= line.Spans[spanIdx].End {
			spanIdx++
		}
		runStyle := ansi.DefaultStyle()
		if spanIdx < len(line.Spans) && byteOff >= line.Spans[spanIdx].Start {
			runStyle = line.Spans[spanIdx].Style
		}
		byteOff += utf8.RuneLen(r)

		if w == 0 {
			// A combining rune with no base to attach to is dropped.
			if pending {
				comb = append(comb, r)
			}
			continue
		}

		commit()
		if col+w > maxWidth {
			return col
		}
		base, baseW, style, pending = r, w, runStyle, true
	}
	commit()
	return col
}

var (
	paletteOnce sync.Once
	paletteLab  [256]colorful.Color
)

// NearestPalette returns the 256-color palette index closest to c in
// Lab space.
func NearestPalette(c ansi.Color) int {
	paletteOnce.Do(func() {
		for i := range paletteLab {
			p := ansi.ColorFromIndex(i)
			paletteLab[i] = colorful.Color{
				R: float64(p.R) / 255,
				G: float64(p.G) / 255,
				B: float64(p.B) / 255,
			}
		}
	})

	target := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}

	best := 0
	bestDist := target.DistanceLab(paletteLab[0])
	for i := 1; i < len(paletteLab); i++ {
		if d := target.DistanceLab(paletteLab[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
