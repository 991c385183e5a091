package ansi

// Attr is a bitmask of text attributes.
type Attr uint8

const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << 0
	AttrItalic    Attr = 1 << 1
	AttrUnderline Attr = 1 << 2
)

// Has returns true if the attribute is set.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// Style describes how a run of text is rendered.
type Style struct {
	Foreground Color
	Background Color
	Attrs      Attr
}

// DefaultStyle returns the style with default colors and no attributes.
func DefaultStyle() Style {
	return Style{
		Foreground: DefaultForeground,
		Background: DefaultBackground,
	}
}

// Bold reports whether the bold attribute is set.
func (s Style) Bold() bool { return s.Attrs.Has(AttrBold) }

// Italic reports whether the italic attribute is set.
func (s Style) Italic() bool { return s.Attrs.Has(AttrItalic) }

// Underline reports whether the underline attribute is set.
func (s Style) Underline() bool { return s.Attrs.Has(AttrUnderline) }

// Run is a piece of text with a single style.
type Run struct {
	Text  string
	Style Style
}

// Span applies a style to the half-open byte range [Start, End) of a
// line's text.
type Span struct {
	Start int
	End   int
	Style Style
}

// Line is a finalized transcript line: its full text plus ordered,
// non-overlapping style spans. Gaps between spans use the default style.
// A Line is immutable once built.
type Line struct {
	Text  string
	Spans []Span
}

// NewLine builds a Line from ordered runs, concatenating run texts and
// recording each run's style as a span over the concatenated offsets.
// Empty runs are dropped.
func NewLine(runs []Run) Line {
	var line Line
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		start := len(line.Text)
		line.Text += r.Text
		line.Spans = append(line.Spans, Span{
			Start: start,
			End:   len(line.Text),
			Style: r.Style,
		})
	}
	return line
}

// StyleAt returns the style covering byte offset pos, or the default
// style if no span covers it.
func (l Line) StyleAt(pos int) Style {
	for _, sp := range l.Spans {
		if pos >= sp.Start && pos < sp.End {
			return sp.Style
		}
	}
	return DefaultStyle()
}
