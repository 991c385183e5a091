package render

import (
	"strconv"
	"strings"

	"github.com/dshills/termpane/internal/ansi"
)

// AnsiString re-encodes a transcript line as ANSI-styled text for plain
// writers such as stdout. Unstyled gaps are emitted bare; every styled
// span is bracketed by its SGR sequence and a reset.
func AnsiString(line ansi.Line) string {
	if len(line.Spans) == 0 {
		return line.Text
	}

	var b strings.Builder
	pos := 0
	for _, sp := range line.Spans {
		if sp.Start > pos {
			b.WriteString(line.Text[pos:sp.Start])
		}
		params := sgrParams(sp.Style)
		if len(params) == 0 {
			b.WriteString(line.Text[sp.Start:sp.End])
		} else {
			b.WriteString("\x1b[")
			b.WriteString(strings.Join(params, ";"))
			b.WriteByte('m')
			b.WriteString(line.Text[sp.Start:sp.End])
			b.WriteString("\x1b[0m")
		}
		pos = sp.End
	}
	if pos < len(line.Text) {
		b.WriteString(line.Text[pos:])
	}
	return b.String()
}

func sgrParams(s ansi.Style) []string {
	var params []string
	if s.Bold() {
		params = append(params, "1")
	}
	if s.Italic() {
		params = append(params, "3")
	}
	if s.Underline() {
		params = append(params, "4")
	}
	params = append(params, colorParams(s.Foreground, false)...)
	params = append(params, colorParams(s.Background, true)...)
	return params
}

func colorParams(c ansi.Color, background bool) []string {
	if c.Default {
		return nil
	}

	base := 0
	if background {
		base = 10
	}

	switch {
	case c.Index >= 0 && c.Index < 8:
		return []string{strconv.Itoa(30 + base + c.Index)}
	case c.Index >= 8 && c.Index < 16:
		return []string{strconv.Itoa(90 + base + c.Index - 8)}
	case c.Index >= 16:
		lead := "38"
		if background {
			lead = "48"
		}
		return []string{lead, "5", strconv.Itoa(c.Index)}
	default:
		lead := "38"
		if background {
			lead = "48"
		}
		return []string{
			lead, "2",
			strconv.Itoa(int(c.R)),
			strconv.Itoa(int(c.G)),
			strconv.Itoa(int(c.B)),
		}
	}
}
