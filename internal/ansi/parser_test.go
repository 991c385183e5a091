package ansi

import (
	"strings"
	"testing"
)

func joinRuns(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestParsePlainText(t *testing.T) {
	p := NewParser()

	runs := p.ParseText("hello world")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Text != "hello world" {
		t.Errorf("expected 'hello world', got %q", runs[0].Text)
	}
	if runs[0].Style != DefaultStyle() {
		t.Errorf("expected default style, got %+v", runs[0].Style)
	}
}

func TestParseStripsSGRSequences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"\x1b[31mred\x1b[0m", "red"},
		{"a\x1b[1mb\x1b[22mc", "abc"},
		{"\x1b[38;5;196mX\x1b[m", "X"},
		{"\x1b[38;2;1;2;3mX", "X"},
		{"pre\x1b[Kpost", "prepost"}, // erase-line swallowed
		{"up\x1b[2Adown", "updown"},  // cursor move swallowed
		{"", ""},
	}

	for _, tt := range tests {
		p := NewParser()
		got := joinRuns(p.ParseText(tt.input))
		if got != tt.want {
			t.Errorf("ParseText(%q) text = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseStylePersistsAcrossCalls(t *testing.T) {
	p := NewParser()

	p.ParseText("\x1b[31m")
	runs := p.ParseText("Red")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Text != "Red" {
		t.Errorf("expected 'Red', got %q", runs[0].Text)
	}
	if runs[0].Style.Foreground != ColorRed {
		t.Errorf("expected red foreground, got %+v", runs[0].Style.Foreground)
	}
}

func TestParseBoldRedThenReset(t *testing.T) {
	p := NewParser()

	runs := p.ParseText("\x1b[1;31mX\x1b[0mY")

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d: %+v", len(runs), runs)
	}
	if runs[0].Text != "X" || !runs[0].Style.Bold() || runs[0].Style.Foreground != ColorRed {
		t.Errorf("first run = %+v, want bold red 'X'", runs[0])
	}
	if runs[1].Text != "Y" || runs[1].Style != DefaultStyle() {
		t.Errorf("second run = %+v, want default 'Y'", runs[1])
	}
}

func TestParseAttributes(t *testing.T) {
	p := NewParser()

	runs := p.ParseText("\x1b[1;3;4mabc")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	s := runs[0].Style
	if !s.Bold() || !s.Italic() || !s.Underline() {
		t.Errorf("expected bold+italic+underline, got %+v", s)
	}

	runs = p.ParseText("\x1b[22;23;24mdef")
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Style.Attrs != AttrNone {
		t.Errorf("expected all attributes off, got %+v", runs[0].Style.Attrs)
	}
}

func TestParse256ColorAndRGBAgree(t *testing.T) {
	// 196 in the 6x6x6 cube is (5,0,0): near-maximal red.
	p := NewParser()
	runs := p.ParseText("\x1b[38;5;196mA")
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	indexed := runs[0].Style.Foreground

	p = NewParser()
	runs = p.ParseText("\x1b[38;2;255;0;0mB")
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	direct := runs[0].Style.Foreground

	for _, c := range []Color{indexed, direct} {
		if c.R < 200 {
			t.Errorf("expected near-maximal red, got R=%d", c.R)
		}
		if c.G > 50 || c.B > 50 {
			t.Errorf("expected near-zero green/blue, got G=%d B=%d", c.G, c.B)
		}
	}
}

func TestParseBackgroundColors(t *testing.T) {
	p := NewParser()

	runs := p.ParseText("\x1b[44mX\x1b[49mY\x1b[101mZ")

	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].Style.Background != ColorBlue {
		t.Errorf("expected blue background, got %+v", runs[0].Style.Background)
	}
	if runs[1].Style.Background != DefaultBackground {
		t.Errorf("expected default background, got %+v", runs[1].Style.Background)
	}
	if runs[2].Style.Background != ColorBrightRed {
		t.Errorf("expected bright red background, got %+v", runs[2].Style.Background)
	}
}

func TestParseBrightForeground(t *testing.T) {
	p := NewParser()

	runs := p.ParseText("\x1b[92mok")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Style.Foreground != ColorBrightGreen {
		t.Errorf("expected bright green, got %+v", runs[0].Style.Foreground)
	}
}

func TestParseUnrecognizedCodesSkipped(t *testing.T) {
	p := NewParser()

	// 999 is unknown, 31 after it must still apply.
	runs := p.ParseText("\x1b[999;31mX")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Style.Foreground != ColorRed {
		t.Errorf("expected red after unknown code, got %+v", runs[0].Style.Foreground)
	}
}

func TestParseMalformedNeverPanics(t *testing.T) {
	inputs := []string{
		"\x1b[999mInvalid\x1bIncomplete",
		"\x1b",
		"\x1b[",
		"\x1b[31",
		"\x1b[38;5m",
		"\x1b[38;2;255m",
		"\x1bX",
		"\x1b\x1b\x1b",
		"\x1b[;;;m",
		"\x1b[31\x1b[32mtext",
		"text\x00more",
	}

	for _, input := range inputs {
		p := NewParser()
		runs := p.ParseText(input)
		runs = append(runs, p.Flush()...)
		if strings.Contains(input, "Invalid") && len(runs) == 0 {
			t.Errorf("ParseText(%q) returned no runs", input)
		}
	}
}

func TestParseMalformedReplaysLiteral(t *testing.T) {
	p := NewParser()

	// ESC followed by a non-CSI byte degrades to literal text.
	runs := p.ParseText("a\x1bXb")

	got := joinRuns(runs)
	if got != "a\x1bXb" {
		t.Errorf("expected literal replay, got %q", got)
	}
}

func TestParseInvalidCSIByteReplaysSequence(t *testing.T) {
	p := NewParser()

	// '\n' cannot extend a CSI sequence; everything collected is replayed.
	runs := p.ParseText("\x1b[31\nrest")

	got := joinRuns(runs)
	if got != "\x1b[31\nrest" {
		t.Errorf("expected %q, got %q", "\x1b[31\nrest", got)
	}
}

func TestParseIncompleteSequenceSpansCalls(t *testing.T) {
	p := NewParser()

	runs := p.ParseText("abc\x1b[3")
	if got := joinRuns(runs); got != "abc" {
		t.Errorf("first call text = %q, want 'abc'", got)
	}

	runs = p.ParseText("1mdef")
	if len(runs) != 1 || runs[0].Text != "def" {
		t.Fatalf("second call runs = %+v, want single 'def'", runs)
	}
	if runs[0].Style.Foreground != ColorRed {
		t.Errorf("expected red from spliced sequence, got %+v", runs[0].Style.Foreground)
	}
}

func TestFlushEmitsPartialSequence(t *testing.T) {
	p := NewParser()

	p.ParseText("done\x1b[3")
	runs := p.Flush()

	if got := joinRuns(runs); got != "\x1b[3" {
		t.Errorf("Flush() = %q, want %q", got, "\x1b[3")
	}

	// Flush with nothing pending returns nothing.
	if runs := p.Flush(); len(runs) != 0 {
		t.Errorf("second Flush() = %+v, want empty", runs)
	}
}

func TestResetClearsStyle(t *testing.T) {
	p := NewParser()

	p.ParseText("\x1b[1;31m")
	p.Reset()
	runs := p.ParseText("plain")

	if len(runs) != 1 || runs[0].Style != DefaultStyle() {
		t.Errorf("expected default style after Reset, got %+v", runs)
	}
}

func TestParseNonNumericParameterIsZero(t *testing.T) {
	p := NewParser()

	// '<' is a valid parameter byte but not a number; the token parses
	// as zero, which resets attributes.
	p.ParseText("\x1b[31m")
	runs := p.ParseText("\x1b[<mX")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Style != DefaultStyle() {
		t.Errorf("expected default style from zero parameter, got %+v", runs[0].Style)
	}
}

func TestParseEmptySGRResets(t *testing.T) {
	p := NewParser()

	p.ParseText("\x1b[1;35m")
	runs := p.ParseText("\x1b[mX")

	if len(runs) != 1 || runs[0].Style != DefaultStyle() {
		t.Errorf("expected default style after bare SGR, got %+v", runs)
	}
}

func TestTrailingEmptyParamIsZero(t *testing.T) {
	p := NewParser()

	// "31;" carries a trailing empty parameter, which xterm reads as 0:
	// set red, then reset everything.
	runs := p.ParseText("\x1b[31;mX")

	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d: %+v", len(runs), runs)
	}
	if runs[0].Style != DefaultStyle() {
		t.Errorf("trailing empty param not treated as reset: style = %+v", runs[0].Style)
	}

	// A leading empty parameter resets before the color applies.
	runs = NewParser().ParseText("\x1b[;31mY")
	if len(runs) != 1 || runs[0].Style.Foreground != ColorRed {
		t.Errorf("leading empty param: got %+v, want red foreground", runs)
	}
}

func TestParseToLine(t *testing.T) {
	p := NewParser()

	line := p.ParseToLine("\x1b[31mred\x1b[0m and \x1b[1mbold")

	if line.Text != "red and bold" {
		t.Errorf("line text = %q, want 'red and bold'", line.Text)
	}
	if len(line.Spans) != 3 {
		t.Fatalf("expected 3 spans, got %d: %+v", len(line.Spans), line.Spans)
	}

	// Spans must be increasing, non-overlapping, and inside the text.
	prev := 0
	for _, sp := range line.Spans {
		if sp.Start < prev || sp.End < sp.Start || sp.End > len(line.Text) {
			t.Errorf("invalid span %+v for text length %d", sp, len(line.Text))
		}
		prev = sp.End
	}

	if line.StyleAt(0).Foreground != ColorRed {
		t.Errorf("expected red at offset 0, got %+v", line.StyleAt(0))
	}
	if !line.StyleAt(len(line.Text) - 1).Bold() {
		t.Errorf("expected bold at end of line")
	}
	if line.StyleAt(4) != DefaultStyle() {
		t.Errorf("expected default style in middle, got %+v", line.StyleAt(4))
	}
}

func TestParseUTF8PassThrough(t *testing.T) {
	p := NewParser()

	input := "héllo → \x1b[32m世界\x1b[0m"
	runs := p.ParseText(input)

	if got := joinRuns(runs); got != "héllo → 世界" {
		t.Errorf("text = %q, want %q", got, "héllo → 世界")
	}
}

func TestStripPropertyRandomish(t *testing.T) {
	// For inputs with well-formed sequences only, concatenated run text
	// equals the input minus those sequences.
	tests := []struct {
		input string
		want  string
	}{
		{"\x1b[31ma\x1b[32mb\x1b[33mc", "abc"},
		{"no escapes at all", "no escapes at all"},
		{"\x1b[0m\x1b[0m\x1b[0m", ""},
		{"tail\x1b[7m", "tail"}, // unknown SGR code: swallowed, skipped
	}

	for _, tt := range tests {
		p := NewParser()
		got := joinRuns(p.ParseText(tt.input))
		got += joinRuns(p.Flush())
		if got != tt.want {
			t.Errorf("ParseText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
