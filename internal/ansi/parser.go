package ansi

import (
	"strconv"
	"strings"
)

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateCSIParam
)

const esc = 0x1B

// Parser is a stateful ANSI escape sequence parser.
//
// Parser state and the current style survive across calls on the same
// instance, so a style opened by one chunk continues into the next and a
// sequence split across chunks is reassembled. Create one Parser per
// output stream; a Parser must not be shared between streams.
//
// Parser is not safe for concurrent use.
type Parser struct {
	state parserState
	style Style

	// raw holds the bytes of the sequence being collected since ESC so a
	// malformed or truncated sequence can be replayed as literal text.
	raw []byte

	// params holds completed parameter tokens; token collects the current one.
	params []string
	token  []byte

	// Per-call run assembly.
	out []Run
	buf strings.Builder
}

// NewParser creates a parser with default style state.
func NewParser() *Parser {
	return &Parser{
		style:  DefaultStyle(),
		raw:    make([]byte, 0, 32),
		params: make([]string, 0, 8),
		token:  make([]byte, 0, 8),
	}
}

// Style returns the parser's current style accumulator.
func (p *Parser) Style() Style {
	return p.style
}

// ParseText parses a chunk and returns its styled runs in order.
//
// Concatenating the run texts yields the chunk with all recognized escape
// sequences stripped. If the chunk ends inside an escape sequence, the
// partial sequence is buffered and resolved on the next call.
func (p *Parser) ParseText(chunk string) []Run {
	p.out = p.out[:0]
	p.buf.Reset()

	for i := 0; i < len(chunk); i++ {
		p.step(chunk[i])
	}
	p.flushRun()

	runs := make([]Run, len(p.out))
	copy(runs, p.out)
	return runs
}

// ParseToLine parses a chunk into a single Line.
func (p *Parser) ParseToLine(chunk string) Line {
	return NewLine(p.ParseText(chunk))
}

// Flush emits any buffered partial escape sequence as literal text and
// returns it as runs. Call at end of stream so truncated sequences are
// not silently dropped.
func (p *Parser) Flush() []Run {
	p.out = p.out[:0]
	p.buf.Reset()

	if p.state != stateGround {
		p.buf.Write(p.raw)
		p.resetSequence()
	}
	p.flushRun()

	runs := make([]Run, len(p.out))
	copy(runs, p.out)
	return runs
}

// Reset discards all parser state, including the style accumulator and
// any buffered partial sequence.
func (p *Parser) Reset() {
	p.resetSequence()
	p.style = DefaultStyle()
	p.out = p.out[:0]
	p.buf.Reset()
}

func (p *Parser) step(b byte) {
	switch p.state {
	case stateGround:
		p.stepGround(b)
	case stateEscape:
		p.stepEscape(b)
	case stateCSI, stateCSIParam:
		p.stepCSI(b)
	}
}

func (p *Parser) stepGround(b byte) {
	if b == esc {
		p.state = stateEscape
		p.raw = append(p.raw[:0], b)
		return
	}
	p.buf.WriteByte(b)
}

func (p *Parser) stepEscape(b byte) {
	switch {
	case b == '[':
		p.state = stateCSI
		p.raw = append(p.raw, b)
		p.params = p.params[:0]
		p.token = p.token[:0]
	case b == esc:
		// A bare ESC followed by another: the first cannot form a
		// sequence, so it degrades to literal text.
		p.buf.WriteByte(esc)
		p.raw = append(p.raw[:0], b)
	default:
		p.replay(b)
	}
}

func (p *Parser) stepCSI(b byte) {
	switch {
	case b == ';':
		p.raw = append(p.raw, b)
		p.pushToken()
		p.state = stateCSIParam
	case b >= 0x30 && b <= 0x3F:
		// Parameter bytes; non-numeric ones parse as zero later.
		p.raw = append(p.raw, b)
		p.token = append(p.token, b)
		p.state = stateCSIParam
	case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z'):
		p.finalize(b)
	case b == esc:
		p.buf.Write(p.raw)
		p.raw = append(p.raw[:0], b)
		p.state = stateEscape
	default:
		p.replay(b)
	}
}

// replay emits the partial sequence plus the offending byte as literal
// text and returns to ground.
func (p *Parser) replay(b byte) {
	p.buf.Write(p.raw)
	p.buf.WriteByte(b)
	p.resetSequence()
}

// finalize ends a CSI sequence. Only SGR ('m') has a rendering effect;
// other final letters are swallowed since the transcript is append-only.
func (p *Parser) finalize(final byte) {
	// A pending token is pushed even when empty if a separator preceded
	// the final byte: "31;" carries a trailing empty parameter that xterm
	// reads as 0. A bare "ESC[m" has no parameters at all and stays a
	// plain reset.
	if len(p.token) > 0 || len(p.params) > 0 {
		p.pushToken()
	}
	if final == 'm' {
		next := applySGR(p.style, p.params)
		if next != p.style {
			p.flushRun()
			p.style = next
		}
	}
	p.resetSequence()
}

func (p *Parser) pushToken() {
	p.params = append(p.params, string(p.token))
	p.token = p.token[:0]
}

func (p *Parser) resetSequence() {
	p.state = stateGround
	p.raw = p.raw[:0]
	p.params = p.params[:0]
	p.token = p.token[:0]
}

func (p *Parser) flushRun() {
	if p.buf.Len() == 0 {
		return
	}
	p.out = append(p.out, Run{Text: p.buf.String(), Style: p.style})
	p.buf.Reset()
}

// applySGR interprets an SGR parameter list left to right and returns the
// resulting style. Multi-token codes (38;5;N, 38;2;R;G;B) consume their
// extra parameters via the cursor; unrecognized codes are skipped.
func applySGR(style Style, tokens []string) Style {
	if len(tokens) == 0 {
		return DefaultStyle()
	}

	params := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			n = 0
		}
		params[i] = n
	}

	for i := 0; i < len(params); i++ {
		code := params[i]
		switch {
		case code == 0:
			style = DefaultStyle()
		case code == 1:
			style.Attrs |= AttrBold
		case code == 3:
			style.Attrs |= AttrItalic
		case code == 4:
			style.Attrs |= AttrUnderline
		case code == 22:
			style.Attrs &^= AttrBold
		case code == 23:
			style.Attrs &^= AttrItalic
		case code == 24:
			style.Attrs &^= AttrUnderline
		case code >= 30 && code <= 37:
			style.Foreground = Palette16[code-30]
		case code == 38:
			var c Color
			var ok bool
			c, i, ok = extendedColor(params, i)
			if ok {
				style.Foreground = c
			}
		case code == 39:
			style.Foreground = DefaultForeground
		case code >= 40 && code <= 47:
			style.Background = Palette16[code-40]
		case code == 48:
			var c Color
			var ok bool
			c, i, ok = extendedColor(params, i)
			if ok {
				style.Background = c
			}
		case code == 49:
			style.Background = DefaultBackground
		case code >= 90 && code <= 97:
			style.Foreground = Palette16[code-90+8]
		case code >= 100 && code <= 107:
			style.Background = Palette16[code-100+8]
		}
	}
	return style
}

// extendedColor decodes a 38/48 extended color starting at params[i].
// It returns the color, the index of the last parameter consumed, and
// whether a color was decoded. On malformed input it consumes what is
// present and reports no color, so the rest of the list still applies.
func extendedColor(params []int, i int) (Color, int, bool) {
	if i+1 >= len(params) {
		return Color{}, i, false
	}

	switch params[i+1] {
	case 5: // 256-color palette
		if i+2 >= len(params) {
			return Color{}, i + 1, false
		}
		return ColorFromIndex(params[i+2]), i + 2, true
	case 2: // direct 24-bit
		if i+4 >= len(params) {
			return Color{}, len(params) - 1, false
		}
		r := clampByte(params[i+2])
		g := clampByte(params[i+3])
		b := clampByte(params[i+4])
		return ColorFromRGB(r, g, b), i + 4, true
	default:
		return Color{}, i + 1, false
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
