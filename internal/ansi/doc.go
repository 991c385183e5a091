// Package ansi parses ANSI escape sequences into styled text runs.
//
// The parser handles the CSI/SGR subset relevant to an append-only
// transcript view:
//
//   - SGR color and attribute sequences (16-color, 256-color, 24-bit)
//   - Bold, italic, and underline attributes
//   - Graceful recovery from malformed or truncated sequences
//
// Cursor movement and erase sequences are recognized as valid CSI
// terminators but have no effect; the transcript is append-only, not a
// full virtual terminal.
//
// # Usage
//
// Create one Parser per output stream and reuse it for the stream's
// lifetime. Style state set by one chunk carries into the next:
//
//	p := ansi.NewParser()
//	runs := p.ParseText("\x1b[31mred")
//	runs = append(runs, p.ParseText(" still red\x1b[0m")...)
//
// ParseToLine folds a chunk into a single Line whose Spans index the
// concatenated run texts.
//
// # Error Handling
//
// The parser never fails. A sequence that cannot be completed is replayed
// as literal text, non-numeric parameters are read as zero, and an
// incomplete trailing sequence is buffered until the next call (or
// emitted literally by Flush).
package ansi
