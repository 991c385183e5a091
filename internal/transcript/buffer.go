// Package transcript stores parsed terminal output as a bounded,
// ordered sequence of styled lines.
//
// The Buffer is a FIFO scrollback: appending beyond the configured
// maximum evicts the oldest lines. It has exactly one writer (the session
// coordinator); renderers read it between updates.
package transcript

import (
	"strings"
	"sync"

	"github.com/dshills/termpane/internal/ansi"
)

// DefaultMaxScrollback is used when no limit is configured.
const DefaultMaxScrollback = 10000

// Buffer is a size-bounded FIFO of transcript lines.
//
// After every mutation Len() <= max scrollback holds. The buffer outlives
// the shell process that feeds it; it is emptied only by Clear.
type Buffer struct {
	mu    sync.RWMutex
	lines []ansi.Line
	max   int
}

// NewBuffer creates a buffer retaining at most maxScrollback lines.
// Non-positive values fall back to DefaultMaxScrollback.
func NewBuffer(maxScrollback int) *Buffer {
	if maxScrollback <= 0 {
		maxScrollback = DefaultMaxScrollback
	}
	return &Buffer{
		lines: make([]ansi.Line, 0, min(maxScrollback, 1024)),
		max:   maxScrollback,
	}
}

// MaxScrollback returns the configured line limit.
func (b *Buffer) MaxScrollback() int {
	return b.max
}

// Append adds a line at the end, evicting the oldest lines first if the
// buffer would exceed its limit.
func (b *Buffer) Append(line ansi.Line) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		excess := len(b.lines) - b.max
		b.lines = append(b.lines[:0], b.lines[excess:]...)
	}
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = b.lines[:0]
}

// Len returns the number of retained lines.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns the line at index (0 = oldest retained). The second
// return is false if the index is out of range.
func (b *Buffer) Line(index int) (ansi.Line, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if index < 0 || index >= len(b.lines) {
		return ansi.Line{}, false
	}
	return b.lines[index], true
}

// Lines returns a copy of all retained lines in order.
func (b *Buffer) Lines() []ansi.Line {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]ansi.Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Tail returns up to n most recent lines in order.
func (b *Buffer) Tail(n int) []ansi.Line {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	if n > len(b.lines) {
		n = len(b.lines)
	}
	out := make([]ansi.Line, n)
	copy(out, b.lines[len(b.lines)-n:])
	return out
}

// Text returns the plain text of the transcript, lines joined with "\n".
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.Text)
	}
	return sb.String()
}
