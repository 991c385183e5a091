package transcript

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/termpane/internal/ansi"
)

// snapshotVersion identifies the snapshot wire format.
const snapshotVersion = 1

// ErrInvalidSnapshot is returned when snapshot data cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid transcript snapshot")

// Snapshot serializes the buffer to JSON so a host can persist a panel's
// transcript across restarts. Unknown fields added by later versions are
// ignored on restore.
func (b *Buffer) Snapshot() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []byte(`{}`)
	var err error

	if out, err = sjson.SetBytes(out, "version", snapshotVersion); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if out, err = sjson.SetBytes(out, "maxScrollback", b.max); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if out, err = sjson.SetRawBytes(out, "lines", []byte(`[]`)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	for _, line := range b.lines {
		encoded, err := encodeLine(line)
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "lines.-1", encoded); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}

	return out, nil
}

// Restore rebuilds a buffer from snapshot data. The restored buffer keeps
// the snapshot's scrollback limit; lines beyond it are evicted oldest
// first, as on a live append.
func Restore(data []byte) (*Buffer, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidSnapshot
	}

	root := gjson.ParseBytes(data)
	version := root.Get("version").Int()
	if version < 1 || version > snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, version)
	}

	buf := NewBuffer(int(root.Get("maxScrollback").Int()))
	for _, lv := range root.Get("lines").Array() {
		buf.Append(decodeLine(lv))
	}
	return buf, nil
}

func encodeLine(line ansi.Line) ([]byte, error) {
	out := []byte(`{}`)
	var err error

	if out, err = sjson.SetBytes(out, "text", line.Text); err != nil {
		return nil, fmt.Errorf("snapshot line: %w", err)
	}
	if len(line.Spans) == 0 {
		return out, nil
	}

	if out, err = sjson.SetRawBytes(out, "spans", []byte(`[]`)); err != nil {
		return nil, fmt.Errorf("snapshot line: %w", err)
	}
	for _, sp := range line.Spans {
		span := []byte(`{}`)
		span, _ = sjson.SetBytes(span, "start", sp.Start)
		span, _ = sjson.SetBytes(span, "end", sp.End)
		span, _ = sjson.SetBytes(span, "attrs", int(sp.Style.Attrs))
		span = encodeColor(span, "fg", sp.Style.Foreground)
		span = encodeColor(span, "bg", sp.Style.Background)
		if out, err = sjson.SetRawBytes(out, "spans.-1", span); err != nil {
			return nil, fmt.Errorf("snapshot span: %w", err)
		}
	}
	return out, nil
}

func encodeColor(doc []byte, key string, c ansi.Color) []byte {
	if c.Default {
		doc, _ = sjson.SetBytes(doc, key+".default", true)
		return doc
	}
	doc, _ = sjson.SetBytes(doc, key+".r", int(c.R))
	doc, _ = sjson.SetBytes(doc, key+".g", int(c.G))
	doc, _ = sjson.SetBytes(doc, key+".b", int(c.B))
	doc, _ = sjson.SetBytes(doc, key+".index", c.Index)
	return doc
}

func decodeLine(lv gjson.Result) ansi.Line {
	line := ansi.Line{Text: lv.Get("text").String()}

	for _, sv := range lv.Get("spans").Array() {
		start := int(sv.Get("start").Int())
		end := int(sv.Get("end").Int())
		if start < 0 || end < start || end > len(line.Text) {
			continue // tolerate corrupt spans, keep the text
		}
		line.Spans = append(line.Spans, ansi.Span{
			Start: start,
			End:   end,
			Style: ansi.Style{
				Attrs:      ansi.Attr(sv.Get("attrs").Int()),
				Foreground: decodeColor(sv.Get("fg")),
				Background: decodeColor(sv.Get("bg")),
			},
		})
	}
	return line
}

func decodeColor(cv gjson.Result) ansi.Color {
	if !cv.Exists() || cv.Get("default").Bool() {
		return ansi.Color{Default: true}
	}
	return ansi.Color{
		R:     uint8(cv.Get("r").Int()),
		G:     uint8(cv.Get("g").Int()),
		B:     uint8(cv.Get("b").Int()),
		Index: int(cv.Get("index").Int()),
	}
}
