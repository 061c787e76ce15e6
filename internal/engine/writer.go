package engine

import (
	"bytes"

	j "github.com/goccy/go-json"
)

// Writer emits JSON tokens into a buffer. It owns only framing (commas,
// colons, brackets); the binding layer decides key order and value rendering.
// Strings pass through goccy/go-json for escaping.
type Writer struct {
	buf     bytes.Buffer
	counts  []int // values written per open container
	pending bool  // a key was written; the next value needs no comma
}

// NewWriter returns an empty writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) beforeValue() {
	if w.pending {
		w.pending = false
		return
	}
	if n := len(w.counts); n > 0 {
		if w.counts[n-1] > 0 {
			w.buf.WriteByte(',')
		}
		w.counts[n-1]++
	}
}

// BeginObject opens an object value.
func (w *Writer) BeginObject() {
	w.beforeValue()
	w.buf.WriteByte('{')
	w.counts = append(w.counts, 0)
}

// EndObject closes the innermost object.
func (w *Writer) EndObject() {
	w.counts = w.counts[:len(w.counts)-1]
	w.buf.WriteByte('}')
}

// BeginArray opens an array value.
func (w *Writer) BeginArray() {
	w.beforeValue()
	w.buf.WriteByte('[')
	w.counts = append(w.counts, 0)
}

// EndArray closes the innermost array.
func (w *Writer) EndArray() {
	w.counts = w.counts[:len(w.counts)-1]
	w.buf.WriteByte(']')
}

// Key writes an object key. The following value call completes the member.
func (w *Writer) Key(name string) {
	if n := len(w.counts); n > 0 {
		if w.counts[n-1] > 0 {
			w.buf.WriteByte(',')
		}
		w.counts[n-1]++
	}
	w.writeEscaped(name)
	w.buf.WriteByte(':')
	w.pending = true
}

// String writes a quoted, escaped string value.
func (w *Writer) String(s string) {
	w.beforeValue()
	w.writeEscaped(s)
}

// RawNumber writes pre-rendered number text.
func (w *Writer) RawNumber(text string) {
	w.beforeValue()
	w.buf.WriteString(text)
}

// Bool writes a boolean value.
func (w *Writer) Bool(v bool) {
	w.beforeValue()
	if v {
		w.buf.WriteString("true")
	} else {
		w.buf.WriteString("false")
	}
}

// Null writes a null value.
func (w *Writer) Null() {
	w.beforeValue()
	w.buf.WriteString("null")
}

func (w *Writer) writeEscaped(s string) {
	b, err := j.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail; keep the writer total anyway.
		w.buf.WriteString(`""`)
		return
	}
	w.buf.Write(b)
}
