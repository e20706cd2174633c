// Package events writes the EV lines that report paper tape, suggestions and
// the text log to a console.
//
// Every event is one line, "EV " followed by a JSON object whose fields
// appear in a fixed order:
//
//	EV {"event":"paper_tape","data":"...","undo":1,"text":"..."}
//	EV {"event":"suggestion","combine_count":2,"text":"...","outlines":["..."]}
//	EV {"event":"text_log","text":"\b\bcat"}
package events

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"sync"
)

type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf bytes.Buffer
	enc *json.Encoder
	str bytes.Buffer
}

func NewWriter(w io.Writer) *Writer {
	wr := &Writer{w: w}
	wr.enc = json.NewEncoder(&wr.str)
	wr.enc.SetEscapeHTML(false)
	return wr
}

// PaperTape reports a stroke. undo is the number of earlier translations
// the stroke replaced and is omitted when zero.
func (w *Writer) PaperTape(data string, undo int, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.begin("paper_tape")
	w.field("data")
	w.quoted(data)
	if undo > 0 {
		w.field("undo")
		w.buf.WriteString(strconv.Itoa(undo))
	}
	w.field("text")
	w.quoted(text)
	return w.end()
}

// PaperTapeUndo reports an undo stroke that removed undo translations.
func (w *Writer) PaperTapeUndo(data string, undo int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.begin("paper_tape")
	w.field("data")
	w.quoted(data)
	w.field("undo")
	w.buf.WriteString(strconv.Itoa(undo))
	return w.end()
}

func (w *Writer) Suggestion(combineCount int, text string, outlines []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.begin("suggestion")
	w.field("combine_count")
	w.buf.WriteString(strconv.Itoa(combineCount))
	w.field("text")
	w.quoted(text)
	w.field("outlines")
	w.buf.WriteByte('[')
	for i, o := range outlines {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		w.quoted(o)
	}
	w.buf.WriteByte(']')
	return w.end()
}

// TextLog reports an edit of the typed text: backspaces erased characters
// followed by text.
func (w *Writer) TextLog(backspaces int, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.begin("text_log")
	w.field("text")
	w.buf.WriteByte('"')
	w.buf.WriteString(strings.Repeat(`\b`, backspaces))
	w.raw(text)
	w.buf.WriteByte('"')
	return w.end()
}

func (w *Writer) begin(event string) {
	w.buf.Reset()
	w.buf.WriteString(`EV {"event":`)
	w.quoted(event)
}

func (w *Writer) field(name string) {
	w.buf.WriteString(`,"`)
	w.buf.WriteString(name)
	w.buf.WriteString(`":`)
}

func (w *Writer) quoted(s string) {
	w.buf.WriteByte('"')
	w.raw(s)
	w.buf.WriteByte('"')
}

// raw writes s JSON escaped without the surrounding quotes.
func (w *Writer) raw(s string) {
	w.str.Reset()
	// strings always encode
	_ = w.enc.Encode(s)
	b := bytes.TrimSuffix(w.str.Bytes(), []byte("\n"))
	w.buf.Write(b[1 : len(b)-1])
}

func (w *Writer) end() error {
	w.buf.WriteString("}\n")
	_, err := w.w.Write(w.buf.Bytes())
	return err
}
