// Package emitter turns the difference between two key-code buffers into the
// backspaces, text and key presses that bring the host from one to the other.
package emitter

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"stenokey/internal/keycode"
)

func tracer() tracing.Trace {
	return tracing.Select("stenokey.emitter")
}

type Emitter struct {
	out  Output
	text strings.Builder
}

func New(out Output) *Emitter {
	return &Emitter{out: out}
}

func (e *Emitter) Output() Output { return e.out }

// Diff returns the length of the common visible prefix of previous and next
// and the number of text key codes of previous after it. Raw key codes are
// never erased.
func Diff(previous, next *keycode.Buffer) (common, backspaces int) {
	prev, cur := previous.Codes(), next.Codes()
	for common < len(prev) && common < len(cur) && prev[common].HasSameOutput(cur[common]) {
		common++
	}
	for _, k := range prev[common:] {
		if !k.IsRaw() {
			backspaces++
		}
	}
	return common, backspaces
}

// Process sends the edit from previous to next: one backspace per text key
// code after the common visible prefix, then the rest of next. It reports
// whether nothing visible changed.
func (e *Emitter) Process(previous, next *keycode.Buffer) (bool, error) {
	cur := next.Codes()
	common, backspaces := Diff(previous, next)
	if backspaces == 0 && common == len(cur) {
		return true, nil
	}
	tracer().Debugf("emit: %d backspaces, %d key codes", backspaces, len(cur)-common)

	if backspaces > 0 {
		if err := e.out.SendBackspace(backspaces); err != nil {
			return false, fmt.Errorf("send backspace: %w", err)
		}
	}
	if err := e.send(cur[common:]); err != nil {
		return false, err
	}
	return false, nil
}

func (e *Emitter) send(codes []keycode.KeyCode) error {
	e.text.Reset()
	for _, k := range codes {
		if !k.IsRaw() {
			e.text.WriteRune(k.Resolved())
			continue
		}
		if err := e.flush(); err != nil {
			return err
		}
		if err := e.out.SendKeyState(k.Code(), k.Pressed()); err != nil {
			return fmt.Errorf("send key %d: %w", k.Code(), err)
		}
	}
	return e.flush()
}

func (e *Emitter) flush() error {
	if e.text.Len() == 0 {
		return nil
	}
	text := e.text.String()
	e.text.Reset()
	if err := e.out.SendText(text); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}
