package emitter

import (
	"io"
	"strings"

	"stenokey/internal/linux"
)

// Terminal types into a terminal style writer. A backspace is written as
// "\b \b" so the erased character disappears from the screen.
type Terminal struct {
	w io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Close() error { return nil }

func (t *Terminal) SendBackspace(count int) error {
	if count <= 0 {
		return nil
	}
	_, err := io.WriteString(t.w, strings.Repeat("\b \b", count))
	return err
}

func (t *Terminal) SendText(text string) error {
	if text == "" {
		return nil
	}
	_, err := io.WriteString(t.w, text)
	return err
}

// SendKeyState writes the characters of the few raw keys a terminal can
// show. Releases and other keys are ignored.
func (t *Terminal) SendKeyState(code uint16, pressed bool) error {
	if !pressed {
		return nil
	}
	switch code {
	case linux.KeyEnter:
		return t.SendText("\n")
	case linux.KeyTab:
		return t.SendText("\t")
	case linux.KeySpace:
		return t.SendText(" ")
	case linux.KeyBackspace:
		return t.SendBackspace(1)
	}
	return nil
}

func (t *Terminal) TapKey(code uint16) error {
	if err := t.SendKeyState(code, true); err != nil {
		return err
	}
	return t.SendKeyState(code, false)
}
