// Package keycode turns translation tokens into the key codes that are
// eventually typed, applying spacing, case and formatting commands.
package keycode

import (
	"unicode"

	"github.com/npillmayer/schuko/tracing"

	"stenokey/internal/state"
)

func tracer() tracing.Trace {
	return tracing.Select("stenokey.keycode")
}

// KeyCode is one unit of output: a character resolved through the case mode
// it was written in, or a raw key press or release.
type KeyCode struct {
	r        rune
	caseMode state.CaseMode
	code     uint16
	raw      bool
	pressed  bool
}

func Text(r rune, mode state.CaseMode) KeyCode {
	return KeyCode{r: r, caseMode: mode}
}

func Raw(code uint16, pressed bool) KeyCode {
	return KeyCode{code: code, raw: true, pressed: pressed}
}

func (k KeyCode) IsRaw() bool { return k.raw }

func (k KeyCode) IsWhitespace() bool { return !k.raw && unicode.IsSpace(k.r) }

// Rune is the character as written, before case resolution.
func (k KeyCode) Rune() rune { return k.r }

func (k KeyCode) CaseMode() state.CaseMode { return k.caseMode }

// Resolved is the character that is typed.
func (k KeyCode) Resolved() rune { return k.caseMode.Apply(k.r) }

func (k KeyCode) Code() uint16 { return k.code }

func (k KeyCode) Pressed() bool { return k.pressed }

func (k KeyCode) withCase(mode state.CaseMode) KeyCode {
	k.caseMode = mode
	return k
}

// HasSameOutput reports whether both key codes have the same visible effect.
func (k KeyCode) HasSameOutput(o KeyCode) bool {
	if k.raw != o.raw {
		return false
	}
	if k.raw {
		return k.code == o.code && k.pressed == o.pressed
	}
	return k.Resolved() == o.Resolved()
}
