// Package layout maps the keys of an ordinary keyboard to steno keys so a
// QWERTY keyboard can be used as a steno machine.
package layout

import (
	"fmt"
	"sort"

	"stenokey/internal/linux"
	"stenokey/internal/stroke"
)

type Layout struct {
	name    string
	mapping map[uint16]stroke.Key
}

func NewLayout(name string) *Layout {
	return &Layout{name: name, mapping: make(map[uint16]stroke.Key)}
}

func (l *Layout) Name() string { return l.name }

// Translate returns the steno key bound to an evdev key code.
func (l *Layout) Translate(code uint16) (stroke.Key, bool) {
	if l == nil {
		return 0, false
	}
	key, ok := l.mapping[code]
	return key, ok
}

func (l *Layout) Bind(code uint16, key stroke.Key) { l.mapping[code] = key }

func (l *Layout) Unbind(code uint16) { delete(l.mapping, code) }

// Len is the number of bound key codes.
func (l *Layout) Len() int { return len(l.mapping) }

// TranslateRune is Translate for a character typed on a US keyboard.
func (l *Layout) TranslateRune(r rune) (stroke.Key, bool) {
	code, ok := KeyCodeForRune(r)
	if !ok {
		return 0, false
	}
	return l.Translate(code)
}

// StrokeOf builds the stroke for keys typed together, e.g. "sdf" is KWR- on
// qwerty. Characters the layout does not bind are an error.
func (l *Layout) StrokeOf(keys string) (stroke.Stroke, error) {
	var s stroke.Stroke
	for _, r := range keys {
		key, ok := l.TranslateRune(r)
		if !ok {
			return 0, fmt.Errorf("layout %s: %q is not a steno key", l.name, r)
		}
		s |= stroke.Of(key)
	}
	if s.IsEmpty() {
		return 0, fmt.Errorf("layout %s: no keys", l.name)
	}
	return s, nil
}

func (l *Layout) clone(name string) *Layout {
	out := NewLayout(name)
	for code, key := range l.mapping {
		out.mapping[code] = key
	}
	return out
}

var builtinLayouts = map[string]func() *Layout{
	"qwerty": qwertyLayout,
	"qwerty-wide": func() *Layout {
		l := qwertyLayout().clone("qwerty-wide")
		// the vowels move down a row for thumbs on the space bar row
		for _, code := range []uint16{linux.KeyC, linux.KeyV, linux.KeyN, linux.KeyM} {
			l.Unbind(code)
		}
		l.Bind(linux.KeyX, stroke.A)
		l.Bind(linux.KeyC, stroke.O)
		l.Bind(linux.KeyComma, stroke.E)
		l.Bind(linux.KeyDot, stroke.U)
		return l
	},
}

// AvailableLayouts lists the built in layout names.
func AvailableLayouts() []string {
	names := make([]string, 0, len(builtinLayouts))
	for name := range builtinLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Load(name string) (*Layout, error) {
	build, ok := builtinLayouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout '%s'", name)
	}
	return build(), nil
}

// qwertyLayout is the usual keyboard steno arrangement: the home row and
// the row above it form the two banks, c v n m are the vowels and the
// number row is the number bar.
func qwertyLayout() *Layout {
	l := NewLayout("qwerty")
	bind := func(key stroke.Key, codes ...uint16) {
		for _, code := range codes {
			l.Bind(code, key)
		}
	}
	bind(stroke.Number, linux.Key1, linux.Key2, linux.Key3, linux.Key4, linux.Key5,
		linux.Key6, linux.Key7, linux.Key8, linux.Key9, linux.Key0, linux.KeyMinus, linux.KeyEqual)
	bind(stroke.LeftS, linux.KeyQ, linux.KeyA)
	bind(stroke.LeftT, linux.KeyW)
	bind(stroke.LeftK, linux.KeyS)
	bind(stroke.LeftP, linux.KeyE)
	bind(stroke.LeftW, linux.KeyD)
	bind(stroke.LeftH, linux.KeyR)
	bind(stroke.LeftR, linux.KeyF)
	bind(stroke.A, linux.KeyC)
	bind(stroke.O, linux.KeyV)
	bind(stroke.Star, linux.KeyT, linux.KeyG, linux.KeyY, linux.KeyH)
	bind(stroke.E, linux.KeyN)
	bind(stroke.U, linux.KeyM)
	bind(stroke.RightF, linux.KeyU)
	bind(stroke.RightR, linux.KeyJ)
	bind(stroke.RightP, linux.KeyI)
	bind(stroke.RightB, linux.KeyK)
	bind(stroke.RightL, linux.KeyO)
	bind(stroke.RightG, linux.KeyL)
	bind(stroke.RightT, linux.KeyP)
	bind(stroke.RightS, linux.KeySemicolon)
	bind(stroke.RightD, linux.KeyLeftBrace)
	bind(stroke.RightZ, linux.KeyApostrophe)
	return l
}

var runeKeyCodes = map[rune]uint16{
	'1': linux.Key1, '2': linux.Key2, '3': linux.Key3, '4': linux.Key4, '5': linux.Key5,
	'6': linux.Key6, '7': linux.Key7, '8': linux.Key8, '9': linux.Key9, '0': linux.Key0,
	'-': linux.KeyMinus, '=': linux.KeyEqual,
	'q': linux.KeyQ, 'w': linux.KeyW, 'e': linux.KeyE, 'r': linux.KeyR, 't': linux.KeyT,
	'y': linux.KeyY, 'u': linux.KeyU, 'i': linux.KeyI, 'o': linux.KeyO, 'p': linux.KeyP,
	'[': linux.KeyLeftBrace, ']': linux.KeyRightBrace,
	'a': linux.KeyA, 's': linux.KeyS, 'd': linux.KeyD, 'f': linux.KeyF, 'g': linux.KeyG,
	'h': linux.KeyH, 'j': linux.KeyJ, 'k': linux.KeyK, 'l': linux.KeyL,
	';': linux.KeySemicolon, '\'': linux.KeyApostrophe, '`': linux.KeyGrave, '\\': linux.KeyBackslash,
	'z': linux.KeyZ, 'x': linux.KeyX, 'c': linux.KeyC, 'v': linux.KeyV, 'b': linux.KeyB,
	'n': linux.KeyN, 'm': linux.KeyM, ',': linux.KeyComma, '.': linux.KeyDot, '/': linux.KeySlash,
}

// KeyCodeForRune returns the evdev code of the key that types r on a US
// keyboard without shift. Upper case letters map to their key.
func KeyCodeForRune(r rune) (uint16, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	code, ok := runeKeyCodes[r]
	return code, ok
}
