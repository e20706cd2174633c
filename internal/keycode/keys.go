package keycode

import (
	"fmt"
	"strings"

	"stenokey/internal/linux"
)

var keyAliases = map[string]string{
	"RETURN":     "ENTER",
	"KP_ENTER":   "ENTER",
	"BACK_SPACE": "BACKSPACE",
	"ESCAPE":     "ESC",
	"PAGE_UP":    "PAGEUP",
	"PRIOR":      "PAGEUP",
	"PAGE_DOWN":  "PAGEDOWN",
	"NEXT":       "PAGEDOWN",
	"PERIOD":     "DOT",
	"CONTROL":    "LEFTCTRL",
	"CONTROL_L":  "LEFTCTRL",
	"CONTROL_R":  "RIGHTCTRL",
	"CTRL":       "LEFTCTRL",
	"SHIFT":      "LEFTSHIFT",
	"SHIFT_L":    "LEFTSHIFT",
	"SHIFT_R":    "RIGHTSHIFT",
	"ALT":        "LEFTALT",
	"ALT_L":      "LEFTALT",
	"ALT_R":      "RIGHTALT",
	"OPTION":     "LEFTALT",
	"SUPER":      "LEFTMETA",
	"SUPER_L":    "LEFTMETA",
	"SUPER_R":    "RIGHTMETA",
	"WINDOWS":    "LEFTMETA",
	"COMMAND":    "LEFTMETA",
	"META":       "LEFTMETA",
}

// KeyNamed resolves a key name as used in {#...} commands, e.g. "Return",
// "control_l" or "a".
func KeyNamed(name string) (uint16, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if alias, ok := keyAliases[normalized]; ok {
		normalized = alias
	}
	code, ok := keycodeTable[normalized]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return code, nil
}

var keycodeTable = buildKeycodeTable()

func buildKeycodeTable() map[string]uint16 {
	letters := []int{
		linux.KeyA, linux.KeyB, linux.KeyC, linux.KeyD, linux.KeyE, linux.KeyF, linux.KeyG,
		linux.KeyH, linux.KeyI, linux.KeyJ, linux.KeyK, linux.KeyL, linux.KeyM, linux.KeyN,
		linux.KeyO, linux.KeyP, linux.KeyQ, linux.KeyR, linux.KeyS, linux.KeyT, linux.KeyU,
		linux.KeyV, linux.KeyW, linux.KeyX, linux.KeyY, linux.KeyZ,
	}
	table := map[string]uint16{}
	for i, code := range letters {
		table[string(rune('A'+i))] = uint16(code)
	}
	table["0"] = uint16(linux.Key0)
	for ch := '1'; ch <= '9'; ch++ {
		table[string(ch)] = uint16(linux.Key1 + int(ch-'1'))
	}

	additional := map[string]int{
		"MINUS":      linux.KeyMinus,
		"EQUAL":      linux.KeyEqual,
		"LEFTBRACE":  linux.KeyLeftBrace,
		"RIGHTBRACE": linux.KeyRightBrace,
		"BACKSLASH":  linux.KeyBackslash,
		"SEMICOLON":  linux.KeySemicolon,
		"APOSTROPHE": linux.KeyApostrophe,
		"GRAVE":      linux.KeyGrave,
		"COMMA":      linux.KeyComma,
		"DOT":        linux.KeyDot,
		"SLASH":      linux.KeySlash,
		"SPACE":      linux.KeySpace,
		"TAB":        linux.KeyTab,
		"ENTER":      linux.KeyEnter,
		"ESC":        linux.KeyEsc,
		"BACKSPACE":  linux.KeyBackspace,
		"DELETE":     linux.KeyDelete,
		"INSERT":     linux.KeyInsert,
		"HOME":       linux.KeyHome,
		"END":        linux.KeyEnd,
		"PAGEUP":     linux.KeyPageUp,
		"PAGEDOWN":   linux.KeyPageDown,
		"UP":         linux.KeyUp,
		"DOWN":       linux.KeyDown,
		"LEFT":       linux.KeyLeft,
		"RIGHT":      linux.KeyRight,
		"LEFTSHIFT":  linux.KeyLeftShift,
		"RIGHTSHIFT": linux.KeyRightShift,
		"LEFTCTRL":   linux.KeyLeftCtrl,
		"RIGHTCTRL":  linux.KeyRightCtrl,
		"LEFTALT":    linux.KeyLeftAlt,
		"RIGHTALT":   linux.KeyRightAlt,
		"LEFTMETA":   linux.KeyLeftMeta,
		"RIGHTMETA":  linux.KeyRightMeta,
		"CAPSLOCK":   linux.KeyCapsLock,
		"F1":         linux.KeyF1,
		"F2":         linux.KeyF2,
		"F3":         linux.KeyF3,
		"F4":         linux.KeyF4,
		"F5":         linux.KeyF5,
		"F6":         linux.KeyF6,
		"F7":         linux.KeyF7,
		"F8":         linux.KeyF8,
		"F9":         linux.KeyF9,
		"F10":        linux.KeyF10,
		"F11":        linux.KeyF11,
		"F12":        linux.KeyF12,
	}
	for name, code := range additional {
		table[name] = uint16(code)
	}
	return table
}

// parseKeyPresses reads a {#...} body: space separated key names, where
// name(inner) holds name down while inner is typed.
func parseKeyPresses(spec string) ([]KeyCode, error) {
	p := &keyParser{spec: spec}
	codes, err := p.sequence(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.spec) {
		return nil, fmt.Errorf("unbalanced ')' in %q", spec)
	}
	return codes, nil
}

type keyParser struct {
	spec string
	pos  int
}

func (p *keyParser) sequence(depth int) ([]KeyCode, error) {
	var codes []KeyCode
	for {
		for p.pos < len(p.spec) && p.spec[p.pos] == ' ' {
			p.pos++
		}
		if p.pos == len(p.spec) {
			if depth > 0 {
				return nil, fmt.Errorf("missing ')' in %q", p.spec)
			}
			return codes, nil
		}
		if p.spec[p.pos] == ')' {
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced ')' in %q", p.spec)
			}
			return codes, nil
		}
		start := p.pos
		for p.pos < len(p.spec) && !strings.ContainsRune(" ()", rune(p.spec[p.pos])) {
			p.pos++
		}
		code, err := KeyNamed(p.spec[start:p.pos])
		if err != nil {
			return nil, err
		}
		if p.pos < len(p.spec) && p.spec[p.pos] == '(' {
			p.pos++
			inner, err := p.sequence(depth + 1)
			if err != nil {
				return nil, err
			}
			p.pos++ // ')'
			codes = append(codes, Raw(code, true))
			codes = append(codes, inner...)
			codes = append(codes, Raw(code, false))
			continue
		}
		codes = append(codes, Raw(code, true), Raw(code, false))
	}
}
