package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"stenokey/internal/linux"
	"stenokey/internal/stroke"
)

// CustomPair rebinds one keyboard key. An empty or "none" steno key unbinds
// it.
type CustomPair struct {
	Key   string `json:"key"`
	Steno string `json:"steno"`
}

func LoadCustomPairs(path string) ([]CustomPair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open custom keypair file: %w", err)
	}
	defer file.Close()

	var pairs []CustomPair
	if err := json.NewDecoder(file).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("parse custom keypair file: %w", err)
	}
	return pairs, nil
}

// ApplyCustomPairs returns a copy of l with the pairs applied in order.
func ApplyCustomPairs(l *Layout, pairs []CustomPair) (*Layout, error) {
	out := l.clone(l.name)
	for _, pair := range pairs {
		code, err := resolveKeyCode(pair.Key)
		if err != nil {
			return nil, err
		}
		name := strings.ToUpper(strings.TrimSpace(pair.Steno))
		if name == "" || name == "NONE" {
			out.Unbind(code)
			continue
		}
		key, ok := stenoKeys[name]
		if !ok {
			return nil, fmt.Errorf("unknown steno key '%s'", pair.Steno)
		}
		out.Bind(code, key)
	}
	return out, nil
}

// stenoKeys accepts both "S-"/"-S" style names and the bare vowels.
var stenoKeys = map[string]stroke.Key{
	"#": stroke.Number,
	"S-": stroke.LeftS, "T-": stroke.LeftT, "K-": stroke.LeftK, "P-": stroke.LeftP,
	"W-": stroke.LeftW, "H-": stroke.LeftH, "R-": stroke.LeftR,
	"A": stroke.A, "A-": stroke.A, "O": stroke.O, "O-": stroke.O,
	"*": stroke.Star,
	"E": stroke.E, "-E": stroke.E, "U": stroke.U, "-U": stroke.U,
	"-F": stroke.RightF, "-R": stroke.RightR, "-P": stroke.RightP, "-B": stroke.RightB,
	"-L": stroke.RightL, "-G": stroke.RightG, "-T": stroke.RightT, "-S": stroke.RightS,
	"-D": stroke.RightD, "-Z": stroke.RightZ,
}

var keyAliases = map[string]int{
	"KEY_A":          linux.KeyA,
	"KEY_B":          linux.KeyB,
	"KEY_C":          linux.KeyC,
	"KEY_D":          linux.KeyD,
	"KEY_E":          linux.KeyE,
	"KEY_F":          linux.KeyF,
	"KEY_G":          linux.KeyG,
	"KEY_H":          linux.KeyH,
	"KEY_I":          linux.KeyI,
	"KEY_J":          linux.KeyJ,
	"KEY_K":          linux.KeyK,
	"KEY_L":          linux.KeyL,
	"KEY_M":          linux.KeyM,
	"KEY_N":          linux.KeyN,
	"KEY_O":          linux.KeyO,
	"KEY_P":          linux.KeyP,
	"KEY_Q":          linux.KeyQ,
	"KEY_R":          linux.KeyR,
	"KEY_S":          linux.KeyS,
	"KEY_T":          linux.KeyT,
	"KEY_U":          linux.KeyU,
	"KEY_V":          linux.KeyV,
	"KEY_W":          linux.KeyW,
	"KEY_X":          linux.KeyX,
	"KEY_Y":          linux.KeyY,
	"KEY_Z":          linux.KeyZ,
	"KEY_1":          linux.Key1,
	"KEY_2":          linux.Key2,
	"KEY_3":          linux.Key3,
	"KEY_4":          linux.Key4,
	"KEY_5":          linux.Key5,
	"KEY_6":          linux.Key6,
	"KEY_7":          linux.Key7,
	"KEY_8":          linux.Key8,
	"KEY_9":          linux.Key9,
	"KEY_0":          linux.Key0,
	"KEY_MINUS":      linux.KeyMinus,
	"KEY_EQUAL":      linux.KeyEqual,
	"KEY_LEFTBRACE":  linux.KeyLeftBrace,
	"KEY_RIGHTBRACE": linux.KeyRightBrace,
	"KEY_BACKSLASH":  linux.KeyBackslash,
	"KEY_SEMICOLON":  linux.KeySemicolon,
	"KEY_APOSTROPHE": linux.KeyApostrophe,
	"KEY_GRAVE":      linux.KeyGrave,
	"KEY_COMMA":      linux.KeyComma,
	"KEY_DOT":        linux.KeyDot,
	"KEY_SLASH":      linux.KeySlash,
	"KEY_SPACE":      linux.KeySpace,
}

// resolveKeyCode accepts evdev names such as KEY_SEMICOLON or a single
// character typed on a US keyboard.
func resolveKeyCode(name string) (uint16, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if r := []rune(trimmed); len(r) == 1 {
		if code, ok := KeyCodeForRune(r[0]); ok {
			return code, nil
		}
	}
	if code, ok := keyAliases[strings.ToUpper(trimmed)]; ok {
		return uint16(code), nil
	}
	return 0, fmt.Errorf("unknown key name '%s'", name)
}
