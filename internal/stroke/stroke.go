package stroke

import (
	"fmt"
	"strings"
)

// Key identifies one steno key. The numeric value is the bit position inside
// a Stroke.
type Key int

const (
	Number Key = iota
	LeftS
	LeftT
	LeftK
	LeftP
	LeftW
	LeftH
	LeftR
	A
	O
	Star
	E
	U
	RightF
	RightR
	RightP
	RightB
	RightL
	RightG
	RightT
	RightS
	RightD
	RightZ

	KeyCount
)

const keyLetters = "#STKPWHRAO*EUFRPBLGTSDZ"

const (
	middleMask = 1<<A | 1<<O | 1<<Star | 1<<E | 1<<U
	leftMask   = 1<<LeftS | 1<<LeftT | 1<<LeftK | 1<<LeftP | 1<<LeftW | 1<<LeftH | 1<<LeftR
	rightMask  = 1<<RightF | 1<<RightR | 1<<RightP | 1<<RightB | 1<<RightL | 1<<RightG |
		1<<RightT | 1<<RightS | 1<<RightD | 1<<RightZ
)

// digitKeys maps '0'..'9' to the key that produces the digit together with
// the number key.
var digitKeys = [10]Key{O, LeftS, LeftT, LeftP, LeftH, A, RightF, RightP, RightL, RightT}

// Stroke is one chord, a bit mask of the pressed keys.
type Stroke uint32

// Undo is the stroke that removes the previous translation.
const Undo = Stroke(1 << Star)

// Of builds a stroke from individual keys.
func Of(keys ...Key) Stroke {
	var s Stroke
	for _, k := range keys {
		s |= 1 << uint(k)
	}
	return s
}

func (s Stroke) Has(k Key) bool { return s&(1<<uint(k)) != 0 }

func (s Stroke) IsEmpty() bool { return s == 0 }

// Without returns s with the keys of o released.
func (s Stroke) Without(o Stroke) Stroke { return s &^ o }

// Parse reads a single stroke in steno order notation, e.g. "TEFT", "-G",
// "KWR*", "1-9" or "#S-T".
func Parse(text string) (Stroke, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return 0, fmt.Errorf("invalid stroke %q: empty", text)
	}
	var s Stroke
	pos := 0
	for _, c := range text {
		switch {
		case c == '-':
			if pos < int(E) {
				pos = int(E)
			}
		case c == '#':
			s |= 1 << Number
			if pos < 1 {
				pos = 1
			}
		case c >= '0' && c <= '9':
			k := digitKeys[c-'0']
			if int(k) < pos {
				return 0, fmt.Errorf("invalid stroke %q: digit %c out of order", text, c)
			}
			s |= 1<<Number | 1<<uint(k)
			pos = int(k) + 1
		default:
			idx := strings.IndexRune(keyLetters[pos:], c)
			if idx < 0 || pos >= len(keyLetters) {
				return 0, fmt.Errorf("invalid stroke %q: unexpected key %c", text, c)
			}
			pos += idx
			s |= 1 << uint(pos)
			pos++
		}
	}
	if s == 0 {
		return 0, fmt.Errorf("invalid stroke %q: no keys", text)
	}
	return s, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) Stroke {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// String renders the stroke in steno order. A hyphen separates the banks when
// no vowel or star disambiguates them.
func (s Stroke) String() string {
	var b strings.Builder
	for k := Number; k < KeyCount; k++ {
		if k == RightF && s&middleMask == 0 && s&rightMask != 0 {
			b.WriteByte('-')
		}
		if s.Has(k) {
			b.WriteByte(keyLetters[k])
		}
	}
	return b.String()
}

// WideString renders one column per key, with '-' for released keys.
func (s Stroke) WideString() string {
	buf := make([]byte, KeyCount)
	for k := Number; k < KeyCount; k++ {
		if s.Has(k) {
			buf[k] = keyLetters[k]
		} else {
			buf[k] = '-'
		}
	}
	return string(buf)
}

// Outline is a sequence of strokes used as a dictionary key.
type Outline []Stroke

// ParseOutline reads "/" separated strokes, e.g. "TEFT/-G".
func ParseOutline(text string) (Outline, error) {
	parts := strings.Split(strings.TrimSpace(text), "/")
	outline := make(Outline, 0, len(parts))
	for _, part := range parts {
		s, err := Parse(part)
		if err != nil {
			return nil, err
		}
		outline = append(outline, s)
	}
	return outline, nil
}

func (o Outline) String() string {
	parts := make([]string, len(o))
	for i, s := range o {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

func (o Outline) Equal(other Outline) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}
