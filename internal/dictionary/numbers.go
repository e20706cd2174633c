package dictionary

import (
	"strings"

	"stenokey/internal/stroke"
)

var numberKeys = []struct {
	key   stroke.Key
	digit byte
}{
	{stroke.LeftS, '1'},
	{stroke.LeftT, '2'},
	{stroke.LeftP, '3'},
	{stroke.LeftH, '4'},
	{stroke.A, '5'},
	{stroke.O, '0'},
	{stroke.RightF, '6'},
	{stroke.RightP, '7'},
	{stroke.RightL, '8'},
	{stroke.RightT, '9'},
}

var (
	numberDigitMask = stroke.Of(stroke.LeftS, stroke.LeftT, stroke.LeftP, stroke.LeftH, stroke.A,
		stroke.O, stroke.RightF, stroke.RightP, stroke.RightL, stroke.RightT)
	numberModifierMask = stroke.Of(stroke.E, stroke.U, stroke.RightD, stroke.RightZ)
)

// Numbers translates strokes holding the number key into glued digits when
// the wrapped dictionary has no definition. -EU reverses the digits, -D
// doubles them and -Z appends "00".
type Numbers struct {
	Wrapped
}

func NewNumbers(d Dictionary) *Numbers {
	return &Numbers{Wrapped: Wrap(d)}
}

func (n *Numbers) Lookup(strokes []stroke.Stroke) Result {
	if result := n.Wrapped.Lookup(strokes); result.IsValid() {
		return result
	}
	if len(strokes) != 1 {
		return Invalid()
	}
	text, ok := numberText(strokes[0])
	if !ok {
		return Invalid()
	}
	return Dynamic("{&"+text+"}", "numbers")
}

func (n *Numbers) MaximumOutlineLength() int {
	if length := n.Wrapped.MaximumOutlineLength(); length > 1 {
		return length
	}
	return 1
}

func numberText(s stroke.Stroke) (string, bool) {
	if !s.Has(stroke.Number) {
		return "", false
	}
	rest := s.Without(stroke.Of(stroke.Number))
	if rest&numberDigitMask == 0 || rest&^(numberDigitMask|numberModifierMask) != 0 {
		return "", false
	}
	var digits []byte
	for _, nk := range numberKeys {
		if s.Has(nk.key) {
			digits = append(digits, nk.digit)
		}
	}
	if s.Has(stroke.E) != s.Has(stroke.U) {
		return "", false
	}
	if s.Has(stroke.E) {
		for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
			digits[i], digits[j] = digits[j], digits[i]
		}
	}
	text := string(digits)
	if s.Has(stroke.RightD) {
		text = strings.Repeat(text, 2)
	}
	if s.Has(stroke.RightZ) {
		text += "00"
	}
	return text, true
}
