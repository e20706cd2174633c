package state

import (
	"strings"
	"unicode"
)

type CaseMode uint8

const (
	CaseNormal CaseMode = iota
	CaseLower
	CaseUpper
	CaseTitle
	CaseLowerOnce
	CaseUpperOnce
	CaseTitleOnce
	CaseUnspecified
)

var nextWordCaseMode = [...]CaseMode{
	CaseNormal,
	CaseLower,
	CaseUpper,
	CaseTitle,
	CaseNormal,
	CaseNormal,
	CaseNormal,
	CaseUnspecified,
}

var nextLetterCaseMode = [...]CaseMode{
	CaseNormal,
	CaseLower,
	CaseUpper,
	CaseNormal,
	CaseLowerOnce,
	CaseUpperOnce,
	CaseNormal,
	CaseUnspecified,
}

// NextWord is the case mode that applies to the word after one written in m.
func (m CaseMode) NextWord() CaseMode { return nextWordCaseMode[m] }

// NextLetter is the case mode for the letter after one written in m.
func (m CaseMode) NextLetter() CaseMode { return nextLetterCaseMode[m] }

// Apply resolves r under m.
func (m CaseMode) Apply(r rune) rune {
	switch m {
	case CaseLower, CaseLowerOnce:
		return unicode.ToLower(r)
	case CaseUpper, CaseUpperOnce, CaseTitle, CaseTitleOnce:
		return unicode.ToUpper(r)
	default:
		return r
	}
}

func (m CaseMode) String() string {
	switch m {
	case CaseNormal:
		return "normal"
	case CaseLower:
		return "lower"
	case CaseUpper:
		return "upper"
	case CaseTitle:
		return "title"
	case CaseLowerOnce:
		return "lower_once"
	case CaseUpperOnce:
		return "upper_once"
	case CaseTitleOnce:
		return "title_once"
	default:
		return "unspecified"
	}
}

// ParseCaseMode accepts the names used by set_case and MODE commands.
func ParseCaseMode(name string) (CaseMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "normal", "reset", "":
		return CaseNormal, true
	case "lower":
		return CaseLower, true
	case "upper", "caps":
		return CaseUpper, true
	case "title":
		return CaseTitle, true
	default:
		return CaseUnspecified, false
	}
}

// State is the formatting state between two words. States are values; a new
// state is derived from an old one, never patched in place by a segment.
type State struct {
	CaseMode            CaseMode
	OverrideCaseMode    CaseMode
	JoinNext            bool
	Glue                bool
	IsManualStateChange bool
	ShouldCombineUndo   bool
	CustomSpace         bool
	Space               string
}

// EffectiveCaseMode is the case mode the next word is written in.
func (s State) EffectiveCaseMode() CaseMode {
	if s.CaseMode != CaseNormal {
		return s.CaseMode
	}
	return s.OverrideCaseMode
}

// SpaceText is the text inserted between words.
func (s State) SpaceText() string {
	if s.CustomSpace {
		return s.Space
	}
	return " "
}

// WithoutTransientFlags clears the flags that only describe the stroke that
// produced the state.
func (s State) WithoutTransientFlags() State {
	s.ShouldCombineUndo = false
	s.IsManualStateChange = false
	return s
}

func (s State) IsDefaultCase() bool {
	return s.CaseMode == CaseNormal && s.OverrideCaseMode == CaseNormal
}
