package keycode

import (
	"strings"
	"unicode"

	"stenokey/internal/orthography"
	"stenokey/internal/segment"
	"stenokey/internal/state"
)

// Capacity bounds the key codes of one conversion. Conversions cover a fixed
// window of strokes, so exceeding it is a programming error.
const Capacity = 8192

type OpKind int

const (
	OpEnableDictionary OpKind = iota
	OpDisableDictionary
	OpToggleDictionary
	OpKeyboardLayout
)

// Op is an engine operation requested by a command during conversion. The
// engine applies the ops the newest stroke added.
type Op struct {
	Kind OpKind
	Name string
}

type Buffer struct {
	codes []KeyCode
	ortho orthography.Orthography
	// start of the text written by the last word token
	lastWord int

	AddTranslationCount int
	ResetStateCount     int
	State               state.State
	Ops                 []Op
}

func NewBuffer(ortho orthography.Orthography) *Buffer {
	if ortho == nil {
		ortho = orthography.Empty{}
	}
	return &Buffer{codes: make([]KeyCode, 0, Capacity), ortho: ortho}
}

func (b *Buffer) Reset() {
	b.codes = b.codes[:0]
	b.lastWord = 0
	b.AddTranslationCount = 0
	b.ResetStateCount = 0
	b.State = state.State{}
	b.Ops = b.Ops[:0]
}

func (b *Buffer) Len() int { return len(b.codes) }

func (b *Buffer) At(i int) KeyCode { return b.codes[i] }

// Codes exposes the populated key codes. The slice is only valid until the
// next Populate.
func (b *Buffer) Codes() []KeyCode { return b.codes }

// Populate converts the tokens, starting from the state carried by the first
// token or from start when the tokens carry none.
func (b *Buffer) Populate(tk *segment.Tokenizer, start state.State) {
	b.Reset()
	b.State = start.WithoutTransientFlags()
	first := true
	for tk.HasMore() {
		token := tk.Next()
		if first && token.HasState {
			b.State = token.State.WithoutTransientFlags()
		}
		first = false
		b.ProcessToken(token.Text)
	}
}

// AppendSpace writes the trailing space used when spaces follow words.
func (b *Buffer) AppendSpace() {
	b.appendSpace()
	b.State.JoinNext = true
}

func (b *Buffer) ProcessToken(text string) {
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		b.processCommand(text[1 : len(text)-1])
		return
	}
	b.processWord(unescape(text), false, false, false)
}

func (b *Buffer) push(k KeyCode) {
	if len(b.codes) == Capacity {
		panic("keycode: buffer capacity exceeded")
	}
	b.codes = append(b.codes, k)
}

func (b *Buffer) appendSpace() {
	for _, r := range b.State.SpaceText() {
		b.push(Text(r, state.CaseNormal))
	}
}

// appendCased writes text in mode, advancing the per letter case table after
// each letter, and returns the mode reached.
func (b *Buffer) appendCased(text string, mode state.CaseMode) state.CaseMode {
	for _, r := range text {
		if unicode.IsSpace(r) {
			b.push(Text(r, state.CaseNormal))
			continue
		}
		b.push(Text(r, mode))
		if unicode.IsLetter(r) {
			mode = mode.NextLetter()
		}
	}
	return mode
}

// processWord writes text as one word. attachBefore suppresses the space in
// front of it, attachAfter the space after it, and glue joins it to a
// directly preceding glued word.
func (b *Buffer) processWord(text string, attachBefore, attachAfter, glue bool) {
	joined := attachBefore || b.State.JoinNext || (glue && b.State.Glue)
	if !joined && text != "" {
		b.appendSpace()
	}
	b.lastWord = len(b.codes)
	b.appendCased(text, b.State.EffectiveCaseMode())
	if hasWordCharacters(text) {
		b.advanceWordCase()
	}
	b.State.JoinNext = attachAfter
	b.State.Glue = glue
	b.State.IsManualStateChange = false
}

func (b *Buffer) advanceWordCase() {
	b.State.CaseMode = b.State.CaseMode.NextWord()
	b.State.OverrideCaseMode = b.State.OverrideCaseMode.NextWord()
}

// processSuffix merges an orthographic suffix with the word before it, or
// attaches it unchanged when the orthography has no rule for the pair.
func (b *Buffer) processSuffix(letters string) {
	start := b.trailingWordStart()
	if start < len(b.codes) {
		word := unresolvedString(b.codes[start:])
		if merged, ok := b.ortho.TryMergeSuffix(word, letters); ok {
			modes := make([]state.CaseMode, len(b.codes)-start)
			for i, k := range b.codes[start:] {
				modes[i] = k.caseMode
			}
			b.codes = b.codes[:start]
			mode := b.State.EffectiveCaseMode()
			i := 0
			for _, r := range merged {
				m := mode
				if i < len(modes) {
					m = modes[i]
				} else if unicode.IsLetter(r) {
					mode = mode.NextLetter()
				}
				b.push(Text(r, m))
				i++
			}
			b.advanceWordCase()
			b.State.JoinNext = false
			b.State.Glue = false
			b.State.IsManualStateChange = false
			return
		}
	}
	b.processWord(letters, true, false, false)
}

// trailingWordStart returns the index of the first key code of the word at
// the end of the buffer, or Len() when the buffer does not end in a word.
func (b *Buffer) trailingWordStart() int {
	i := len(b.codes)
	for i > 0 && !b.codes[i-1].IsWhitespace() && !b.codes[i-1].IsRaw() {
		i--
	}
	return i
}

// wordBounds returns the [start,end) ranges of the last n words, newest last.
// Trailing whitespace after the last word is skipped.
func (b *Buffer) wordBounds(n int) [][2]int {
	var bounds [][2]int
	i := len(b.codes)
	for len(bounds) < n {
		for i > 0 && (b.codes[i-1].IsWhitespace() || b.codes[i-1].IsRaw()) {
			i--
		}
		if i == 0 {
			break
		}
		end := i
		for i > 0 && !b.codes[i-1].IsWhitespace() && !b.codes[i-1].IsRaw() {
			i--
		}
		bounds = append(bounds, [2]int{i, end})
	}
	for l, r := 0, len(bounds)-1; l < r; l, r = l+1, r-1 {
		bounds[l], bounds[r] = bounds[r], bounds[l]
	}
	return bounds
}

func (b *Buffer) insert(at int, codes ...KeyCode) {
	if len(b.codes)+len(codes) > Capacity {
		panic("keycode: buffer capacity exceeded")
	}
	b.codes = append(b.codes[:at], append(codes, b.codes[at:]...)...)
}

func (b *Buffer) remove(from, to int) {
	b.codes = append(b.codes[:from], b.codes[to:]...)
}

// ToString renders the typed text from key code index from, skipping raw
// key codes.
func (b *Buffer) ToString(from int) string {
	var sb strings.Builder
	for _, k := range b.codes[from:] {
		if !k.IsRaw() {
			sb.WriteRune(k.Resolved())
		}
	}
	return sb.String()
}

// ToUnresolvedString renders the text as written, ignoring case modes.
func (b *Buffer) ToUnresolvedString() string {
	return unresolvedString(b.codes)
}

func unresolvedString(codes []KeyCode) string {
	var sb strings.Builder
	for _, k := range codes {
		if !k.IsRaw() {
			sb.WriteRune(k.Rune())
		}
	}
	return sb.String()
}

func unescape(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			i++
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}

func hasWordCharacters(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
