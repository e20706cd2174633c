package keycode

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"stenokey/internal/segment"
	"stenokey/internal/state"
)

// processCommand handles the body of a {...} atom. Anything it does not
// understand is dropped.
func (b *Buffer) processCommand(command string) {
	switch command {
	case "":
		return
	case "^":
		b.State.JoinNext = true
		return
	case "-|":
		b.setOverride(state.CaseTitleOnce)
		return
	case ">":
		b.setOverride(state.CaseLowerOnce)
		return
	case "<":
		b.setOverride(state.CaseUpperOnce)
		return
	case "*-|":
		b.RetroactiveCapitalize(1)
		return
	case "*>":
		b.retroactiveLowerFirst()
		return
	case "*<":
		b.RetroactiveUpperCase(1)
		return
	case "*!":
		b.RetroactiveDeleteSpace()
		return
	case "*?":
		b.RetroactiveInsertSpace()
		return
	case ".", "?", "!":
		b.processWord(command, true, false, false)
		b.State.OverrideCaseMode = state.CaseTitleOnce
		return
	case ",", ":", ";":
		b.processWord(command, true, false, false)
		return
	}

	switch {
	case strings.HasPrefix(command, "#"):
		b.processKeyPresses(command[1:])
	case strings.HasPrefix(command, "&"):
		b.processWord(unescape(command[1:]), false, false, true)
	case strings.HasPrefix(command, ":"):
		if !b.processFunction(strings.Split(command[1:], ":")) {
			tracer().Debugf("dropping unknown function {%s}", command)
		}
	case strings.HasPrefix(strings.ToUpper(command), "MODE:"):
		if !b.processMode(command[len("MODE:"):]) {
			tracer().Debugf("dropping unknown mode {%s}", command)
		}
	case strings.HasPrefix(command, "^") || strings.HasSuffix(command, "^"):
		b.processAttach(command)
	default:
		tracer().Debugf("dropping unknown command {%s}", command)
	}
}

func (b *Buffer) setOverride(mode state.CaseMode) {
	b.State.OverrideCaseMode = mode
	b.State.IsManualStateChange = true
}

func (b *Buffer) processAttach(command string) {
	attachBefore := strings.HasPrefix(command, "^")
	attachAfter := strings.HasSuffix(command, "^")
	text := command
	if attachBefore {
		text = text[1:]
	}
	if attachAfter && text != "" {
		text = text[:len(text)-1]
	}
	if attachBefore && !attachAfter {
		if letters, ok := segment.SuffixLetters("{" + command + "}"); ok {
			b.processSuffix(letters)
			return
		}
	}
	b.processWord(unescape(text), attachBefore, attachAfter, false)
}

func (b *Buffer) processKeyPresses(spec string) {
	codes, err := parseKeyPresses(spec)
	if err != nil {
		tracer().Debugf("dropping key presses: %v", err)
		return
	}
	for _, k := range codes {
		b.push(k)
	}
}

func (b *Buffer) processMode(mode string) bool {
	name, arg, _ := strings.Cut(mode, ":")
	switch strings.ToUpper(name) {
	case "CAPS":
		b.setCaseMode(state.CaseUpper)
	case "LOWER":
		b.setCaseMode(state.CaseLower)
	case "TITLE":
		b.setCaseMode(state.CaseTitle)
	case "RESET_CASE":
		b.setCaseMode(state.CaseNormal)
	case "SET_SPACE":
		b.setSpace(arg)
	case "RESET_SPACE":
		b.resetSpace()
	case "RESET":
		b.setCaseMode(state.CaseNormal)
		b.resetSpace()
	default:
		return false
	}
	return true
}

func (b *Buffer) setCaseMode(mode state.CaseMode) {
	b.State.CaseMode = mode
	b.State.IsManualStateChange = true
}

func (b *Buffer) setSpace(space string) {
	b.State.CustomSpace = true
	b.State.Space = space
	b.State.IsManualStateChange = true
}

func (b *Buffer) resetSpace() {
	b.State.CustomSpace = false
	b.State.Space = ""
	b.State.IsManualStateChange = true
}

// processFunction runs {:name:arg...}. parameters[0] is the function name.
func (b *Buffer) processFunction(parameters []string) bool {
	switch strings.ToLower(parameters[0]) {
	case "set_case":
		return b.setCaseFunction(parameters)
	case "set_space":
		return b.setSpaceFunction(parameters)
	case "retro_capitalize":
		return b.countFunction(parameters, b.RetroactiveCapitalize)
	case "retro_title_case":
		return b.countFunction(parameters, b.RetroactiveTitleCase)
	case "retro_upper_case":
		return b.countFunction(parameters, b.RetroactiveUpperCase)
	case "retro_lower_case":
		return b.countFunction(parameters, b.RetroactiveLowerCase)
	case "retro_delete_space":
		b.RetroactiveDeleteSpace()
		return true
	case "retro_double_quotes":
		return b.countFunction(parameters, func(n int) { b.RetroactiveQuotes(n, "“", "”") })
	case "retro_single_quotes":
		return b.countFunction(parameters, func(n int) { b.RetroactiveQuotes(n, "‘", "’") })
	case "add_translation":
		b.AddTranslationCount++
		return true
	case "reset_state":
		b.ResetStateCount++
		return true
	case "enable_dictionary":
		return b.opFunction(parameters, OpEnableDictionary)
	case "disable_dictionary":
		return b.opFunction(parameters, OpDisableDictionary)
	case "toggle_dictionary":
		return b.opFunction(parameters, OpToggleDictionary)
	case "keyboard_layout":
		return b.opFunction(parameters, OpKeyboardLayout)
	case "unicode":
		return b.unicodeFunction(parameters)
	default:
		return false
	}
}

func (b *Buffer) setCaseFunction(parameters []string) bool {
	if len(parameters) != 2 {
		return false
	}
	mode, ok := state.ParseCaseMode(parameters[1])
	if !ok {
		return false
	}
	b.setCaseMode(mode)
	return true
}

func (b *Buffer) setSpaceFunction(parameters []string) bool {
	switch len(parameters) {
	case 1:
		b.resetSpace()
	case 2:
		b.setSpace(parameters[1])
	default:
		// the space itself contained ':'
		b.setSpace(strings.Join(parameters[1:], ":"))
	}
	return true
}

// countFunction parses the optional word count argument, which defaults to 1.
func (b *Buffer) countFunction(parameters []string, apply func(int)) bool {
	n := 1
	if len(parameters) > 2 {
		return false
	}
	if len(parameters) == 2 {
		v, err := strconv.Atoi(strings.TrimSpace(parameters[1]))
		if err != nil || v < 1 {
			return false
		}
		n = v
	}
	apply(n)
	return true
}

func (b *Buffer) opFunction(parameters []string, kind OpKind) bool {
	if len(parameters) != 2 || strings.TrimSpace(parameters[1]) == "" {
		return false
	}
	b.Ops = append(b.Ops, Op{Kind: kind, Name: strings.TrimSpace(parameters[1])})
	return true
}

// unicodeFunction inserts code points given in hex, with an optional U+
// prefix. A single non ASCII character is inserted as is.
func (b *Buffer) unicodeFunction(parameters []string) bool {
	if len(parameters) != 2 || parameters[1] == "" {
		return false
	}
	arg := parameters[1]
	if utf8.RuneCountInString(arg) == 1 && arg[0] >= utf8.RuneSelf {
		b.processWord(arg, false, false, false)
		return true
	}
	var sb strings.Builder
	for _, field := range strings.Fields(arg) {
		hex := strings.TrimPrefix(strings.TrimPrefix(field, "U+"), "u+")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return false
		}
		sb.WriteRune(rune(v))
	}
	b.processWord(sb.String(), false, false, false)
	return true
}

// RetroactiveCapitalize upper cases the first letter of each of the last n
// words.
func (b *Buffer) RetroactiveCapitalize(n int) {
	for _, w := range b.wordBounds(n) {
		b.setFirstLetterCase(w, state.CaseUpper)
	}
}

// RetroactiveTitleCase capitalizes the last n words and lower cases the rest
// of their letters.
func (b *Buffer) RetroactiveTitleCase(n int) {
	for _, w := range b.wordBounds(n) {
		b.setCase(w, state.CaseLower)
		b.setFirstLetterCase(w, state.CaseUpper)
	}
}

func (b *Buffer) RetroactiveUpperCase(n int) {
	for _, w := range b.wordBounds(n) {
		b.setCase(w, state.CaseUpper)
	}
}

func (b *Buffer) RetroactiveLowerCase(n int) {
	for _, w := range b.wordBounds(n) {
		b.setCase(w, state.CaseLower)
	}
}

func (b *Buffer) retroactiveLowerFirst() {
	for _, w := range b.wordBounds(1) {
		b.setFirstLetterCase(w, state.CaseLower)
	}
}

func (b *Buffer) setCase(w [2]int, mode state.CaseMode) {
	for i := w[0]; i < w[1]; i++ {
		b.codes[i] = b.codes[i].withCase(mode)
	}
}

func (b *Buffer) setFirstLetterCase(w [2]int, mode state.CaseMode) {
	for i := w[0]; i < w[1]; i++ {
		if unicode.IsLetter(b.codes[i].Rune()) {
			b.codes[i] = b.codes[i].withCase(mode)
			return
		}
	}
}

// RetroactiveQuotes wraps the last n words in quotes.
func (b *Buffer) RetroactiveQuotes(n int, open, close string) {
	bounds := b.wordBounds(n)
	if len(bounds) == 0 {
		return
	}
	end := bounds[len(bounds)-1][1]
	b.insert(end, textCodes(close)...)
	b.insert(bounds[0][0], textCodes(open)...)
}

// RetroactiveDeleteSpace joins the last word to the one before it.
func (b *Buffer) RetroactiveDeleteSpace() {
	bounds := b.wordBounds(1)
	if len(bounds) == 0 {
		return
	}
	start := bounds[0][0]
	i := start
	for i > 0 && b.codes[i-1].IsWhitespace() {
		i--
	}
	if i < start {
		b.remove(i, start)
	}
}

// RetroactiveInsertSpace separates the last written word from the text it
// was attached to.
func (b *Buffer) RetroactiveInsertSpace() {
	at := b.lastWord
	if at == 0 || at > len(b.codes) || b.codes[at-1].IsWhitespace() {
		return
	}
	b.insert(at, textCodes(b.State.SpaceText())...)
}

func textCodes(text string) []KeyCode {
	codes := make([]KeyCode, 0, len(text))
	for _, r := range text {
		codes = append(codes, Text(r, state.CaseNormal))
	}
	return codes
}
