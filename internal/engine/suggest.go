package engine

import (
	"strings"

	"stenokey/internal/segment"
)

// suggestionWords is how many trailing words are tried for suggestions, and
// suggestionSegments the most segments one suggestion may cover.
const (
	suggestionWords    = 7
	suggestionSegments = 8
)

func isFingerSpelling(text string) bool { return strings.HasPrefix(text, "{&") }

func isJoinPrevious(text string) bool {
	return strings.HasPrefix(text, "{^") || text == "{*!}"
}

// printSuggestions reports shorter outlines for what the last strokes wrote,
// first for the trailing word, then for longer and longer phrases.
func (e *Engine) printSuggestions(next *conversion) {
	if !e.opts.Suggestions || e.opts.Events == nil || next.list.IsEmpty() {
		return
	}
	if isFingerSpelling(next.list.Back().Text()) {
		e.printFingerSpellingSuggestion(next)
		return
	}

	var last string
	hasLast := false
	for words := 1; words <= suggestionWords; words++ {
		lookup, ok := e.printSegmentSuggestion(words, next.list, last, hasLast)
		if !ok {
			return
		}
		last, hasLast = lookup, true
	}
}

// printFingerSpellingSuggestion suggests a word for the letters spelled at
// the end of the text.
func (e *Engine) printFingerSpellingSuggestion(next *conversion) {
	if next.buffer.State.IsManualStateChange || e.state.JoinNext && !e.opts.SpaceAfter {
		return
	}
	codes := next.buffer.Codes()
	end := len(codes)
	if e.opts.SpaceAfter && end > 0 && codes[end-1].IsWhitespace() {
		end--
	}
	start := end
	for start > 0 && !codes[start-1].IsWhitespace() && !codes[start-1].IsRaw() {
		start--
	}
	count := end - start
	if count <= 1 {
		return
	}
	var word strings.Builder
	for _, k := range codes[start:end] {
		word.WriteRune(k.Resolved())
	}
	e.printSuggestion(word.String(), 1, count)
}

// printSegmentSuggestion looks up the text of the last words segments. It
// returns the text looked up, and false when no longer phrase can follow.
func (e *Engine) printSegmentSuggestion(words int, list *segment.List, last string, hasLast bool) (string, bool) {
	start := list.Len()
	for i := 0; i < words; i++ {
		if start == 0 {
			return "", false
		}
		for start != 0 {
			start--
			seg := list.At(start)
			if seg.ContainsKeyCode() {
				return "", false
			}
			text := seg.Text()
			if !isJoinPrevious(text) &&
				(start == 0 || !isFingerSpelling(text) || !isFingerSpelling(list.Text(start-1))) {
				break
			}
		}
	}
	if list.Len()-start >= suggestionSegments {
		return "", false
	}

	test := list.Sub(start)
	threshold := test.TotalStrokes()
	e.scratch.Populate(test.Tokens(0), list.State(start))
	if !shouldShowSuggestions(test) {
		return "", true
	}

	var lookup string
	if test.HasManualStateChange() || strings.HasPrefix(test.Back().Text(), "{:") {
		lookup = e.scratch.ToString(0)
	} else {
		lookup = e.scratch.ToUnresolvedString()
	}
	spaceRemoved := strings.TrimPrefix(lookup, " ")

	first := test.At(0).Text()
	if first == "{*!}" || strings.HasPrefix(first, "{:") {
		return lookup, true
	}

	show := spaceRemoved != "" && (start != list.Len()-1 || threshold != 1)
	if e.state.JoinNext {
		usePrefix := true
		if list.Len() >= 2 && list.State(list.Len()-1).WithoutTransientFlags() == e.state {
			if strings.HasSuffix(spaceRemoved, " ") {
				spaceRemoved = strings.TrimSuffix(spaceRemoved, " ")
				lookup = spaceRemoved
				usePrefix = false
			}
		}
		if usePrefix {
			spaceRemoved = "{" + spaceRemoved + "^}"
			lookup = spaceRemoved
		}
	}
	if !show && hasLast {
		show = spaceRemoved != strings.TrimPrefix(last, " ")
	}
	if show {
		e.printSuggestion(spaceRemoved, threshold, threshold)
	}
	return lookup, true
}

// shouldShowSuggestions requires more segments before the trailing {*!}
// atoms than there are of them.
func shouldShowSuggestions(list *segment.List) bool {
	deletes := 0
	for i := list.Len() - 1; i >= 0 && list.Text(i) == "{*!}"; i-- {
		deletes++
	}
	return list.Len() > 2*deletes
}

func (e *Engine) printSuggestion(text string, combineCount, threshold int) {
	outlines := e.dict.ReverseLookup(text, threshold)
	if len(outlines) == 0 {
		return
	}
	names := make([]string, len(outlines))
	for i, o := range outlines {
		names[i] = o.String()
	}
	if err := e.opts.Events.Suggestion(combineCount, text, names); err != nil {
		tracer().Errorf("suggestion: %v", err)
	}
}
