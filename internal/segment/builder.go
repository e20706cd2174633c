package segment

import (
	"strings"
	"unicode"

	"stenokey/internal/dictionary"
	"stenokey/internal/history"
	"stenokey/internal/orthography"
	"stenokey/internal/state"
	"stenokey/internal/stroke"
)

// suffixKeys are the right bank keys that are tried as a separate suffix
// stroke when a stroke has no definition of its own.
var suffixKeys = []stroke.Key{stroke.RightG, stroke.RightS, stroke.RightD, stroke.RightZ}

// Builder holds a window of strokes copied out of the history together with
// the states they started from. The states form the arena segment handles
// point into.
type Builder struct {
	strokes  []stroke.Stroke
	states   []state.State
	scratch  []stroke.Stroke
	modified bool
}

func NewBuilder(capacity int) *Builder {
	return &Builder{
		strokes: make([]stroke.Stroke, 0, capacity),
		states:  make([]state.State, 0, capacity),
		scratch: make([]stroke.Stroke, 0, capacity),
	}
}

func (b *Builder) Count() int { return len(b.strokes) }

func (b *Builder) Strokes() []stroke.Stroke { return b.strokes }

func (b *Builder) State(h Handle) state.State { return b.states[h] }

// HasModifiedStrokeHistory reports whether the last CreateSegments split a
// stroke into stem and suffix. Segments of such a builder cannot be reused
// for a shorter window.
func (b *Builder) HasModifiedStrokeHistory() bool { return b.modified }

// TransferFrom copies the conversionLimit strokes ending before history index
// sourceStrokeCount.
func (b *Builder) TransferFrom(h *history.History, sourceStrokeCount, conversionLimit int) {
	if conversionLimit > sourceStrokeCount {
		conversionLimit = sourceStrokeCount
	}
	if conversionLimit < 0 {
		conversionLimit = 0
	}
	b.strokes = b.strokes[:0]
	b.states = b.states[:0]
	b.modified = false
	start := sourceStrokeCount - conversionLimit
	for i := start; i < sourceStrokeCount; i++ {
		e := h.At(i)
		st := e.State
		st.IsManualStateChange = e.HasManualStateChange
		st.ShouldCombineUndo = e.CombineUndo
		b.strokes = append(b.strokes, e.Stroke)
		b.states = append(b.states, st)
	}
}

// TransferStartFrom overwrites the first n strokes and states with those of
// other.
func (b *Builder) TransferStartFrom(other *Builder, n int) {
	copy(b.strokes[:n], other.strokes[:n])
	copy(b.states[:n], other.states[:n])
}

// CreateSegments appends segments for the strokes from startingOffset to the
// end of the window. Each segment is the longest outline with a definition;
// strokes without one become a segment showing their steno notation.
func (b *Builder) CreateSegments(dict dictionary.Dictionary, ortho orthography.Orthography, list *List, startingOffset int) {
	list.Bind(b)
	maxLength := dict.MaximumOutlineLength()
	if maxLength < 1 {
		maxLength = 1
	}
	for pos := startingOffset; pos < len(b.strokes); {
		length, result := b.longestMatch(dict, pos, maxLength)
		seg := Segment{StrokeLength: length, State: Handle(pos), Lookup: result}
		pos += length
		if mergeSuffix(list, seg, ortho) {
			continue
		}
		list.Add(seg)
	}
}

func (b *Builder) longestMatch(dict dictionary.Dictionary, pos, maxLength int) (int, dictionary.Result) {
	limit := len(b.strokes) - pos
	if limit > maxLength {
		limit = maxLength
	}
	for length := limit; length >= 1; length-- {
		window := b.strokes[pos : pos+length]
		if result := dict.Lookup(window); result.IsValid() {
			return length, result
		}
		if result, ok := b.splitSuffix(dict, window); ok {
			b.modified = true
			return length, result
		}
	}
	return 1, dictionary.Dynamic(b.strokes[pos].String(), "")
}

func (b *Builder) splitSuffix(dict dictionary.Dictionary, window []stroke.Stroke) (dictionary.Result, bool) {
	last := window[len(window)-1]
	for _, k := range suffixKeys {
		if !last.Has(k) {
			continue
		}
		suffixStroke := stroke.Of(k)
		stem := last.Without(suffixStroke)
		if stem.IsEmpty() {
			continue
		}
		b.scratch = append(b.scratch[:0], window[:len(window)-1]...)
		b.scratch = append(b.scratch, stem)
		stemResult := dict.Lookup(b.scratch)
		if !stemResult.IsValid() {
			continue
		}
		suffix := dict.Lookup([]stroke.Stroke{suffixStroke})
		if !suffix.IsValid() {
			continue
		}
		return dictionary.Dynamic(stemResult.Text()+" "+suffix.Text(), stemResult.Provider()), true
	}
	return dictionary.Invalid(), false
}

// mergeSuffix folds an orthographic suffix such as {^ing} into a directly
// preceding plain word when the orthography changes the spelling.
func mergeSuffix(list *List, seg Segment, ortho orthography.Orthography) bool {
	if ortho == nil || list.IsEmpty() {
		return false
	}
	suffix, ok := SuffixLetters(seg.Text())
	if !ok {
		return false
	}
	prev := &list.segments[len(list.segments)-1]
	if !isPlainWord(prev.Text()) {
		return false
	}
	merged, ok := ortho.TryMergeSuffix(prev.Text(), suffix)
	if !ok {
		return false
	}
	prev.StrokeLength += seg.StrokeLength
	prev.Lookup = dictionary.Dynamic(merged, prev.Lookup.Provider())
	return true
}

// SuffixLetters returns the letters of an orthographic suffix atom {^letters}.
func SuffixLetters(text string) (string, bool) {
	if !strings.HasPrefix(text, "{^") || !strings.HasSuffix(text, "}") || len(text) < 4 {
		return "", false
	}
	letters := text[2 : len(text)-1]
	for _, r := range letters {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	return letters, true
}

func isPlainWord(text string) bool {
	return text != "" && !strings.ContainsAny(text, " {}\\")
}
