// Package segment splits a window of strokes into dictionary translations and
// turns them into a token stream.
package segment

import (
	"strings"

	"stenokey/internal/dictionary"
	"stenokey/internal/state"
)

// Handle refers to a state slot in the arena of the builder that produced a
// segment. Builders that transfer the same window share the index space.
type Handle int

type Segment struct {
	StrokeLength int
	State        Handle
	Lookup       dictionary.Result
}

func (s Segment) Text() string { return s.Lookup.Text() }

// IsControl reports whether the first atom of the text is a command.
func (s Segment) IsControl() bool {
	return strings.HasPrefix(strings.TrimLeft(s.Text(), " "), "{")
}

// ContainsKeyCode reports whether the text presses raw keys.
func (s Segment) ContainsKeyCode() bool {
	return strings.Contains(s.Text(), "{#")
}

type List struct {
	segments []Segment
	arena    *Builder
}

func NewList(capacity int) *List {
	return &List{segments: make([]Segment, 0, capacity)}
}

// Bind makes the list resolve state handles through b.
func (l *List) Bind(b *Builder) { l.arena = b }

func (l *List) Reset() {
	l.segments = l.segments[:0]
	l.arena = nil
}

func (l *List) Add(s Segment) { l.segments = append(l.segments, s) }

func (l *List) Len() int          { return len(l.segments) }
func (l *List) IsEmpty() bool     { return len(l.segments) == 0 }
func (l *List) At(i int) Segment  { return l.segments[i] }
func (l *List) Text(i int) string { return l.segments[i].Text() }
func (l *List) Back() Segment     { return l.segments[len(l.segments)-1] }

func (l *List) StrokeLength(i int) int { return l.segments[i].StrokeLength }

// State resolves the state the i-th segment started from.
func (l *List) State(i int) state.State {
	if l.arena == nil {
		return state.State{}
	}
	return l.arena.State(l.segments[i].State)
}

// TotalStrokes is the number of strokes the segments cover.
func (l *List) TotalStrokes() int {
	total := 0
	for _, s := range l.segments {
		total += s.StrokeLength
	}
	return total
}

// Sub copies the segments from index from into a new list bound to the same
// arena.
func (l *List) Sub(from int) *List {
	if from > len(l.segments) {
		from = len(l.segments)
	}
	sub := &List{segments: append([]Segment(nil), l.segments[from:]...), arena: l.arena}
	return sub
}

func (l *List) HasManualStateChange() bool {
	for i := range l.segments {
		if l.State(i).IsManualStateChange {
			return true
		}
	}
	return false
}

// ReusePrefix copies the leading segments of longer that fit inside limit
// strokes and returns the number of strokes they cover. Handles keep their
// index and resolve through this list's arena.
func (l *List) ReusePrefix(longer *List, limit int) int {
	offset := 0
	for _, s := range longer.segments {
		if offset+s.StrokeLength > limit {
			break
		}
		offset += s.StrokeLength
		l.segments = append(l.segments, s)
	}
	return offset
}

// CommonStartingCount is the length of the longest prefix of segments whose
// texts are equal.
func CommonStartingCount(a, b *List) int {
	limit := len(a.segments)
	if len(b.segments) < limit {
		limit = len(b.segments)
	}
	n := 0
	for n < limit && a.segments[n].Text() == b.segments[n].Text() {
		n++
	}
	return n
}
