// Package history keeps the recent strokes together with the formatting state
// each one started from.
package history

import (
	"fmt"

	"stenokey/internal/state"
	"stenokey/internal/stroke"
)

// Capacity is the number of strokes kept before the oldest are pruned.
const Capacity = 256

const pruneCount = Capacity / 4

type Entry struct {
	Stroke stroke.Stroke

	// State is the state the stroke started from, i.e. what replaying all
	// earlier strokes produced.
	State state.State

	CombineUndo          bool
	HasManualStateChange bool

	// DefinitionStart is the distance back to the first stroke of the
	// definition this stroke belongs to. Zero starts a definition.
	DefinitionStart int
}

// SegmentLengths is the part of a segment list needed to mark definition
// boundaries.
type SegmentLengths interface {
	Len() int
	StrokeLength(i int) int
}

type History struct {
	entries [Capacity]Entry
	start   int
	count   int
}

func New() *History { return &History{} }

func (h *History) Count() int { return h.count }

func (h *History) index(i int) int { return (h.start + i) % Capacity }

// At returns the entry at logical index i, 0 being the oldest.
func (h *History) At(i int) *Entry {
	if i < 0 || i >= h.count {
		panic(fmt.Sprintf("history: index %d out of range [0,%d)", i, h.count))
	}
	return &h.entries[h.index(i)]
}

// Back returns the n-th newest entry, Back(1) being the newest.
func (h *History) Back(n int) *Entry {
	return h.At(h.count - n)
}

func (h *History) Add(s stroke.Stroke, st state.State) {
	if h.count == Capacity {
		h.drop(1)
	}
	h.entries[h.index(h.count)] = Entry{Stroke: s, State: st}
	h.count++
}

func (h *History) RemoveBack(n int) {
	if n > h.count {
		panic(fmt.Sprintf("history: remove %d of %d entries", n, h.count))
	}
	h.count -= n
}

// PruneIfFull drops the oldest quarter of the history once it is full so a new
// stroke always fits.
func (h *History) PruneIfFull() bool {
	if h.count < Capacity {
		return false
	}
	h.drop(pruneCount)
	return true
}

func (h *History) drop(n int) {
	h.start = h.index(n)
	h.count -= n
	for i := 0; i < h.count && i < Capacity; i++ {
		e := h.At(i)
		if e.DefinitionStart > i {
			e.DefinitionStart = i
		}
	}
}

func (h *History) Reset() {
	h.start = 0
	h.count = 0
}

// GetStartingStroke returns the oldest index a reconversion over at most
// maxWindow strokes may start at. The window never starts inside a
// definition.
func (h *History) GetStartingStroke(maxWindow int) int {
	start := h.count - maxWindow
	if start < 0 {
		start = 0
	}
	for start < h.count && h.At(start).DefinitionStart != 0 {
		start++
	}
	return start
}

// GetUndoCount returns how many trailing entries one undo removes: the newest
// one plus the combine-undo entries directly before it. It is 0 when the
// history is empty or the undo does not fit inside maxWindow.
func (h *History) GetUndoCount(maxWindow int) int {
	if h.count == 0 {
		return 0
	}
	n := 1
	for n < h.count && h.Back(n+1).CombineUndo {
		n++
	}
	if n > maxWindow {
		return 0
	}
	return n
}

// UpdateDefinitionBoundaries records, for the strokes from start onwards,
// which segment each one belongs to.
func (h *History) UpdateDefinitionBoundaries(start int, segments SegmentLengths) {
	i := start
	for s := 0; s < segments.Len(); s++ {
		length := segments.StrokeLength(s)
		for offset := 0; offset < length && i < h.count; offset++ {
			h.At(i).DefinitionStart = offset
			i++
		}
	}
}

func (h *History) SetBackCombineUndo() {
	if h.count > 0 {
		h.Back(1).CombineUndo = true
	}
}

func (h *History) SetBackHasManualStateChange() {
	if h.count > 0 {
		h.Back(1).HasManualStateChange = true
	}
}

// Strokes copies the strokes from index from to the end.
func (h *History) Strokes(from int) []stroke.Stroke {
	out := make([]stroke.Stroke, 0, h.count-from)
	for i := from; i < h.count; i++ {
		out = append(out, h.At(i).Stroke)
	}
	return out
}
