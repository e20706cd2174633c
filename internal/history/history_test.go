package history

import (
	"testing"

	"stenokey/internal/state"
	"stenokey/internal/stroke"
)

type lengths []int

func (l lengths) Len() int               { return len(l) }
func (l lengths) StrokeLength(i int) int { return l[i] }

func TestAddAndBack(t *testing.T) {
	h := New()
	h.Add(stroke.MustParse("KAT"), state.State{})
	h.Add(stroke.MustParse("TEFT"), state.State{JoinNext: true})
	if h.Count() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Count())
	}
	if h.Back(1).Stroke != stroke.MustParse("TEFT") || !h.Back(1).State.JoinNext {
		t.Fatalf("unexpected newest entry %+v", h.Back(1))
	}
	if h.At(0).Stroke != stroke.MustParse("KAT") {
		t.Fatalf("unexpected oldest entry %+v", h.At(0))
	}
	h.RemoveBack(1)
	if h.Count() != 1 || h.Back(1).Stroke != stroke.MustParse("KAT") {
		t.Fatalf("unexpected history after remove: %d", h.Count())
	}
}

func TestOutOfRangePanics(t *testing.T) {
	h := New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected out of range access to panic")
		}
	}()
	h.Back(1)
}

func TestPruneIfFull(t *testing.T) {
	h := New()
	for i := 0; i < Capacity; i++ {
		h.Add(stroke.Stroke(i+1), state.State{})
	}
	if !h.PruneIfFull() {
		t.Fatalf("expected full history to prune")
	}
	if h.Count() != Capacity-pruneCount {
		t.Fatalf("expected %d entries, got %d", Capacity-pruneCount, h.Count())
	}
	if h.At(0).Stroke != stroke.Stroke(pruneCount+1) {
		t.Fatalf("expected oldest entries to be dropped, got %v", h.At(0).Stroke)
	}
	h.Add(stroke.Stroke(9999), state.State{})
	if h.Back(1).Stroke != stroke.Stroke(9999) {
		t.Fatalf("expected wrapped append to be newest")
	}
	if h.PruneIfFull() {
		t.Fatalf("expected no prune below capacity")
	}
}

func TestStartingStrokeRespectsDefinitions(t *testing.T) {
	h := New()
	for i := 0; i < 6; i++ {
		h.Add(stroke.Stroke(i+1), state.State{})
	}
	// segments: 1, 3, 2 strokes
	h.UpdateDefinitionBoundaries(0, lengths{1, 3, 2})
	if got := h.GetStartingStroke(10); got != 0 {
		t.Fatalf("expected start 0, got %d", got)
	}
	// window of 4 would start at index 2, inside the 3 stroke definition
	if got := h.GetStartingStroke(4); got != 4 {
		t.Fatalf("expected start 4, got %d", got)
	}
	if got := h.GetStartingStroke(5); got != 1 {
		t.Fatalf("expected start 1, got %d", got)
	}
}

func TestUndoCount(t *testing.T) {
	h := New()
	if h.GetUndoCount(10) != 0 {
		t.Fatalf("expected 0 for empty history")
	}
	h.Add(stroke.MustParse("KAT"), state.State{})
	h.Add(stroke.MustParse("TP-PL"), state.State{})
	h.SetBackCombineUndo()
	h.Add(stroke.MustParse("TEFT"), state.State{})
	if got := h.GetUndoCount(10); got != 2 {
		t.Fatalf("expected newest stroke plus combined entry, got %d", got)
	}
	if got := h.GetUndoCount(1); got != 0 {
		t.Fatalf("expected undo outside the window to report 0, got %d", got)
	}
	h.SetBackHasManualStateChange()
	if !h.Back(1).HasManualStateChange {
		t.Fatalf("expected manual state change flag")
	}
}
