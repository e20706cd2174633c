package engine

import (
	"context"
	"fmt"
	"strings"

	"stenokey/internal/keycode"
	"stenokey/internal/linux"
	"stenokey/internal/segment"
	"stenokey/internal/stroke"
)

func (e *Engine) processStroke(ctx context.Context, s stroke.Stroke) error {
	h := e.history
	if h.PruneIfFull() {
		e.metrics.HistoryPrunes.Add(ctx, 1)
	}
	before := e.state
	h.Add(s, e.state)

	count := h.Count()
	start := h.GetStartingStroke(e.window())
	conversionCount := count - start
	assert(conversionCount > 0, "window does not contain the new stroke")

	previous, next := e.previous, e.next
	e.createSegments(next, h, count, conversionCount, e.state)
	h.UpdateDefinitionBoundaries(start, next.list)
	if next.builder.HasModifiedStrokeHistory() {
		e.createSegments(previous, h, count-1, conversionCount-1, e.state)
	} else {
		e.createSegmentsUsingLonger(previous, h, count-1, conversionCount-1, e.state, next)
	}

	offset := e.startingOffset(previous.list, next.list)
	e.convertBoth(previous, next, offset)

	e.state = next.buffer.State.WithoutTransientFlags()
	if next.buffer.AddTranslationCount > previous.buffer.AddTranslationCount {
		e.printPaperTape(s, previous.list, next.list)
		h.RemoveBack(1)
		e.state = before
		e.beginAddTranslation()
		return nil
	}

	unchanged, err := e.emit(ctx, previous.buffer, next.buffer)
	if err != nil {
		return err
	}
	suggest := true
	if unchanged {
		if e.state == before {
			h.SetBackCombineUndo()
		}
		if previous.buffer.Len() == next.buffer.Len() {
			h.SetBackHasManualStateChange()
			if !e.state.IsDefaultCase() || h.Count() >= 2 && h.Back(2).HasManualStateChange {
				suggest = false
			}
		}
	}

	e.applyOps(previous.buffer, next.buffer)
	e.printPaperTape(s, previous.list, next.list)
	if suggest {
		e.printSuggestions(next)
	}
	if next.buffer.ResetStateCount > previous.buffer.ResetStateCount {
		e.resetState()
	}
	return nil
}

func (e *Engine) processUndo(ctx context.Context) error {
	h := e.history
	window := e.window()
	undoCount := h.GetUndoCount(window)
	start := h.GetStartingStroke(window)
	conversionCount := h.Count() - start
	if undoCount == 0 || undoCount > conversionCount {
		// nothing the engine typed is left to take back
		if err := e.emitter.Output().TapKey(linux.KeyBackspace); err != nil {
			return fmt.Errorf("emit: %w", err)
		}
		e.printPaperTapeUndo(0)
		return nil
	}

	previous, next := e.previous, e.next
	e.createSegments(previous, h, h.Count(), conversionCount, e.state)

	e.state = h.Back(undoCount).State.WithoutTransientFlags()
	h.RemoveBack(undoCount)

	nextCount := conversionCount - undoCount
	if previous.builder.HasModifiedStrokeHistory() {
		e.createSegments(next, h, h.Count(), nextCount, e.state)
	} else {
		e.createSegmentsUsingLonger(next, h, h.Count(), nextCount, e.state, previous)
	}
	h.UpdateDefinitionBoundaries(h.Count()-nextCount, next.list)

	offset := e.startingOffset(previous.list, next.list)
	e.convertBoth(previous, next, offset)

	if _, err := e.emit(ctx, previous.buffer, next.buffer); err != nil {
		return err
	}
	e.printPaperTapeUndo(undoCount)
	return nil
}

func (e *Engine) printPaperTape(s stroke.Stroke, previous, next *segment.List) {
	if !e.opts.PaperTape || e.opts.Events == nil {
		return
	}
	common := segment.CommonStartingCount(previous, next)
	var text strings.Builder
	for tk := next.Tokens(common); tk.HasMore(); {
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(tk.Next().Text)
	}
	if err := e.opts.Events.PaperTape(s.WideString(), previous.Len()-common, text.String()); err != nil {
		tracer().Errorf("paper tape: %v", err)
	}
}

func (e *Engine) printPaperTapeUndo(undoCount int) {
	if !e.opts.PaperTape || e.opts.Events == nil {
		return
	}
	if err := e.opts.Events.PaperTapeUndo(stroke.Undo.WideString(), undoCount); err != nil {
		tracer().Errorf("paper tape: %v", err)
	}
}

func (e *Engine) printTextLog(next *keycode.Buffer, common, backspaces int) {
	if !e.opts.TextLog || e.opts.Events == nil {
		return
	}
	if err := e.opts.Events.TextLog(backspaces, next.ToString(common)); err != nil {
		tracer().Errorf("text log: %v", err)
	}
}
