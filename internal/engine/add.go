package engine

import (
	"context"
	"fmt"

	"stenokey/internal/emitter"
	"stenokey/internal/history"
	"stenokey/internal/orthography"
	"stenokey/internal/stroke"
)

// newlineTexts are the single stroke translations that end the outline and
// then commit the definition.
var newlineTexts = map[string]bool{
	"{^\n^}":       true,
	"\n":           true,
	"{#Return}":    true,
	"{#Return}{^}": true,
	"{^}{#Return}": true,
}

// Prompt is what the add-translation editor shows.
type Prompt struct {
	Active  bool
	Outline stroke.Outline
	// Editing is set once the outline is finished and strokes write the
	// translation.
	Editing     bool
	Translation string
}

// addTranslation is the editor state. Its strokes never reach the main
// history or the output sink.
type addTranslation struct {
	history *history.History
	// newline is the history index the translation starts at, -1 while the
	// outline is written.
	newline  int
	previous *conversion
	next     *conversion
}

func newAddTranslation(ortho orthography.Orthography) addTranslation {
	return addTranslation{
		history:  history.New(),
		newline:  -1,
		previous: newConversion(ortho),
		next:     newConversion(ortho),
	}
}

func (e *Engine) beginAddTranslation() {
	if e.opts.User == nil {
		tracer().Infof("add translation: no user dictionary")
		return
	}
	tracer().Debugf("add translation: begin")
	e.mode = ModeAddTranslation
	e.add.history.Reset()
	e.add.newline = -1
	e.add.previous.buffer.Reset()
	e.add.next.buffer.Reset()
	e.notifyPrompt()
}

func (e *Engine) endAddTranslation() {
	if e.mode != ModeAddTranslation {
		return
	}
	tracer().Debugf("add translation: end")
	e.mode = ModeNormal
	e.add.history.Reset()
	e.add.newline = -1
	e.notifyPrompt()
}

func (e *Engine) isNewline(s stroke.Stroke) bool {
	result := e.dict.Lookup([]stroke.Stroke{s})
	return result.IsValid() && newlineTexts[result.Text()]
}

func (e *Engine) addTranslationStroke(ctx context.Context, s stroke.Stroke) error {
	h := e.add.history
	if e.isNewline(s) {
		if e.add.newline >= 0 {
			return e.commitAddTranslation(ctx)
		}
		if h.Count() == 0 {
			e.endAddTranslation()
			return nil
		}
		e.add.newline = h.Count()
		e.renderTranslation()
		return nil
	}
	if h.Count() == history.Capacity {
		tracer().Infof("add translation: editor is full")
		return nil
	}
	h.Add(s, initialState)
	e.renderTranslation()
	return nil
}

func (e *Engine) addTranslationUndo() {
	h := e.add.history
	switch {
	case e.add.newline >= 0 && h.Count() == e.add.newline:
		e.add.newline = -1
	case h.Count() == 0:
		e.endAddTranslation()
		return
	default:
		h.RemoveBack(1)
	}
	e.renderTranslation()
}

// renderTranslation converts the translation strokes and reports the prompt.
// Strokes of the outline part change the prompt every time; the translation
// only when its text changed.
func (e *Engine) renderTranslation() {
	e.add.previous, e.add.next = e.add.next, e.add.previous
	h := e.add.history
	next := e.add.next
	if e.add.newline < 0 {
		next.buffer.Reset()
		e.notifyPrompt()
		return
	}
	e.createSegments(next, h, h.Count(), h.Count()-e.add.newline, initialState)
	next.buffer.Populate(next.list.Tokens(0), initialState)

	common, backspaces := emitter.Diff(e.add.previous.buffer, next.buffer)
	if backspaces == 0 && common == next.buffer.Len() && e.add.previous.buffer.Len() == next.buffer.Len() && h.Count() > e.add.newline {
		return
	}
	e.notifyPrompt()
}

func (e *Engine) prompt() Prompt {
	if e.mode != ModeAddTranslation {
		return Prompt{}
	}
	h := e.add.history
	end := h.Count()
	if e.add.newline >= 0 {
		end = e.add.newline
	}
	p := Prompt{Active: true, Outline: stroke.Outline(h.Strokes(0)[:end])}
	if e.add.newline >= 0 {
		p.Editing = true
		p.Translation = e.add.next.buffer.ToString(0)
	}
	return p
}

func (e *Engine) notifyPrompt() {
	if e.opts.Prompt != nil {
		e.opts.Prompt(e.prompt())
	}
}

// AddTranslationPrompt returns the editor contents. Active is false outside
// add-translation mode.
func (e *Engine) AddTranslationPrompt() Prompt {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompt()
}

// CommitAddTranslation stores the edited definition. Without a translation
// the outline is deleted from the user dictionary.
func (e *Engine) CommitAddTranslation(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeAddTranslation {
		return nil
	}
	return e.commitAddTranslation(ctx)
}

func (e *Engine) CancelAddTranslation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endAddTranslation()
}

func (e *Engine) commitAddTranslation(ctx context.Context) error {
	p := e.prompt()
	e.endAddTranslation()
	if len(p.Outline) == 0 {
		return nil
	}
	user := e.opts.User
	if p.Translation == "" {
		removed, err := user.Delete(p.Outline)
		if err != nil {
			return fmt.Errorf("add translation: %w", err)
		}
		tracer().Infof("add translation: %s removed=%v", p.Outline, removed)
		return nil
	}
	if err := user.Add(p.Outline, p.Translation); err != nil {
		return fmt.Errorf("add translation: %w", err)
	}
	e.metrics.TranslationsAdded.Add(ctx, 1)
	tracer().Infof("add translation: %s = %q", p.Outline, p.Translation)
	return nil
}
