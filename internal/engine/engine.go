// Package engine turns strokes into text edits. Each stroke converts a bounded
// window of recent strokes twice, once without and once with the newest
// stroke, and sends the difference between the two to the key output sink.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"

	"stenokey/internal/dictionary"
	"stenokey/internal/emitter"
	"stenokey/internal/events"
	"stenokey/internal/history"
	"stenokey/internal/keycode"
	"stenokey/internal/observe"
	"stenokey/internal/orthography"
	"stenokey/internal/segment"
	"stenokey/internal/state"
	"stenokey/internal/stroke"
)

func tracer() tracing.Trace {
	return tracing.Select("stenokey.engine")
}

// conversionSlack is the number of strokes a window reaches past the longest
// outline so suffixes and retroactive commands see the words they change.
const conversionSlack = 4

// initialState starts a session without a space before the first word.
var initialState = state.State{JoinNext: true}

type Options struct {
	// SpaceAfter places the word space after each word instead of before.
	SpaceAfter  bool
	PaperTape   bool
	Suggestions bool
	TextLog     bool
	// Parallel converts the previous and next windows concurrently.
	Parallel bool

	// Events receives paper tape, suggestion and text log lines. Nil
	// disables all three.
	Events *events.Writer
	// User receives add-translation definitions. Without one the
	// add-translation command is ignored.
	User    *dictionary.User
	Metrics *observe.Metrics
	// Prompt is called whenever the add-translation prompt changes.
	Prompt func(Prompt)
}

// conversion is one side of a reconversion: a window of strokes, its
// segments and the key codes they produce.
type conversion struct {
	builder *segment.Builder
	list    *segment.List
	buffer  *keycode.Buffer
	// start is the state the window begins in.
	start state.State
}

func newConversion(ortho orthography.Orthography) *conversion {
	return &conversion{
		builder: segment.NewBuilder(64),
		list:    segment.NewList(64),
		buffer:  keycode.NewBuffer(ortho),
	}
}

type Engine struct {
	mu      sync.Mutex
	dict    dictionary.Dictionary
	ortho   orthography.Orthography
	emitter *emitter.Emitter
	opts    Options
	metrics *observe.Metrics

	mode     Mode
	history  *history.History
	state    state.State
	previous *conversion
	next     *conversion
	scratch  *keycode.Buffer

	add addTranslation
}

func New(dict dictionary.Dictionary, ortho orthography.Orthography, out emitter.Output, opts Options) *Engine {
	if ortho == nil {
		ortho = orthography.Empty{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	eng := &Engine{
		dict:     dict,
		ortho:    ortho,
		emitter:  emitter.New(out),
		opts:     opts,
		metrics:  metrics,
		mode:     ModeNormal,
		history:  history.New(),
		state:    initialState,
		previous: newConversion(ortho),
		next:     newConversion(ortho),
		scratch:  keycode.NewBuffer(ortho),
	}
	eng.add = newAddTranslation(ortho)
	return eng
}

// Run processes strokes until the channel closes or ctx is done. The output
// sink is closed on return.
func (e *Engine) Run(ctx context.Context, strokes <-chan stroke.Stroke) error {
	defer e.emitter.Output().Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-strokes:
			if !ok {
				return nil
			}
			if err := e.ProcessStroke(ctx, s); err != nil {
				return err
			}
		}
	}
}

// ProcessStroke converts one stroke. The lone star key undoes the last
// translation.
func (e *Engine) ProcessStroke(ctx context.Context, s stroke.Stroke) error {
	if s == stroke.Undo {
		return e.ProcessUndo(ctx)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	begin := time.Now()
	var err error
	if e.mode == ModeAddTranslation {
		err = e.addTranslationStroke(ctx, s)
	} else {
		err = e.processStroke(ctx, s)
	}
	e.metrics.RecordStroke(ctx, "stroke", time.Since(begin))
	return err
}

func (e *Engine) ProcessUndo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	begin := time.Now()
	var err error
	if e.mode == ModeAddTranslation {
		e.addTranslationUndo()
	} else {
		err = e.processUndo(ctx)
	}
	e.metrics.RecordStroke(ctx, "undo", time.Since(begin))
	return err
}

func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// State is the formatting state the next stroke starts from.
func (e *Engine) State() state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ResetState forgets the stroke history. Text already sent stays.
func (e *Engine) ResetState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetState()
}

func (e *Engine) resetState() {
	tracer().Debugf("reset state after %d strokes", e.history.Count())
	e.history.Reset()
	e.state = initialState
}

func (e *Engine) EnableDictionary(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endAddTranslation()
	return e.dict.EnableDictionary(name)
}

func (e *Engine) DisableDictionary(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endAddTranslation()
	return e.dict.DisableDictionary(name)
}

func (e *Engine) ToggleDictionary(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endAddTranslation()
	return e.dict.ToggleDictionary(name)
}

func (e *Engine) ListDictionaries() []dictionary.Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dict.Dictionaries()
}

func (e *Engine) Lookup(outline stroke.Outline) dictionary.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dict.Lookup(outline)
}

// ReverseLookup returns every outline that translates to text.
func (e *Engine) ReverseLookup(text string) []stroke.Outline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dict.ReverseLookup(text, e.dict.MaximumOutlineLength()+1)
}

// window is the largest number of strokes one conversion covers.
func (e *Engine) window() int {
	return e.dict.MaximumOutlineLength() + conversionSlack
}

// createSegments converts the limit strokes ending before history index
// sourceCount. fallback is the start state used when the window is empty and
// reaches the end of h.
func (e *Engine) createSegments(c *conversion, h *history.History, sourceCount, limit int, fallback state.State) {
	c.builder.TransferFrom(h, sourceCount, limit)
	c.list.Reset()
	c.builder.CreateSegments(e.dict, e.ortho, c.list, 0)
	c.start = windowStart(h, sourceCount-c.builder.Count(), fallback)
}

// createSegmentsUsingLonger is createSegments for a window that starts where
// longer starts: the segments of longer that fit are copied instead of
// looked up again.
func (e *Engine) createSegmentsUsingLonger(c *conversion, h *history.History, sourceCount, limit int, fallback state.State, longer *conversion) {
	c.builder.TransferFrom(h, sourceCount, limit)
	c.list.Reset()
	c.list.Bind(c.builder)
	offset := c.list.ReusePrefix(longer.list, c.builder.Count())
	c.builder.TransferStartFrom(longer.builder, offset)
	c.builder.CreateSegments(e.dict, e.ortho, c.list, offset)
	c.start = windowStart(h, sourceCount-c.builder.Count(), fallback)
}

func windowStart(h *history.History, index int, fallback state.State) state.State {
	if index < h.Count() {
		return h.At(index).State
	}
	return fallback
}

// startingOffset is the first segment both conversions have to convert. The
// segments before it produce the same text in both and are skipped.
func (e *Engine) startingOffset(previous, next *segment.List) int {
	common := segment.CommonStartingCount(previous, next)
	if common < previous.Len() && previous.At(common).IsControl() ||
		common < next.Len() && next.At(common).IsControl() {
		return 0
	}
	offset := common
	// keep one segment so the conversion starts from a token's state
	if offset > 0 && (e.opts.SpaceAfter || offset == previous.Len() || offset == next.Len()) {
		offset--
	}
	return offset
}

func (e *Engine) convert(c *conversion, offset int) {
	c.buffer.Populate(c.list.Tokens(offset), c.start)
	if e.opts.SpaceAfter && !c.buffer.State.JoinNext && !c.list.IsEmpty() {
		c.buffer.AppendSpace()
	}
}

func (e *Engine) convertBoth(previous, next *conversion, offset int) {
	if !e.opts.Parallel {
		e.convert(previous, offset)
		e.convert(next, offset)
		return
	}
	var g errgroup.Group
	g.Go(func() error {
		e.convert(previous, offset)
		return nil
	})
	g.Go(func() error {
		e.convert(next, offset)
		return nil
	})
	_ = g.Wait()
}

// applyOps runs the dictionary and layout commands the newest stroke added.
func (e *Engine) applyOps(previous, next *keycode.Buffer) {
	if len(next.Ops) <= len(previous.Ops) {
		return
	}
	for _, op := range next.Ops[len(previous.Ops):] {
		switch op.Kind {
		case keycode.OpEnableDictionary:
			e.logOp("enable", op.Name, e.dict.EnableDictionary(op.Name))
		case keycode.OpDisableDictionary:
			e.logOp("disable", op.Name, e.dict.DisableDictionary(op.Name))
		case keycode.OpToggleDictionary:
			e.logOp("toggle", op.Name, e.dict.ToggleDictionary(op.Name))
		case keycode.OpKeyboardLayout:
			e.setLayout(op.Name)
		}
	}
}

func (e *Engine) logOp(verb, name string, ok bool) {
	if !ok {
		tracer().Infof("%s dictionary: no dictionary named %q", verb, name)
		return
	}
	tracer().Debugf("%s dictionary %q", verb, name)
}

func (e *Engine) setLayout(name string) {
	setter, ok := e.emitter.Output().(emitter.LayoutSetter)
	if !ok {
		tracer().Infof("keyboard layout %q: output has no layouts", name)
		return
	}
	if err := setter.SetLayout(name); err != nil {
		tracer().Errorf("keyboard layout: %v", err)
	}
}

func (e *Engine) emit(ctx context.Context, previous, next *keycode.Buffer) (bool, error) {
	common, backspaces := emitter.Diff(previous, next)
	unchanged, err := e.emitter.Process(previous, next)
	if err != nil {
		return false, fmt.Errorf("emit: %w", err)
	}
	e.metrics.RecordBackspaces(ctx, backspaces)
	if !unchanged {
		e.printTextLog(next, common, backspaces)
	}
	return unchanged, nil
}
