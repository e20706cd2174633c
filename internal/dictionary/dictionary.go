package dictionary

import (
	"github.com/npillmayer/schuko/tracing"

	"stenokey/internal/stroke"
)

func tracer() tracing.Trace {
	return tracing.Select("stenokey.dictionary")
}

// Dictionary is the lookup capability consumed by segmentation, suggestions
// and the engine. Implementations compose by delegation.
type Dictionary interface {
	Lookup(strokes []stroke.Stroke) Result
	MaximumOutlineLength() int
	// ReverseLookup returns the outlines translating to text that are shorter
	// than threshold strokes.
	ReverseLookup(text string, threshold int) []stroke.Outline
	Name() string

	EnableDictionary(name string) bool
	DisableDictionary(name string) bool
	ToggleDictionary(name string) bool
	// Dictionaries lists the dictionaries that can be enabled or disabled
	// below this one.
	Dictionaries() []Info
}

type Info struct {
	Name    string
	Enabled bool
}

type resultKind uint8

const (
	kindInvalid resultKind = iota
	kindStatic
	kindDynamic
)

// Result is the outcome of a lookup: no translation, text owned by the
// dictionary that produced it, or text built for this lookup.
type Result struct {
	kind     resultKind
	text     string
	provider string
}

func Invalid() Result { return Result{} }

func Static(text, provider string) Result {
	return Result{kind: kindStatic, text: text, provider: provider}
}

func Dynamic(text, provider string) Result {
	return Result{kind: kindDynamic, text: text, provider: provider}
}

func (r Result) IsValid() bool   { return r.kind != kindInvalid }
func (r Result) IsDynamic() bool { return r.kind == kindDynamic }
func (r Result) Text() string    { return r.text }

// Provider names the dictionary that supplied the text.
func (r Result) Provider() string { return r.provider }
