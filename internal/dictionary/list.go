package dictionary

import (
	"stenokey/internal/stroke"
)

// maxReverseResults caps the outlines returned for one reverse lookup.
const maxReverseResults = 24

type listEntry struct {
	dict    Dictionary
	enabled bool
}

// List consults its dictionaries in priority order, first match wins.
type List struct {
	name    string
	entries []listEntry
}

func NewList(name string, dicts ...Dictionary) *List {
	l := &List{name: name}
	for _, d := range dicts {
		l.entries = append(l.entries, listEntry{dict: d, enabled: true})
	}
	return l
}

func (l *List) Name() string { return l.name }

func (l *List) Lookup(strokes []stroke.Stroke) Result {
	for _, e := range l.entries {
		if !e.enabled {
			continue
		}
		if result := e.dict.Lookup(strokes); result.IsValid() {
			return result
		}
	}
	return Invalid()
}

func (l *List) MaximumOutlineLength() int {
	length := 0
	for _, e := range l.entries {
		if e.enabled && e.dict.MaximumOutlineLength() > length {
			length = e.dict.MaximumOutlineLength()
		}
	}
	return length
}

// ReverseLookup drops outlines shadowed by a higher priority dictionary.
func (l *List) ReverseLookup(text string, threshold int) []stroke.Outline {
	var results []stroke.Outline
	seen := map[string]bool{}
	for _, e := range l.entries {
		if !e.enabled {
			continue
		}
		for _, outline := range e.dict.ReverseLookup(text, threshold) {
			key := outline.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			if l.Lookup(outline).Text() != text {
				continue
			}
			results = append(results, outline)
		}
	}
	sortOutlines(results)
	if len(results) > maxReverseResults {
		results = results[:maxReverseResults]
	}
	return results
}

func (l *List) EnableDictionary(name string) bool {
	return l.update(name, func(bool) bool { return true }, Dictionary.EnableDictionary)
}

func (l *List) DisableDictionary(name string) bool {
	return l.update(name, func(bool) bool { return false }, Dictionary.DisableDictionary)
}

func (l *List) ToggleDictionary(name string) bool {
	return l.update(name, func(enabled bool) bool { return !enabled }, Dictionary.ToggleDictionary)
}

func (l *List) update(name string, change func(bool) bool, forward func(Dictionary, string) bool) bool {
	for i := range l.entries {
		if l.entries[i].dict.Name() == name {
			l.entries[i].enabled = change(l.entries[i].enabled)
			tracer().Infof("dictionary %s enabled=%v", name, l.entries[i].enabled)
			return true
		}
	}
	for _, e := range l.entries {
		if forward(e.dict, name) {
			return true
		}
	}
	return false
}

func (l *List) Dictionaries() []Info {
	var infos []Info
	for _, e := range l.entries {
		infos = append(infos, Info{Name: e.dict.Name(), Enabled: e.enabled})
		infos = append(infos, e.dict.Dictionaries()...)
	}
	return infos
}

var _ Dictionary = (*List)(nil)
