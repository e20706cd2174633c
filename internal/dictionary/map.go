package dictionary

import (
	"fmt"
	"sort"

	"github.com/derekparker/trie"

	"stenokey/internal/stroke"
)

// Map is a dictionary held in memory. Definitions are keyed by steno
// notation, with a trie over the notation for prefix listing and a reverse
// index over the translations.
type Map struct {
	name         string
	definitions  map[string]string
	outlines     *trie.Trie
	reverse      map[string][]stroke.Outline
	lengthCounts map[int]int
	maxLength    int
	count        int
}

type Entry struct {
	Outline     stroke.Outline
	Translation string
}

func NewMap(name string) *Map {
	return &Map{
		name:         name,
		definitions:  make(map[string]string),
		outlines:     trie.New(),
		reverse:      make(map[string][]stroke.Outline),
		lengthCounts: make(map[int]int),
	}
}

// NewMapFromDefinitions parses outline notation keys such as "TEFT/-G".
func NewMapFromDefinitions(name string, definitions map[string]string) (*Map, error) {
	m := NewMap(name)
	for key, text := range definitions {
		outline, err := stroke.ParseOutline(key)
		if err != nil {
			return nil, fmt.Errorf("dictionary %s: %w", name, err)
		}
		m.Add(outline, text)
	}
	tracer().Infof("dictionary %s: %d entries, longest outline %d", name, m.count, m.maxLength)
	return m, nil
}

func (m *Map) Name() string { return m.name }

func (m *Map) Len() int { return m.count }

func (m *Map) Lookup(strokes []stroke.Stroke) Result {
	if len(strokes) == 0 || len(strokes) > m.maxLength {
		return Invalid()
	}
	text, ok := m.find(stroke.Outline(strokes).String())
	if !ok {
		return Invalid()
	}
	return Static(text, m.name)
}

func (m *Map) find(key string) (string, bool) {
	text, ok := m.definitions[key]
	return text, ok
}

// Add defines outline, replacing any previous translation.
func (m *Map) Add(outline stroke.Outline, text string) {
	if len(outline) == 0 {
		return
	}
	key := outline.String()
	if _, ok := m.definitions[key]; ok {
		m.forget(key, outline)
	} else {
		m.outlines.Add(key, nil)
	}
	m.definitions[key] = text
	m.reverse[text] = append(m.reverse[text], append(stroke.Outline(nil), outline...))
	m.lengthCounts[len(outline)]++
	if len(outline) > m.maxLength {
		m.maxLength = len(outline)
	}
	m.count++
}

// Remove deletes outline and reports whether it was defined.
func (m *Map) Remove(outline stroke.Outline) bool {
	key := outline.String()
	if _, ok := m.definitions[key]; !ok {
		return false
	}
	m.forget(key, outline)
	delete(m.definitions, key)
	m.rebuildIndex()
	return true
}

// rebuildIndex recreates the prefix trie from the definitions. trie.Remove
// can drop unrelated keys, so the trie is never removed from.
func (m *Map) rebuildIndex() {
	m.outlines = trie.New()
	for key := range m.definitions {
		m.outlines.Add(key, nil)
	}
}

// forget drops the reverse index and length bookkeeping of a defined key.
func (m *Map) forget(key string, outline stroke.Outline) {
	text := m.definitions[key]
	outlines := m.reverse[text]
	for i, o := range outlines {
		if o.Equal(outline) {
			outlines = append(outlines[:i], outlines[i+1:]...)
			break
		}
	}
	if len(outlines) == 0 {
		delete(m.reverse, text)
	} else {
		m.reverse[text] = outlines
	}
	m.count--
	m.lengthCounts[len(outline)]--
	if m.lengthCounts[len(outline)] == 0 {
		delete(m.lengthCounts, len(outline))
		if len(outline) == m.maxLength {
			m.maxLength = 0
			for length := range m.lengthCounts {
				if length > m.maxLength {
					m.maxLength = length
				}
			}
		}
	}
}

func (m *Map) MaximumOutlineLength() int { return m.maxLength }

func (m *Map) ReverseLookup(text string, threshold int) []stroke.Outline {
	var results []stroke.Outline
	for _, outline := range m.reverse[text] {
		if len(outline) < threshold {
			results = append(results, outline)
		}
	}
	sortOutlines(results)
	return results
}

// Entries lists the definitions whose notation starts with prefix, in
// notation order.
func (m *Map) Entries(prefix string) []Entry {
	var keys []string
	if prefix == "" {
		keys = make([]string, 0, len(m.definitions))
		for key := range m.definitions {
			keys = append(keys, key)
		}
	} else if m.outlines.HasKeysWithPrefix(prefix) {
		keys = m.outlines.PrefixSearch(prefix)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		text, ok := m.find(key)
		if !ok {
			continue
		}
		outline, err := stroke.ParseOutline(key)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Outline: outline, Translation: text})
	}
	return entries
}

func (m *Map) EnableDictionary(string) bool  { return false }
func (m *Map) DisableDictionary(string) bool { return false }
func (m *Map) ToggleDictionary(string) bool  { return false }
func (m *Map) Dictionaries() []Info          { return nil }

func sortOutlines(outlines []stroke.Outline) {
	sort.Slice(outlines, func(i, j int) bool {
		if len(outlines[i]) != len(outlines[j]) {
			return len(outlines[i]) < len(outlines[j])
		}
		return outlines[i].String() < outlines[j].String()
	})
}

var _ Dictionary = (*Map)(nil)
